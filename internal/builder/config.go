package builder

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mark3labs/kiotago/internal/logging"
)

var validate = validator.New()

// Config is threaded into the builder. Language does not change the shape of
// the model; it is carried for the consumers of the result.
type Config struct {
	ClientClassName     string   `yaml:"clientClassName" validate:"required"`
	ClientNamespaceName string   `yaml:"clientNamespaceName" validate:"required"`
	NamespaceSeparator  string   `yaml:"namespaceSeparator" validate:"len=1"`
	Language            string   `yaml:"language" validate:"oneof=csharp go java typescript python php ruby swift cli"`
	StructuredMimeTypes []string `yaml:"structuredMimeTypes" validate:"min=1,dive,required"`
	// UsesBackingStore adds backing store members to models and the client.
	UsesBackingStore bool `yaml:"usesBackingStore"`
	// IncludeAdditionalData adds an AdditionalData member to models that
	// accept additional properties.
	IncludeAdditionalData bool `yaml:"includeAdditionalData"`
	// Strict turns type references left unresolved after the fallback
	// sweep into a build error.
	Strict bool `yaml:"strict"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		ClientClassName:     "ApiClient",
		ClientNamespaceName: "ApiSdk",
		NamespaceSeparator:  ".",
		Language:            "csharp",
		StructuredMimeTypes: []string{
			"application/json",
			"text/plain",
			"application/x-www-form-urlencoded",
			"multipart/form-data",
		},
		IncludeAdditionalData: true,
	}
}

// Validate checks the configuration and reports every invalid field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &BuildError{Code: ConfigError, Message: err.Error(), Cause: err}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s validation", fe.Field(), fe.Tag()))
	}
	return &BuildError{Code: ConfigError, Message: "invalid configuration: " + strings.Join(msgs, "; "), Cause: err}
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger warnings are reported through.
func WithLogger(l logging.Logger) Option {
	return func(b *Builder) { b.log = logging.OrNop(l) }
}
