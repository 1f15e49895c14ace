package builder

import (
	"context"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/kiotago/internal/codedom"
)

// discriminatorOf returns the discriminator schema declares or, when it
// declares none, the one of its last allOf member that does.
func discriminatorOf(schema *openapi3.Schema) *openapi3.Discriminator {
	if schema.Discriminator != nil && schema.Discriminator.PropertyName != "" {
		return schema.Discriminator
	}
	for i := len(schema.AllOf) - 1; i >= 0; i-- {
		m := schema.AllOf[i]
		if m == nil || m.Value == nil {
			continue
		}
		if d := m.Value.Discriminator; d != nil && d.PropertyName != "" {
			return d
		}
	}
	return nil
}

func discriminatorPropertyName(schema *openapi3.Schema) string {
	if d := discriminatorOf(schema); d != nil {
		return d.PropertyName
	}
	return ""
}

// addDiscriminatorMappings resolves every mapped schema and registers it on d.
// Without an explicit mapping, the components whose allOf references ref are
// mapped by component name. When class is set, only types deriving from it
// are kept. Missing targets are dropped with a warning.
func (r *run) addDiscriminatorMappings(ctx context.Context, d *codedom.Discriminator, class *codedom.Class, ref *openapi3.SchemaRef, s site) error {
	mapping := map[string]string{}
	if disc := discriminatorOf(ref.Value); disc != nil {
		for value, target := range disc.Mapping {
			mapping[value] = target
		}
	}
	if len(mapping) == 0 {
		if id := referenceID(ref); id != "" {
			for _, derived := range r.derived[id] {
				mapping[derived] = componentSchemaPrefix + derived
			}
		}
	}

	values := make([]string, 0, len(mapping))
	for v := range mapping {
		values = append(values, v)
	}
	sort.Strings(values)

	for _, value := range values {
		targetID := referenceID(&openapi3.SchemaRef{Ref: mapping[value]})
		target := r.componentRef(targetID)
		if target == nil {
			r.log.Warn("discriminator mapping target not found", "schema", s.name, "value", value, "target", mapping[value])
			continue
		}
		t, err := r.resolveSchema(ctx, target, s.nested(r.modelsNS, ""))
		if err != nil {
			return err
		}
		decl := t.Definition()
		if decl == nil {
			r.log.Warn("discriminator mapping target is not a declaration", "schema", s.name, "value", value, "type", t.Name)
			continue
		}
		if class != nil {
			tc, ok := decl.(*codedom.Class)
			if !ok || !tc.DerivesFrom(class) {
				r.log.Debug("discriminator mapping target does not derive from the class", "schema", class.Name, "value", value, "type", t.Name)
				continue
			}
		}
		d.AddMapping(value, codedom.Ref(decl))
	}
	return nil
}
