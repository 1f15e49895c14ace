// Package naming turns raw OpenAPI identifiers (path segments, schema ids,
// property and parameter names) into symbol names for the IR.
package naming

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Casers are not safe for concurrent use; the builder names symbols from
// several goroutines at once.
var upperCaserPool = sync.Pool{
	New: func() any {
		c := cases.Title(language.Und, cases.NoLower)
		return &c
	},
}

var lowerCaserPool = sync.Pool{
	New: func() any {
		c := cases.Lower(language.Und)
		return &c
	},
}

func withCaser(pool *sync.Pool, s string) string {
	c := pool.Get().(*cases.Caser)
	out := c.String(s)
	c.Reset()
	pool.Put(c)
	return out
}

// UpperFirst upper-cases the first rune of s and leaves the rest untouched.
func UpperFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsUpper(r) {
		return s
	}
	return withCaser(&upperCaserPool, s[:size]) + s[size:]
}

// LowerFirst lower-cases the first rune of s and leaves the rest untouched.
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	if unicode.IsLower(r) {
		return s
	}
	return withCaser(&lowerCaserPool, s[:size]) + s[size:]
}

var (
	symbolCleanupRegex = regexp.MustCompile("[\"\\s!#$%&'()*,./:;<=>?@\\[\\]\\\\^`’{}|~-](\\w)?")
	leadingDigitsRegex = regexp.MustCompile(`^\d+`)
)

var spelledDigits = map[rune]string{
	'0': "Zero", '1': "One", '2': "Two", '3': "Three", '4': "Four",
	'5': "Five", '6': "Six", '7': "Seven", '8': "Eight", '9': "Nine",
}

// Ordered so the fallback replacement is stable.
var spelledSymbols = []struct {
	symbol string
	word   string
}{
	{"!", "Exclamation"}, {`"`, "DoubleQuote"}, {"#", "Pound"}, {"$", "Dollar"},
	{"%", "Percent"}, {"&", "Ampersand"}, {"'", "Apostrophe"}, {"(", "LeftParenthesis"},
	{")", "RightParenthesis"}, {"*", "Asterisk"}, {"+", "Plus"}, {",", "Comma"},
	{"-", "Hyphen"}, {"_", "Underscore"}, {".", "Period"}, {"/", "Slash"},
	{`\`, "BackSlash"}, {":", "Colon"}, {";", "SemiColon"}, {"<", "LessThan"},
	{"=", "Equal"}, {">", "GreaterThan"}, {"?", "QuestionMark"}, {"~", "Tilde"},
	{"@", "At"},
}

// CleanupSymbol strips characters that are not valid in identifiers. The
// letter following a stripped character is upper-cased, a leading number is
// spelled out, and a name made only of symbols is spelled out word by word:
//
//	"user-name" -> "userName"
//	"2fa"       -> "Twofa"
//	"$ref"      -> "Ref"
//	"-1"        -> "minus_1"
func CleanupSymbol(original string) string {
	if original == "" {
		return ""
	}
	result := original
	if strings.HasPrefix(result, "-") {
		result = "minus_" + result[1:]
	}
	result = strings.ReplaceAll(result, "+", "_plus_")
	result = strings.TrimLeft(result, "_")

	result = symbolCleanupRegex.ReplaceAllStringFunc(result, func(m string) string {
		_, size := utf8.DecodeRuneInString(m)
		return UpperFirst(m[size:])
	})

	if d := leadingDigitsRegex.FindString(result); d != "" {
		var sb strings.Builder
		for _, r := range d {
			sb.WriteString(spelledDigits[r])
		}
		result = sb.String() + result[len(d):]
	}

	if strings.HasSuffix(result, "minus_") {
		result = result[:len(result)-1]
	}
	if strings.HasPrefix(result, "_plus") {
		result = result[1:]
	}

	if result == "" {
		result = original
		for _, s := range spelledSymbols {
			result = strings.ReplaceAll(result, s.symbol, s.word)
		}
	}
	return result
}

// JoinCamel joins parts, upper-casing the first rune of every part after the
// first.
func JoinCamel(parts []string) string {
	var sb strings.Builder
	for i, p := range parts {
		if i == 0 {
			sb.WriteString(p)
			continue
		}
		sb.WriteString(UpperFirst(p))
	}
	return sb.String()
}
