// Package render performs answer substitution on strings and copies
// template files into a project tree.
package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Lookup resolves a token key to an answer.
type Lookup interface {
	Get(key string) (any, bool)
}

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}\}`)

// Substitute replaces {{key}} tokens with the formatted answer for key.
// Tokens whose key has no answer are left verbatim.
func Substitute(s string, vars Lookup) string {
	if vars == nil || !strings.Contains(s, "{{") {
		return s
	}
	return tokenPattern.ReplaceAllStringFunc(s, func(tok string) string {
		key := tokenPattern.FindStringSubmatch(tok)[1]
		v, ok := vars.Get(key)
		if !ok {
			return tok
		}
		return FormatValue(v)
	})
}

// Tokens returns the distinct token keys referenced in s, in order of appearance.
func Tokens(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range tokenPattern.FindAllStringSubmatch(s, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// FormatValue renders an answer as text. Lists are joined with commas.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return fmt.Sprint(t)
	}
}
