package oauth2

import (
	"net/url"
	"sort"
	"strings"
	"unicode"
)

// SnakeCase converts a camelCase (or PascalCase) identifier to snake_case:
// "redirectUri" -> "redirect_uri", "HTTPTimeout" -> "http_timeout".
// Identifiers that are already snake_case are returned unchanged.
func SnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 && needsSeparator(runes, i) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case r == '-' || r == ' ' || r == '.':
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsSeparator(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	// end of an acronym: "HTTPServer" splits before the "S"
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// param is a request field named in camelCase.
type param struct {
	key   string
	value string
}

// encodeParams snake-cases every key and drops empty values. Named params
// take precedence over extra ones with the same snake_case key.
func encodeParams(params []param, extra map[string]string, skip ...string) url.Values {
	v := url.Values{}

	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		sk := SnakeCase(k)
		if extra[k] == "" || contains(skip, sk) {
			continue
		}
		v.Set(sk, extra[k])
	}

	for _, p := range params {
		if p.value == "" {
			continue
		}
		v.Set(SnakeCase(p.key), p.value)
	}
	return v
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
