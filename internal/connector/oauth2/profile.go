package oauth2

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	cerrors "github.com/dropDatabas3/connector-fudan/internal/connector/errors"
)

// UserProfileMapping re-keys a provider profile (raw JSON) into the
// canonical UserProfile.
//
// Each source is a dot-separated key path; every segment is matched
// literally, so missing or partial structure simply resolves to nothing. Falsy values (null, false, 0, "") are dropped. The
// result must carry an id, which may be a string or a number.
func UserProfileMapping(origin []byte, keyMapping ProfileMap) (*UserProfile, error) {
	if !gjson.ValidBytes(origin) {
		return nil, cerrors.ErrInvalidResponse.WithData(cerrors.Message("user profile is not valid JSON"))
	}
	keyMapping = keyMapping.WithDefaults()

	mapped := make(map[string]any, 5)
	for _, f := range keyMapping.fields() {
		if v, ok := truthy(gjson.GetBytes(origin, sourcePath(f.source))); ok {
			mapped[f.canonical] = v
		}
	}

	if err := userProfileGuard.check(mapped); err != nil {
		return nil, cerrors.ErrInvalidResponse.WithData(err)
	}

	return &UserProfile{
		ID:     coerceID(mapped["id"]),
		Email:  asString(mapped["email"]),
		Phone:  asString(mapped["phone"]),
		Name:   asString(mapped["name"]),
		Avatar: asString(mapped["avatar"]),
	}, nil
}

// sourcePath turns a dotted key path into a gjson path with no wildcard,
// modifier or query semantics.
func sourcePath(source string) string {
	segs := strings.Split(source, ".")
	for i, seg := range segs {
		segs[i] = gjson.Escape(seg)
	}
	return strings.Join(segs, ".")
}

// truthy returns the plain value of r unless it is absent or falsy.
func truthy(r gjson.Result) (any, bool) {
	switch r.Type {
	case gjson.Null, gjson.False:
		return nil, false
	case gjson.True:
		return true, true
	case gjson.Number:
		if r.Num == 0 {
			return nil, false
		}
		return json.Number(r.Raw), true
	case gjson.String:
		if r.Str == "" {
			return nil, false
		}
		return r.Str, true
	default:
		return r.Value(), true
	}
}

// coerceID renders a validated id (string or number) as a string.
func coerceID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
			return strconv.FormatInt(n, 10)
		}
		if f, err := strconv.ParseFloat(string(id), 64); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return string(id)
	}
	return ""
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
