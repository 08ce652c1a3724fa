// Package claims builds the JSON payloads of access tokens and ID tokens.
package claims

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/tendant/local-idp/pkg/errors"
)

// CustomField is a caller supplied claim merged into a token payload as a
// top-level member. Names are not required to be unique; when the same name
// appears twice the later entry wins.
type CustomField struct {
	Name  string           `json:"name" toml:"name"`
	Value CustomFieldValue `json:"value" toml:"value"`
}

// CustomFieldValue holds either a single string or a list of strings. It is
// encoded as {"String": "..."} or {"Vec": [...]}.
type CustomFieldValue struct {
	String *string  `json:"String,omitempty" toml:"String"`
	Vec    []string `json:"Vec,omitempty" toml:"Vec"`
}

// StringField creates a custom field holding a single string
func StringField(name, value string) CustomField {
	return CustomField{Name: name, Value: CustomFieldValue{String: &value}}
}

// VecField creates a custom field holding a list of strings
func VecField(name string, values ...string) CustomField {
	if values == nil {
		values = []string{}
	}
	return CustomField{Name: name, Value: CustomFieldValue{Vec: values}}
}

// MarshalJSON keeps an empty Vec as {"Vec": []} instead of dropping it
func (v CustomFieldValue) MarshalJSON() ([]byte, error) {
	if v.String != nil {
		return json.Marshal(map[string]string{"String": *v.String})
	}
	vec := v.Vec
	if vec == nil {
		vec = []string{}
	}
	return json.Marshal(map[string][]string{"Vec": vec})
}

// ClaimValue is what the field looks like inside a token: a JSON string or
// a JSON array of strings.
func (v CustomFieldValue) ClaimValue() interface{} {
	if v.String != nil {
		return *v.String
	}
	out := make([]string, len(v.Vec))
	copy(out, v.Vec)
	return out
}

// CloneFields returns a deep copy of fields
func CloneFields(fields []CustomField) []CustomField {
	if fields == nil {
		return nil
	}
	out := make([]CustomField, 0, len(fields))
	for _, f := range fields {
		c := CustomField{Name: f.Name}
		if f.Value.String != nil {
			s := *f.Value.String
			c.Value.String = &s
		}
		if f.Value.Vec != nil {
			c.Value.Vec = append([]string{}, f.Value.Vec...)
		}
		out = append(out, c)
	}
	return out
}

// reservedClaimNames are the registered JWT claims (RFC 7519 section 4.1) and
// the session claims. Custom fields never replace them in any token.
var reservedClaimNames = []string{"iss", "sub", "aud", "exp", "nbf", "iat", "jti", "sid", "nonce"}

// mergeCustomFields serializes fixed into a generic claims map and then
// writes fields on top of it in order. Names listed in reserved belong to the
// fixed payload and are never overwritten by a custom field.
func mergeCustomFields(fixed interface{}, reserved []string, fields []CustomField) (map[string]interface{}, error) {
	data, err := json.Marshal(fixed)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to serialize claims")
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var out map[string]interface{}
	if err := decoder.Decode(&out); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "claims did not serialize to a JSON object")
	}

	protected := make(map[string]struct{}, len(reserved))
	for _, name := range reserved {
		protected[name] = struct{}{}
	}

	for _, field := range fields {
		if _, ok := protected[field.Name]; ok {
			slog.Debug("Ignoring custom claim that shadows a standard claim", "claim", field.Name)
			continue
		}
		out[field.Name] = field.Value.ClaimValue()
	}
	return out, nil
}
