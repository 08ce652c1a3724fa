package claims

import (
	"encoding/json"
	"strings"
	"time"
)

// TokenLifetime is the validity of every issued token. It is deliberately not
// configurable.
const TokenLifetime = 24 * time.Hour

// GrantType is the OAuth2 flow a token was issued through
type GrantType string

const (
	GrantTypeClientCredentials GrantType = "client_credentials"
	GrantTypeAuthorizationCode GrantType = "authorization_code"
)

// Valid reports whether g is a grant type this server issues tokens for
func (g GrantType) Valid() bool {
	return g == GrantTypeClientCredentials || g == GrantTypeAuthorizationCode
}

// accessClaimNames are the members of Claims that custom claims cannot replace
var accessClaimNames = append([]string{"scope", "gty", "permissions"}, reservedClaimNames...)

// Claims is the payload of an access token
type Claims struct {
	Audience    string    `json:"aud"`
	Issuer      string    `json:"iss"`
	Subject     string    `json:"sub"`
	IssuedAt    int64     `json:"iat"`
	ExpiresAt   int64     `json:"exp"`
	Scope       string    `json:"scope"`
	GrantType   GrantType `json:"gty"`
	Permissions []string  `json:"permissions"`

	CustomClaims []CustomField `json:"-"`
}

// AccessTokenParams are the inputs of an access token payload
type AccessTokenParams struct {
	Audience     string
	Permissions  []string
	Issuer       string
	Subject      string
	GrantType    GrantType
	CustomClaims []CustomField
	Now          time.Time
}

// NewClaims builds access token claims. scope is always the space-joined
// permission list.
func NewClaims(params AccessTokenParams) Claims {
	now := params.Now
	if now.IsZero() {
		now = time.Now()
	}

	permissions := append([]string{}, params.Permissions...)
	return Claims{
		Audience:     params.Audience,
		Issuer:       params.Issuer,
		Subject:      params.Subject,
		IssuedAt:     now.Unix(),
		ExpiresAt:    now.Add(TokenLifetime).Unix(),
		Scope:        strings.Join(permissions, " "),
		GrantType:    params.GrantType,
		Permissions:  permissions,
		CustomClaims: CloneFields(params.CustomClaims),
	}
}

// Map returns the payload as a claims map with custom claims merged in
func (c Claims) Map() (map[string]interface{}, error) {
	type fixed Claims
	return mergeCustomFields(fixed(c), accessClaimNames, c.CustomClaims)
}

// MarshalJSON encodes the merged payload
func (c Claims) MarshalJSON() ([]byte, error) {
	m, err := c.Map()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
