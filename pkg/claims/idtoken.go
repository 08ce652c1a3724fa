package claims

import (
	"encoding/json"
	"time"

	"github.com/jinzhu/copier"
	"github.com/tendant/local-idp/pkg/errors"
)

// SessionID is the sid of every ID token; there is only one fake session.
const SessionID = "session_id"

var idClaimNames = append([]string{
	"name", "given_name", "family_name", "nickname", "locale",
	"gender", "birthdate", "email", "email_verified", "picture", "updated_at",
}, reservedClaimNames...)

// ProfileClaims are the standard OIDC profile members of an ID token
type ProfileClaims struct {
	Subject       string `json:"sub"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Nickname      string `json:"nickname"`
	Locale        string `json:"locale"`
	Gender        string `json:"gender"`
	Birthdate     string `json:"birthdate"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Picture       string `json:"picture"`
	UpdatedAt     string `json:"updated_at" copier:"-"`
}

// IDClaims is the payload of an ID token
type IDClaims struct {
	Issuer    string `json:"iss"`
	Audience  string `json:"aud"`
	SessionID string `json:"sid"`
	ProfileClaims
	IssuedAt  int64   `json:"iat"`
	ExpiresAt int64   `json:"exp"`
	Nonce     *string `json:"nonce,omitempty"`

	CustomFields []CustomField `json:"-"`
}

// NewProfileClaims converts a user profile into its claim form
func NewProfileClaims(info UserInfo) (ProfileClaims, error) {
	var profile ProfileClaims
	if err := copier.Copy(&profile, &info); err != nil {
		return ProfileClaims{}, errors.Wrap(err, errors.ErrCodeSerialization, "failed to copy user info")
	}
	profile.UpdatedAt = info.UpdatedAt.UTC().Format(UpdatedAtLayout)
	return profile, nil
}

// NewIDClaims builds ID token claims for audience from the user profile. The
// profile's custom fields become top-level claims.
func NewIDClaims(issuer, audience string, info UserInfo, nonce *string, now time.Time) (IDClaims, error) {
	if now.IsZero() {
		now = time.Now()
	}

	profile, err := NewProfileClaims(info)
	if err != nil {
		return IDClaims{}, err
	}

	var n *string
	if nonce != nil {
		value := *nonce
		n = &value
	}

	return IDClaims{
		Issuer:        issuer,
		Audience:      audience,
		SessionID:     SessionID,
		ProfileClaims: profile,
		IssuedAt:      now.Unix(),
		ExpiresAt:     now.Add(TokenLifetime).Unix(),
		Nonce:         n,
		CustomFields:  CloneFields(info.CustomFields),
	}, nil
}

// UserInfoClaims renders the profile as returned by the userinfo endpoint:
// the standard profile members plus the custom fields.
func UserInfoClaims(info UserInfo) (map[string]interface{}, error) {
	profile, err := NewProfileClaims(info)
	if err != nil {
		return nil, err
	}
	return mergeCustomFields(profile, idClaimNames, info.CustomFields)
}

// Map returns the payload as a claims map with custom fields merged in
func (c IDClaims) Map() (map[string]interface{}, error) {
	type fixed IDClaims
	return mergeCustomFields(fixed(c), idClaimNames, c.CustomFields)
}

// MarshalJSON encodes the merged payload
func (c IDClaims) MarshalJSON() ([]byte, error) {
	m, err := c.Map()
	if err != nil {
		return nil, err
	}
	return json.Marshal(m)
}
