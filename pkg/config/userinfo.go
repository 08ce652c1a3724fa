package config

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/tendant/local-idp/pkg/claims"
)

// UserInfoConfig is the [user_info] section: the profile of the fake end user
type UserInfoConfig struct {
	Subject    string `toml:"subject" env:"LOCALIDP_USER_SUBJECT" env-default:"google-apps|developers@prima.it"`
	Name       string `toml:"name" env:"LOCALIDP_USER_NAME" env-default:"Local"`
	GivenName  string `toml:"given_name" env:"LOCALIDP_USER_GIVEN_NAME" env-default:"Locie"`
	FamilyName string `toml:"family_name" env:"LOCALIDP_USER_FAMILY_NAME" env-default:"Auth0"`
	Nickname   string `toml:"nickname" env:"LOCALIDP_USER_NICKNAME" env-default:"locie"`
	Locale     string `toml:"locale" env:"LOCALIDP_USER_LOCALE" env-default:"en"`
	Gender     string `toml:"gender" env:"LOCALIDP_USER_GENDER" env-default:"none"`
	Birthdate  string `toml:"birthdate" env:"LOCALIDP_USER_BIRTHDATE" env-default:"2022-02-11"`
	Email      string `toml:"email" env:"LOCALIDP_USER_EMAIL" env-default:"developers@prima.it"`
	Picture    string `toml:"picture" env:"LOCALIDP_USER_PICTURE" env-default:"https://github.com/primait/localauth0/blob/6f71c9318250219a9d03fb72afe4308b8824aef7/web/assets/static/media/localauth0.png"`

	// Unset means verified
	EmailVerified *bool `toml:"email_verified" copier:"-"`

	// RFC 3339; empty means the server start time
	UpdatedAt string `toml:"updated_at" env:"LOCALIDP_USER_UPDATED_AT" copier:"-"`

	CustomFields []claims.CustomField `toml:"custom_fields"`
}

// AccessTokenConfig is the [access_token] section
type AccessTokenConfig struct {
	CustomClaims []claims.CustomField `toml:"custom_claims"`
}

// UserInfoTemplate converts the [user_info] section into the profile put in
// ID tokens. now is used when updated_at is not configured.
func (c Config) UserInfoTemplate(now time.Time) (claims.UserInfo, error) {
	var info claims.UserInfo
	if err := copier.Copy(&info, &c.UserInfo); err != nil {
		return claims.UserInfo{}, fmt.Errorf("failed to copy user info: %w", err)
	}
	info.CustomFields = claims.CloneFields(c.UserInfo.CustomFields)

	info.EmailVerified = true
	if c.UserInfo.EmailVerified != nil {
		info.EmailVerified = *c.UserInfo.EmailVerified
	}

	info.UpdatedAt = now.UTC()
	if c.UserInfo.UpdatedAt != "" {
		updatedAt, err := time.Parse(time.RFC3339, c.UserInfo.UpdatedAt)
		if err != nil {
			return claims.UserInfo{}, fmt.Errorf("invalid user_info.updated_at %q: %w", c.UserInfo.UpdatedAt, err)
		}
		info.UpdatedAt = updatedAt.UTC()
	}
	return info, nil
}

// AccessTokenCustomClaims returns the configured access token custom claims
func (c Config) AccessTokenCustomClaims() []claims.CustomField {
	return claims.CloneFields(c.AccessToken.CustomClaims)
}
