package claims

import "time"

// UpdatedAtLayout is RFC 3339 with millisecond precision, the format of the
// updated_at claim.
const UpdatedAtLayout = "2006-01-02T15:04:05.000Z07:00"

// UserInfo is the profile of the single fake end user. It seeds every ID token.
type UserInfo struct {
	Subject       string        `json:"subject" toml:"subject"`
	Name          string        `json:"name" toml:"name"`
	GivenName     string        `json:"given_name" toml:"given_name"`
	FamilyName    string        `json:"family_name" toml:"family_name"`
	Nickname      string        `json:"nickname" toml:"nickname"`
	Locale        string        `json:"locale" toml:"locale"`
	Gender        string        `json:"gender" toml:"gender"`
	Birthdate     string        `json:"birthdate" toml:"birthdate"`
	Email         string        `json:"email" toml:"email"`
	EmailVerified bool          `json:"email_verified" toml:"email_verified"`
	Picture       string        `json:"picture" toml:"picture"`
	UpdatedAt     time.Time     `json:"updated_at" toml:"updated_at"`
	CustomFields  []CustomField `json:"custom_fields" toml:"custom_fields"`
}

// UserInfoPatch is a sparse update of UserInfo. A nil member leaves the
// current value unchanged.
type UserInfoPatch struct {
	Subject       *string        `json:"subject,omitempty"`
	Name          *string        `json:"name,omitempty"`
	GivenName     *string        `json:"given_name,omitempty"`
	FamilyName    *string        `json:"family_name,omitempty"`
	Nickname      *string        `json:"nickname,omitempty"`
	Locale        *string        `json:"locale,omitempty"`
	Gender        *string        `json:"gender,omitempty"`
	Birthdate     *string        `json:"birthdate,omitempty"`
	Email         *string        `json:"email,omitempty"`
	EmailVerified *bool          `json:"email_verified,omitempty"`
	Picture       *string        `json:"picture,omitempty"`
	UpdatedAt     *time.Time     `json:"updated_at,omitempty"`
	CustomFields  *[]CustomField `json:"custom_fields,omitempty"`
}

// ApplyUserInfoPatch returns current with every non-nil member of patch
// applied. Neither argument is modified.
func ApplyUserInfoPatch(current UserInfo, patch UserInfoPatch) UserInfo {
	next := current
	next.CustomFields = CloneFields(current.CustomFields)

	setString(&next.Subject, patch.Subject)
	setString(&next.Name, patch.Name)
	setString(&next.GivenName, patch.GivenName)
	setString(&next.FamilyName, patch.FamilyName)
	setString(&next.Nickname, patch.Nickname)
	setString(&next.Locale, patch.Locale)
	setString(&next.Gender, patch.Gender)
	setString(&next.Birthdate, patch.Birthdate)
	setString(&next.Email, patch.Email)
	setString(&next.Picture, patch.Picture)

	if patch.EmailVerified != nil {
		next.EmailVerified = *patch.EmailVerified
	}
	if patch.UpdatedAt != nil {
		next.UpdatedAt = *patch.UpdatedAt
	}
	if patch.CustomFields != nil {
		next.CustomFields = CloneFields(*patch.CustomFields)
	}
	return next
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}
