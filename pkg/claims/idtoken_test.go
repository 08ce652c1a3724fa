package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUserInfo() UserInfo {
	return UserInfo{
		Subject:       "google-apps|developers@example.com",
		Name:          "Local",
		GivenName:     "Locie",
		FamilyName:    "Auth0",
		Nickname:      "locie",
		Locale:        "en",
		Gender:        "none",
		Birthdate:     "2022-02-11",
		Email:         "developers@example.com",
		EmailVerified: true,
		Picture:       "https://example.com/picture.png",
		UpdatedAt:     time.Date(2022, 11, 11, 11, 0, 0, 0, time.UTC),
		CustomFields: []CustomField{
			StringField("team", "platform"),
			VecField("groups", "dev", "ops"),
		},
	}
}

func TestNewIDClaims(t *testing.T) {
	t.Run("Serialization", func(t *testing.T) {
		nonce := "n-0S6_WzA2Mj"
		c, err := NewIDClaims("https://issuer.local/", "web", testUserInfo(), &nonce, fixedNow)
		require.NoError(t, err)

		out := decode(t, c)
		assert.Equal(t, "https://issuer.local/", out["iss"])
		assert.Equal(t, "web", out["aud"])
		assert.Equal(t, "session_id", out["sid"])
		assert.Equal(t, "google-apps|developers@example.com", out["sub"])
		assert.Equal(t, "Local", out["name"])
		assert.Equal(t, "Locie", out["given_name"])
		assert.Equal(t, "Auth0", out["family_name"])
		assert.Equal(t, "locie", out["nickname"])
		assert.Equal(t, "en", out["locale"])
		assert.Equal(t, "none", out["gender"])
		assert.Equal(t, "2022-02-11", out["birthdate"])
		assert.Equal(t, "developers@example.com", out["email"])
		assert.Equal(t, true, out["email_verified"])
		assert.Equal(t, "https://example.com/picture.png", out["picture"])
		assert.Equal(t, "2022-11-11T11:00:00.000Z", out["updated_at"])
		assert.Equal(t, nonce, out["nonce"])
		assert.EqualValues(t, fixedNow.Unix(), out["iat"])
		assert.EqualValues(t, fixedNow.Add(TokenLifetime).Unix(), out["exp"])
		assert.Equal(t, "platform", out["team"])
		assert.Equal(t, []interface{}{"dev", "ops"}, out["groups"])
		assert.NotContains(t, out, "custom_fields")
	})

	t.Run("NoNonce", func(t *testing.T) {
		c, err := NewIDClaims("iss", "web", testUserInfo(), nil, fixedNow)
		require.NoError(t, err)
		assert.NotContains(t, decode(t, c), "nonce")
	})

	t.Run("CustomFieldsCannotReplaceProfile", func(t *testing.T) {
		info := testUserInfo()
		info.CustomFields = []CustomField{
			StringField("email", "spoofed@example.com"),
			StringField("nonce", "forged"),
			StringField("nbf", "tomorrow"),
			StringField("jti", "forged"),
			StringField("extra", "kept"),
		}
		c, err := NewIDClaims("iss", "web", info, nil, fixedNow)
		require.NoError(t, err)

		out := decode(t, c)
		assert.Equal(t, "developers@example.com", out["email"])
		assert.NotContains(t, out, "nonce")
		assert.NotContains(t, out, "nbf")
		assert.NotContains(t, out, "jti")
		assert.Equal(t, "kept", out["extra"])
	})

	t.Run("UserInfoClaims", func(t *testing.T) {
		out, err := UserInfoClaims(testUserInfo())
		require.NoError(t, err)
		assert.Equal(t, "google-apps|developers@example.com", out["sub"])
		assert.Equal(t, "platform", out["team"])
		assert.NotContains(t, out, "iss")
	})
}

func TestApplyUserInfoPatch(t *testing.T) {
	str := func(s string) *string { return &s }

	t.Run("EmptyPatchKeepsEverything", func(t *testing.T) {
		current := testUserInfo()
		assert.Equal(t, current, ApplyUserInfoPatch(current, UserInfoPatch{}))
	})

	t.Run("SetMembersReplace", func(t *testing.T) {
		current := testUserInfo()
		verified := false
		updatedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		fields := []CustomField{StringField("only", "one")}

		next := ApplyUserInfoPatch(current, UserInfoPatch{
			Name:          str("Renamed"),
			Email:         str("new@example.com"),
			EmailVerified: &verified,
			UpdatedAt:     &updatedAt,
			CustomFields:  &fields,
		})

		assert.Equal(t, "Renamed", next.Name)
		assert.Equal(t, "new@example.com", next.Email)
		assert.False(t, next.EmailVerified)
		assert.Equal(t, updatedAt, next.UpdatedAt)
		assert.Equal(t, fields, next.CustomFields)

		assert.Equal(t, current.Subject, next.Subject)
		assert.Equal(t, current.GivenName, next.GivenName)
		assert.Equal(t, current.Picture, next.Picture)
	})

	t.Run("EmptyStringIsAValue", func(t *testing.T) {
		next := ApplyUserInfoPatch(testUserInfo(), UserInfoPatch{Nickname: str("")})
		assert.Equal(t, "", next.Nickname)
	})

	t.Run("DoesNotAliasInputs", func(t *testing.T) {
		current := testUserInfo()
		next := ApplyUserInfoPatch(current, UserInfoPatch{})
		*next.CustomFields[0].Value.String = "changed"
		assert.Equal(t, "platform", *current.CustomFields[0].Value.String)

		fields := []CustomField{StringField("a", "b")}
		next = ApplyUserInfoPatch(current, UserInfoPatch{CustomFields: &fields})
		*fields[0].Value.String = "changed"
		assert.Equal(t, "b", *next.CustomFields[0].Value.String)
	})
}
