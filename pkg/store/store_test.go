package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/local-idp/pkg/claims"
	"github.com/tendant/local-idp/pkg/errors"
)

func TestAudiencesStore(t *testing.T) {
	s := NewAudiencesStore([]Audience{
		{Name: "audience1", Permissions: []string{"audience1:permission1", "audience1:permission2"}},
		{Name: "audience2", Permissions: []string{"audience2:permission2"}},
	})

	t.Run("Permissions", func(t *testing.T) {
		assert.Equal(t, []string{"audience1:permission1", "audience1:permission2"}, s.Permissions("audience1"))
	})

	t.Run("UnknownAudience", func(t *testing.T) {
		perms := s.Permissions("nope")
		assert.NotNil(t, perms)
		assert.Empty(t, perms)
	})

	t.Run("Set", func(t *testing.T) {
		s.Set("payments", []string{"read", "write"})
		assert.Equal(t, []string{"read", "write"}, s.Permissions("payments"))

		s.Set("payments", []string{"read"})
		assert.Equal(t, []string{"read"}, s.Permissions("payments"))
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		perms := s.Permissions("audience2")
		perms[0] = "mutated"
		assert.Equal(t, []string{"audience2:permission2"}, s.Permissions("audience2"))

		all := s.All()
		all["audience2"][0] = "mutated"
		assert.Equal(t, []string{"audience2:permission2"}, s.Permissions("audience2"))
	})

	t.Run("All", func(t *testing.T) {
		all := s.All()
		assert.Contains(t, all, "audience1")
		assert.Contains(t, all, "payments")
		assert.Equal(t, []string{"audience1", "audience2", "payments"}, s.Names())
	})
}

func TestAuthorizationStore(t *testing.T) {
	t.Run("RedeemOnce", func(t *testing.T) {
		s := NewAuthorizationStore(time.Minute)
		code := s.Issue("payments")
		assert.Equal(t, 1, s.Pending())

		audience, err := s.Redeem(code)
		require.NoError(t, err)
		assert.Equal(t, "payments", audience)

		_, err = s.Redeem(code)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGrant))
		assert.Equal(t, 0, s.Pending())
	})

	t.Run("UnknownCode", func(t *testing.T) {
		s := NewAuthorizationStore(time.Minute)
		_, err := s.Redeem("does-not-exist")
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGrant))
	})

	t.Run("Expired", func(t *testing.T) {
		s := NewAuthorizationStore(20 * time.Millisecond)
		s.Put("code", "payments")
		time.Sleep(60 * time.Millisecond)

		_, err := s.Redeem("code")
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidGrant))
	})

	t.Run("DefaultTTL", func(t *testing.T) {
		s := NewAuthorizationStore(0)
		assert.Equal(t, DefaultAuthorizationTTL, s.ttl)
	})

	t.Run("ConcurrentRedeem", func(t *testing.T) {
		s := NewAuthorizationStore(time.Minute)
		code := s.Issue("payments")

		var successes atomic.Int32
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.Redeem(code); err == nil {
					successes.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), successes.Load())
	})
}

func TestUserInfoStore(t *testing.T) {
	initial := claims.UserInfo{
		Subject:      "google-apps|developers@prima.it",
		Name:         "Local Locie Auth0",
		Email:        "developers@prima.it",
		CustomFields: []claims.CustomField{claims.VecField("roles", "admin")},
	}
	s := NewUserInfoStore(initial)

	t.Run("Get", func(t *testing.T) {
		info := s.Get()
		assert.Equal(t, initial.Subject, info.Subject)

		info.CustomFields[0].Value.Vec[0] = "mutated"
		assert.Equal(t, []string{"admin"}, s.Get().CustomFields[0].Value.Vec)
	})

	t.Run("Update", func(t *testing.T) {
		name := "Someone Else"
		updated := s.Update(claims.UserInfoPatch{Name: &name})

		assert.Equal(t, "Someone Else", updated.Name)
		assert.Equal(t, initial.Email, updated.Email)
		assert.Equal(t, updated, s.Get())
	})
}

func TestCustomClaimsStore(t *testing.T) {
	s := NewCustomClaimsStore(nil)
	assert.NotNil(t, s.Get())
	assert.Empty(t, s.Get())

	fields := []claims.CustomField{
		claims.StringField("at_test", "value"),
		claims.VecField("groups", "a", "b"),
	}
	s.Replace(fields)
	assert.Equal(t, fields, s.Get())

	fields[0] = claims.StringField("changed", "x")
	assert.Equal(t, "at_test", s.Get()[0].Name)

	s.Replace([]claims.CustomField{})
	assert.Empty(t, s.Get())
}
