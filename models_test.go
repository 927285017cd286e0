package contacts_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	contacts "github.com/contactio/go-contacts"
)

func TestAccount_Transitions(t *testing.T) {
	base := contacts.Account{
		Username:     "tony",
		Email:        "tony@sparrow.com",
		PasswordHash: "hashed",
	}

	t.Run("ConfirmEmail", func(t *testing.T) {
		next, changed := base.ConfirmEmail()
		assert.True(t, changed)
		assert.True(t, next.Confirmed)
		assert.False(t, base.Confirmed, "receiver must not mutate")

		again, changed := next.ConfirmEmail()
		assert.False(t, changed)
		assert.True(t, again.Confirmed)
	})

	t.Run("BeginSession and EndSession", func(t *testing.T) {
		active := base.BeginSession("refresh-token")
		assert.True(t, active.HasActiveSession())
		assert.Equal(t, "refresh-token", active.RefreshToken)
		assert.False(t, base.HasActiveSession())

		replaced := active.BeginSession("newer-token")
		assert.Equal(t, "newer-token", replaced.RefreshToken)

		ended := replaced.EndSession()
		assert.False(t, ended.HasActiveSession())
	})

	t.Run("WithPasswordHash leaves the rest alone", func(t *testing.T) {
		confirmed, _ := base.ConfirmEmail()
		active := confirmed.BeginSession("refresh-token")

		next := active.WithPasswordHash("new-hash")
		assert.Equal(t, "new-hash", next.PasswordHash)
		assert.True(t, next.Confirmed)
		assert.Equal(t, "refresh-token", next.RefreshToken)
	})

	t.Run("WithAvatarURL", func(t *testing.T) {
		next := base.WithAvatarURL("https://cdn.example.com/a.png")
		assert.Equal(t, "https://cdn.example.com/a.png", next.AvatarURL)
	})
}

func TestAccount_JSONHidesSecrets(t *testing.T) {
	account := contacts.Account{
		Username:     "tony",
		Email:        "tony@sparrow.com",
		PasswordHash: "hashed",
		RefreshToken: "refresh-token",
	}

	raw, err := json.Marshal(account)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))

	assert.NotContains(t, out, "password_hash")
	assert.NotContains(t, out, "refresh_token")
	assert.NotContains(t, string(raw), "hashed")
	assert.NotContains(t, string(raw), "refresh-token")
	assert.Equal(t, "tony", out["username"])
}
