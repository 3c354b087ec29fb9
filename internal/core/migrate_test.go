// AngelaMos | 2026
// migrate_test.go

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersionsAreOrdered(t *testing.T) {
	versions, err := migrationVersions()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"001_create_users.sql",
		"002_create_refresh_tokens.sql",
		"003_create_reservations.sql",
	}, versions)
}

func TestMigrationsDeclareUniqueConstraints(t *testing.T) {
	users, err := migrationFiles.ReadFile("migrations/001_create_users.sql")
	require.NoError(t, err)
	for _, c := range []string{
		"users_username_key",
		"users_email_key",
		"users_phone_number_key",
	} {
		assert.Contains(t, string(users), c)
	}

	tokens, err := migrationFiles.ReadFile("migrations/002_create_refresh_tokens.sql")
	require.NoError(t, err)
	assert.Contains(t, string(tokens), "refresh_tokens_token_hash_key")
	assert.Contains(t, string(tokens), "ON DELETE CASCADE")

	reservations, err := migrationFiles.ReadFile("migrations/003_create_reservations.sql")
	require.NoError(t, err)
	assert.Contains(t, string(reservations), "reservations_date_hours_key")
	assert.NotContains(t, string(reservations), "REFERENCES")
}
