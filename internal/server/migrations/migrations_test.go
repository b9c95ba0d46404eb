package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_EmbeddedInOrder(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"00001_create_users.sql",
		"00002_create_payments.sql",
		"00003_create_contacts.sql",
		"00004_users_email_case_insensitive.sql",
	}, names)
}

func TestMigrations_HaveUpAndDown(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)

	for _, name := range names {
		b, err := fs.ReadFile(Migrations, name)
		require.NoError(t, err)
		body := string(b)
		assert.True(t, strings.Contains(body, "-- +goose Up"), name)
		assert.True(t, strings.Contains(body, "-- +goose Down"), name)
	}
}

func TestMigrations_UserEmailUniqueIgnoresCase(t *testing.T) {
	b, err := fs.ReadFile(Migrations, "00004_users_email_case_insensitive.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "ON users (lower(email))")
}
