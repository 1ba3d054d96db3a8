package database

import (
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations(t *testing.T) {
	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err, "embedded migrations should parse")
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)

	for {
		up, _, err := src.ReadUp(version)
		require.NoError(t, err, "version %d has no up migration", version)
		body, err := io.ReadAll(up)
		up.Close()
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(string(body)))

		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		down.Close()

		next, err := src.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		require.NoError(t, err)
		version = next
	}
}

func TestMigrations_DeclareConstraintResources(t *testing.T) {
	body, err := migrationsFS.ReadFile("migrations/000001_init.up.sql")
	require.NoError(t, err)

	for constraint := range constraintResources {
		assert.Contains(t, string(body), "CONSTRAINT "+constraint+" ", "constraint %s is not declared", constraint)
	}
}
