package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"
)

func TestMigrationFiles_PairedUpAndDown(t *testing.T) {
	names, err := fs.Glob(MigrationFiles, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, name := range names {
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		default:
			t.Fatalf("unexpected migration file %s", name)
		}
	}
	require.Equal(t, ups, downs)
}

func TestMigrationFiles_SourceReadsVersions(t *testing.T) {
	src, err := iofs.New(MigrationFiles, ".")
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	require.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	require.Equal(t, uint(2), next)

	body, _, err := src.ReadUp(next)
	require.NoError(t, err)
	defer body.Close()
}

func TestMigrationFiles_CreateBothTables(t *testing.T) {
	var all strings.Builder
	names, err := fs.Glob(MigrationFiles, "*.up.sql")
	require.NoError(t, err)
	for _, name := range names {
		data, err := fs.ReadFile(MigrationFiles, name)
		require.NoError(t, err)
		all.Write(data)
	}
	require.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS revisions")
	require.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS monthly_sizes")
}
