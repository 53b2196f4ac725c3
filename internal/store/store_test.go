package store

import (
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/propdesk/propdesk/internal/db"
)

// openTestDB opens a fresh database in a temp directory through the real
// migration path, so tests run against the same schema the server uses.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d, err := db.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	return d
}
