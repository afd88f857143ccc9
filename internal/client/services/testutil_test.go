package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"libapp/internal/logging"
)

var dbSeq int

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelError)
}

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dbSeq++
	dsn := fmt.Sprintf("file:services_tests_%d?mode=memory&cache=shared", dbSeq)
	db, err := InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
