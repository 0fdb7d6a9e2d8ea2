package repo

import (
	"path/filepath"
	"testing"
)

// newTestDB открывает файловый SQLite во временном каталоге теста.
// Файл вместо :memory:, чтобы пул соединений gorm видел одну и ту же базу,
// а тесты не делили состояние через общий кеш.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "toolshed.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite (modernc): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }
