// Package dbtest provides migrated in-memory databases for tests.
package dbtest

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"mindweaver-server/internal/config"
	"mindweaver-server/internal/database"
	"mindweaver-server/internal/logger"
)

// New opens a private in-memory sqlite database with the full schema.
// It is closed when the test finishes.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()) + "_" + uuid.NewString()
	cfg := config.DatabaseConfig{
		Driver: "sqlite",
		Name:   "file:" + name + "?mode=memory&cache=shared",
	}

	db, err := database.Open(cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}
