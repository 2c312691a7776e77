// Package testdb opens isolated in-memory SQLite databases for tests.
package testdb

import (
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ventas/database/migrations"
	"github.com/shashiranjanraj/ventas/pkg/database"
)

// Open returns a migrated in-memory database private to t. Shared cache
// keyed by the test name keeps parallel tests apart.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := database.Open("sqlite", "file:"+name+"?mode=memory&cache=shared", false)
	if err != nil {
		t.Fatalf("testdb: open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := db.AutoMigrate(migrations.Models()...); err != nil {
		t.Fatalf("testdb: migrate: %v", err)
	}
	return db
}
