package database

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

func testDSN() string {
	envOr := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "autopublicador")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "autopublicador")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func TestLegacyKeywordStatusRemap(t *testing.T) {
	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	clean := func() {
		db.Exec(`DELETE FROM keywords WHERE keyword LIKE 'legada-%'`)
	}
	clean()
	t.Cleanup(clean)

	// Rows shaped the way the legacy installation exports them: old status
	// values, empty priority, no difficulty.
	_, err = db.Exec(`
		INSERT INTO keywords (keyword, status, priority, difficulty, search_volume)
		VALUES ('legada-disponible', 'available', '', NULL, NULL),
		       ('legada-usada', 'used', 'high', NULL, 120),
		       ('legada-reservada', 'reserved', '', NULL, NULL)
	`)
	if err != nil {
		t.Fatalf("insert legacy rows: %v", err)
	}

	// Rewind past the remap migration and run it again over the imports.
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		t.Fatalf("goose dialect: %v", err)
	}
	if err := goose.DownTo(db, "migrations", 1); err != nil {
		t.Fatalf("goose down-to: %v", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		t.Fatalf("goose up: %v", err)
	}
	goose.SetBaseFS(nil)

	checks := []struct {
		keyword  string
		status   string
		priority string
	}{
		{"legada-disponible", "pending", "medium"},
		{"legada-usada", "completed", "high"},
		{"legada-reservada", "processing", "medium"},
	}
	for _, c := range checks {
		var status, priority string
		var difficulty sql.NullFloat64
		var usedAt sql.NullTime
		err := db.QueryRow(
			`SELECT status, priority, difficulty, used_at FROM keywords WHERE keyword = $1`,
			c.keyword,
		).Scan(&status, &priority, &difficulty, &usedAt)
		if err != nil {
			t.Fatalf("%s: %v", c.keyword, err)
		}
		if status != c.status {
			t.Errorf("%s: status = %q, want %q", c.keyword, status, c.status)
		}
		if priority != c.priority {
			t.Errorf("%s: priority = %q, want %q", c.keyword, priority, c.priority)
		}
		if !difficulty.Valid || difficulty.Float64 != 0 {
			t.Errorf("%s: difficulty = %+v, want 0.0", c.keyword, difficulty)
		}
		if c.status == "completed" && !usedAt.Valid {
			t.Errorf("%s: used_at not backfilled", c.keyword)
		}
	}
}
