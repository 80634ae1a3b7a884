package sqlbuild

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/art1415926535/graphql-sqlfilter/model"
	"github.com/art1415926535/graphql-sqlfilter/query"
)

func openDuckDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("failed to open duckdb: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER,
			username VARCHAR,
			balance DOUBLE,
			is_active BOOLEAN
		);
		CREATE TABLE memberships (
			id INTEGER,
			user_id INTEGER,
			is_moderator BOOLEAN
		);
		INSERT INTO users VALUES
			(1, 'alice', 250.0, true),
			(2, 'bob', 50.5, true),
			(3, 'carol', NULL, false);
		INSERT INTO memberships VALUES
			(1, 1, true),
			(2, 2, false),
			(3, 3, true);
	`)
	if err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return db
}

func TestDBExecutorQuery(t *testing.T) {
	db := openDuckDB(t)
	exec := &DBExecutor{DB: db}
	b := NewBuilder(nil)

	q := NewQuery("users", "u")
	p, err := b.Column(q.Base(), "balance", model.TypeFloat).Gt(100.0)
	if err != nil {
		t.Fatalf("Gt failed: %v", err)
	}
	q.Where(p)

	sqlText, args := q.SQL("id", "username")
	rows, err := exec.Query(context.Background(), sqlText, args...)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d: %v", len(rows), rows)
	}
	if rows[0]["username"] != "alice" {
		t.Errorf("expected alice, got %v", rows[0]["username"])
	}
}

func TestDBExecutorExists(t *testing.T) {
	db := openDuckDB(t)
	exec := &DBExecutor{DB: db}
	b := NewBuilder(nil)

	q := NewQuery("users", "u")
	sub := q.Sub("memberships", "m")
	corr := b.ColumnsEqual(sub.Base(), "user_id", q.Base(), "id")
	mod, err := b.Column(sub.Base(), "is_moderator", model.TypeBoolean).Eq(true)
	if err != nil {
		t.Fatalf("Eq failed: %v", err)
	}
	active, err := b.Column(q.Base(), "is_active", model.TypeBoolean).Eq(true)
	if err != nil {
		t.Fatalf("Eq failed: %v", err)
	}
	q.Where(b.And(active, b.Exists(sub, b.And(corr, mod))))

	sqlText, args := q.SQL("username")
	rows, err := exec.Query(context.Background(), sqlText, args...)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 1 || rows[0]["username"] != "alice" {
		t.Errorf("expected only alice, got %v", rows)
	}
}

func TestDBExecutorJoin(t *testing.T) {
	db := openDuckDB(t)
	exec := &DBExecutor{DB: db}
	b := NewBuilder(nil)

	q := NewQuery("users", "u")
	m := q.NewAlias("memberships", "m")
	if err := q.AddJoin(m, b.ColumnsEqual(m, "user_id", q.Base(), "id"), query.JoinInner); err != nil {
		t.Fatalf("AddJoin failed: %v", err)
	}
	p, err := b.Column(m, "is_moderator", model.TypeBoolean).Eq(true)
	if err != nil {
		t.Fatalf("Eq failed: %v", err)
	}
	q.Where(p)

	sqlText, args := q.SQL("username")
	rows, err := exec.Query(context.Background(), sqlText, args...)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 moderators, got %v", rows)
	}
}
