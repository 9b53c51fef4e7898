package store_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/selimozcann/StoreHunter/internal/store"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Unexpected error stubbing DB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertMockExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Mock expectations not met: %v", err)
	}
}

func TestPostgresMigrate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "tests"`)).WillReturnResult(sqlmock.NewResult(0, 0))

	if err := store.NewPostgres[record](db, "tests", nil).Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	assertMockExpectations(t, mock)
}

func TestPostgresGet(t *testing.T) {
	db, mock := newMock(t)
	q := regexp.QuoteMeta(`SELECT payload FROM "tests" WHERE id = $1`)
	mock.ExpectQuery(q).WithArgs("a").WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`{"name":"a","count":3}`)))
	mock.ExpectQuery(q).WithArgs("missing").WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	p := store.NewPostgres[record](db, "tests", nil)
	got, err := p.Get(context.Background(), "a")
	if err != nil || got.Name != "a" || got.Count != 3 {
		t.Fatalf("unexpected get %+v %v", got, err)
	}
	if _, err := p.Get(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertMockExpectations(t, mock)
}

func TestPostgresSet(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "tests" (id, payload, created_at, updated_at) VALUES ($1, $2, $3, $3)`)).
		WithArgs("a", []byte(`{"name":"a","count":1}`), at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := store.NewPostgres[record](db, "tests", nil).WithClock(func() time.Time { return at })
	if err := p.Set(context.Background(), "a", record{Name: "a", Count: 1}); err != nil {
		t.Fatalf("set: %v", err)
	}
	assertMockExpectations(t, mock)
}

func TestPostgresDelete(t *testing.T) {
	db, mock := newMock(t)
	q := regexp.QuoteMeta(`DELETE FROM "tests" WHERE id = $1`)
	mock.ExpectExec(q).WithArgs("a").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("b").WillReturnResult(sqlmock.NewResult(0, 0))

	p := store.NewPostgres[record](db, "tests", nil)
	if err := p.Delete(context.Background(), "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := p.Delete(context.Background(), "b"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	assertMockExpectations(t, mock)
}

func TestPostgresList(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "payload", "created_at", "updated_at"}).
		AddRow("a", []byte(`{"name":"a"}`), at, at).
		AddRow("bad", []byte(`not json`), at, at).
		AddRow("b", []byte(`{"name":"b"}`), at.Add(time.Second), at.Add(time.Second))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, payload, created_at, updated_at FROM "tests" ORDER BY created_at, id`)).WillReturnRows(rows)

	entries, err := store.NewPostgres[record](db, "tests", nil).List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Value.Name != "a" || entries[1].ID != "b" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	assertMockExpectations(t, mock)
}

func TestPostgresDeleteOlderThan(t *testing.T) {
	db, mock := newMock(t)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tests" WHERE created_at < $1`)).WithArgs(cutoff).WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.NewPostgres[record](db, "tests", nil).DeleteOlderThan(context.Background(), cutoff)
	if err != nil || n != 4 {
		t.Fatalf("unexpected sweep %d %v", n, err)
	}
	assertMockExpectations(t, mock)
}
