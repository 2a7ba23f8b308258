package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/model"
)

var entryCols = []string{"id", "owner_id", "key", "value", "notes", "created_at", "updated_at"}

func strPtr(s string) *string { return &s }

func TestEntryRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	ctx := context.Background()
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	notes := strPtr("work mail")

	mock.ExpectQuery(`INSERT INTO secret_entries \(owner_id, key, value, notes, created_at, updated_at\) VALUES \(\$1, \$2, \$3, \$4, now\(\), now\(\)\) RETURNING id, owner_id, key, value, notes, created_at, updated_at`).
		WithArgs(owner, "email", "secret", notes).
		WillReturnRows(pgxmock.NewRows(entryCols).AddRow(id, owner, "email", "secret", notes, ts, ts))

	e, err := r.Create(ctx, owner, model.NewEntry{Key: "email", Value: "secret", Notes: notes})
	require.NoError(t, err)
	require.Equal(t, id, e.ID)
	require.Equal(t, owner, e.OwnerID)
	require.Equal(t, e.CreatedAt, e.UpdatedAt)
	require.Equal(t, "work mail", *e.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_Create_DuplicateKey(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`INSERT INTO secret_entries`).
		WithArgs(owner, "email", "x", (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := r.Create(context.Background(), owner, model.NewEntry{Key: "email", Value: "x"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestEntryRepo_List_ScopedByOwner(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)

	owner := uuid.Must(uuid.NewV4())
	t1 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)

	mock.ExpectQuery(`SELECT id, owner_id, key, value, notes, created_at, updated_at FROM secret_entries WHERE owner_id=\$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(entryCols).
			AddRow(uuid.Must(uuid.NewV4()), owner, "a", "1", (*string)(nil), t1, t1).
			AddRow(uuid.Must(uuid.NewV4()), owner, "b", "2", strPtr("n"), t2, t2))

	out, err := r.List(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].Key)
	require.Nil(t, out[0].Notes)
	require.Equal(t, "n", *out[1].Notes)
}

func TestEntryRepo_List_EmptyAndError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT .* FROM secret_entries WHERE owner_id=\$1`).
		WithArgs(owner).
		WillReturnRows(pgxmock.NewRows(entryCols))
	out, err := r.List(context.Background(), owner)
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Empty(t, out)

	mock.ExpectQuery(`SELECT .* FROM secret_entries WHERE owner_id=\$1`).
		WithArgs(owner).
		WillReturnError(&pgconn.PgError{Code: "08006"})
	_, err = r.List(context.Background(), owner)
	require.ErrorIs(t, err, errs.ErrUnavailable)
}

func TestEntryRepo_GetByKey(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())
	ts := time.Now()

	mock.ExpectQuery(`SELECT .* FROM secret_entries WHERE owner_id=\$1 AND key=\$2 LIMIT 2`).
		WithArgs(owner, "k").
		WillReturnRows(pgxmock.NewRows(entryCols).AddRow(uuid.Must(uuid.NewV4()), owner, "k", "v", (*string)(nil), ts, ts))
	e, err := r.GetByKey(context.Background(), owner, "k")
	require.NoError(t, err)
	require.Equal(t, "v", e.Value)

	mock.ExpectQuery(`SELECT .* FROM secret_entries WHERE owner_id=\$1 AND key=\$2 LIMIT 2`).
		WithArgs(owner, "missing").
		WillReturnRows(pgxmock.NewRows(entryCols))
	_, err = r.GetByKey(context.Background(), owner, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`SELECT .* FROM secret_entries WHERE owner_id=\$1 AND key=\$2 LIMIT 2`).
		WithArgs(owner, "dup").
		WillReturnRows(pgxmock.NewRows(entryCols).
			AddRow(uuid.Must(uuid.NewV4()), owner, "dup", "1", (*string)(nil), ts, ts).
			AddRow(uuid.Must(uuid.NewV4()), owner, "dup", "2", (*string)(nil), ts, ts))
	_, err = r.GetByKey(context.Background(), owner, "dup")
	require.ErrorIs(t, err, errs.ErrAmbiguousKey)
}

func TestEntryRepo_Update(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`UPDATE secret_entries SET value=\$3, notes=\$4, updated_at=now\(\) WHERE id=\$1 AND owner_id=\$2 RETURNING`).
		WithArgs(id, owner, "new", (*string)(nil)).
		WillReturnRows(pgxmock.NewRows(entryCols).AddRow(id, owner, "k", "new", (*string)(nil), created, updated))
	e, err := r.Update(context.Background(), owner, model.EntryUpdate{ID: id, Value: "new"})
	require.NoError(t, err)
	require.Equal(t, "new", e.Value)
	require.True(t, e.UpdatedAt.After(e.CreatedAt))

	mock.ExpectQuery(`UPDATE secret_entries`).
		WithArgs(id, owner, "new", (*string)(nil)).
		WillReturnError(pgx.ErrNoRows)
	_, err = r.Update(context.Background(), owner, model.EntryUpdate{ID: id, Value: "new"})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestEntryRepo_DeleteByKey_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	ts := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM secret_entries WHERE owner_id=\$1 AND key=\$2 FOR UPDATE`).
		WithArgs(owner, "email").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectQuery(`DELETE FROM secret_entries WHERE id=\$1 AND owner_id=\$2 RETURNING`).
		WithArgs(id, owner).
		WillReturnRows(pgxmock.NewRows(entryCols).AddRow(id, owner, "email", "secret", (*string)(nil), ts, ts))
	mock.ExpectCommit()

	e, err := r.DeleteByKey(context.Background(), owner, "email")
	require.NoError(t, err)
	require.Equal(t, id, e.ID)
	require.Equal(t, "email", e.Key)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_DeleteByKey_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM secret_entries WHERE owner_id=\$1 AND key=\$2 FOR UPDATE`).
		WithArgs(owner, "email").
		WillReturnRows(pgxmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := r.DeleteByKey(context.Background(), owner, "email")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_DeleteByKey_Ambiguous(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM secret_entries WHERE owner_id=\$1 AND key=\$2 FOR UPDATE`).
		WithArgs(owner, "dup").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).
			AddRow(uuid.Must(uuid.NewV4())).
			AddRow(uuid.Must(uuid.NewV4())))
	mock.ExpectRollback()

	_, err := r.DeleteByKey(context.Background(), owner, "dup")
	require.ErrorIs(t, err, errs.ErrAmbiguousKey)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_DeleteByKey_BeginAndCommitErrors(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())
	id := uuid.Must(uuid.NewV4())
	ts := time.Now()

	mock.ExpectBegin().WillReturnError(&pgconn.PgError{Code: "08006"})
	_, err := r.DeleteByKey(context.Background(), owner, "k")
	require.ErrorIs(t, err, errs.ErrUnavailable)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM secret_entries`).
		WithArgs(owner, "k").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))
	mock.ExpectQuery(`DELETE FROM secret_entries`).
		WithArgs(id, owner).
		WillReturnRows(pgxmock.NewRows(entryCols).AddRow(id, owner, "k", "v", (*string)(nil), ts, ts))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	e, err := r.DeleteByKey(context.Background(), owner, "k")
	require.Nil(t, e)
	require.ErrorIs(t, err, errs.ErrInternal)
}

func TestEntryRepo_Import(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO secret_entries \(owner_id, key, value, notes, created_at, updated_at\) VALUES \(\$1, \$2, \$3, \$4, now\(\), now\(\)\) ON CONFLICT \(owner_id, key\) DO NOTHING`).
		WithArgs(owner, "a", "1", (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO secret_entries`).
		WithArgs(owner, "b", "2", strPtr("n")).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectCommit()

	res, err := r.Import(context.Background(), owner, []model.NewEntry{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2", Notes: strPtr("n")},
	})
	require.NoError(t, err)
	require.Equal(t, model.ImportResult{Imported: 1, Skipped: 1}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepo_Import_RollbackOnError(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewEntryRepo(db)
	owner := uuid.Must(uuid.NewV4())

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO secret_entries`).
		WithArgs(owner, "a", "1", (*string)(nil)).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	_, err := r.Import(context.Background(), owner, []model.NewEntry{{Key: "a", Value: "1"}})
	require.ErrorIs(t, err, errs.ErrInternal)
	require.NoError(t, mock.ExpectationsWereMet())
}
