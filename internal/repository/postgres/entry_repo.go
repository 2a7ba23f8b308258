package postgres

import (
	"context"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/and161185/passvault/internal/errs"
	"github.com/and161185/passvault/internal/model"
)

const entryColumns = `id, owner_id, key, value, notes, created_at, updated_at`

// EntryRepo implements EntryRepository using PostgreSQL.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

func scanEntry(row pgx.Row) (*model.Entry, error) {
	var e model.Entry
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Key, &e.Value, &e.Notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new entry; both timestamps come from the same now().
func (r *EntryRepo) Create(ctx context.Context, ownerID uuid.UUID, ne model.NewEntry) (*model.Entry, error) {
	const q = `
INSERT INTO secret_entries (owner_id, key, value, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
RETURNING ` + entryColumns
	e, err := scanEntry(r.db.Pool.QueryRow(ctx, q, ownerID, ne.Key, ne.Value, ne.Notes))
	if err != nil {
		return nil, classify(err)
	}
	return e, nil
}

// List returns all entries of the owner.
func (r *EntryRepo) List(ctx context.Context, ownerID uuid.UUID) ([]model.Entry, error) {
	const q = `
SELECT ` + entryColumns + `
FROM secret_entries
WHERE owner_id=$1
ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []model.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, classify(err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// GetByKey returns the owner's entry with the given key.
func (r *EntryRepo) GetByKey(ctx context.Context, ownerID uuid.UUID, key string) (*model.Entry, error) {
	const q = `
SELECT ` + entryColumns + `
FROM secret_entries
WHERE owner_id=$1 AND key=$2
LIMIT 2`
	rows, err := r.db.Pool.Query(ctx, q, ownerID, key)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var found []*model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, classify(err)
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	switch len(found) {
	case 0:
		return nil, errs.ErrNotFound
	case 1:
		return found[0], nil
	default:
		return nil, errs.ErrAmbiguousKey
	}
}

// Update replaces value and notes of the owner's entry by id.
func (r *EntryRepo) Update(ctx context.Context, ownerID uuid.UUID, u model.EntryUpdate) (*model.Entry, error) {
	const q = `
UPDATE secret_entries SET value=$3, notes=$4, updated_at=now()
WHERE id=$1 AND owner_id=$2
RETURNING ` + entryColumns
	e, err := scanEntry(r.db.Pool.QueryRow(ctx, q, u.ID, ownerID, u.Value, u.Notes))
	if err != nil {
		return nil, classify(err)
	}
	return e, nil
}

// DeleteByKey deletes exactly one entry matching (owner, key) and returns it.
// Zero matches yield ErrNotFound, more than one ErrAmbiguousKey; in both cases nothing is deleted.
func (r *EntryRepo) DeleteByKey(ctx context.Context, ownerID uuid.UUID, key string) (e *model.Entry, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			e, err = nil, classify(cerr)
		}
	}()

	const sel = `SELECT id FROM secret_entries WHERE owner_id=$1 AND key=$2 FOR UPDATE`
	const del = `DELETE FROM secret_entries WHERE id=$1 AND owner_id=$2 RETURNING ` + entryColumns

	rows, err := tx.Query(ctx, sel, ownerID, key)
	if err != nil {
		return nil, classify(err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err = rows.Scan(&id); err != nil {
			rows.Close()
			return nil, classify(err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, classify(err)
	}

	switch len(ids) {
	case 0:
		return nil, errs.ErrNotFound
	case 1:
	default:
		return nil, errs.ErrAmbiguousKey
	}

	e, err = scanEntry(tx.QueryRow(ctx, del, ids[0], ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, classify(err)
	}
	return e, nil
}

// Import inserts all entries in one transaction. Keys the owner already has are skipped.
func (r *EntryRepo) Import(ctx context.Context, ownerID uuid.UUID, entries []model.NewEntry) (res model.ImportResult, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return model.ImportResult{}, classify(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			res, err = model.ImportResult{}, classify(cerr)
		}
	}()

	const ins = `
INSERT INTO secret_entries (owner_id, key, value, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (owner_id, key) DO NOTHING`

	for _, ne := range entries {
		tag, execErr := tx.Exec(ctx, ins, ownerID, ne.Key, ne.Value, ne.Notes)
		if execErr != nil {
			return model.ImportResult{}, classify(execErr)
		}
		if tag.RowsAffected() == 1 {
			res.Imported++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}
