// Package repo contains all database access logic for Draftroom.
// No business logic lives here — only SQL and type mapping. Draft
// snapshots are stored whole as JSONB: the aggregate is small, always
// read and written as a unit, and the wire shape is the interoperability
// contract, so a row per draft beats a relational explosion.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mparedes/draftroom/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DraftRepo persists draft snapshots keyed by draft id. It satisfies
// session.Store, acting as the durable storage collaborator the live
// sessions save to and resume from.
type DraftRepo interface {
	// Save upserts the draft snapshot.
	Save(ctx context.Context, d domain.Draft) error

	// Load returns the stored snapshot for id.
	// Returns domain.ErrNotFound when none exists.
	Load(ctx context.Context, id string) (domain.Draft, error)

	// Delete removes the stored snapshot for id.
	// Returns domain.ErrNotFound when none exists.
	Delete(ctx context.Context, id string) error
}

// pgDraftRepo is the Postgres implementation of DraftRepo.
type pgDraftRepo struct {
	db db
}

// NewDraftRepo constructs a DraftRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDraftRepo(db db) DraftRepo {
	return &pgDraftRepo{db: db}
}

// Save upserts the snapshot, bumping updated_at on conflict.
func (r *pgDraftRepo) Save(ctx context.Context, d domain.Draft) error {
	snapshot, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("repo.DraftRepo.Save: marshal: %w", err)
	}

	const q = `
		INSERT INTO drafts (id, snapshot)
		VALUES (@id, @snapshot)
		ON CONFLICT (id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = now()`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": d.ID, "snapshot": snapshot}); err != nil {
		return fmt.Errorf("repo.DraftRepo.Save: %w", err)
	}
	return nil
}

// Load retrieves and decodes the snapshot for id.
func (r *pgDraftRepo) Load(ctx context.Context, id string) (domain.Draft, error) {
	const q = `SELECT snapshot FROM drafts WHERE id = @id`

	var snapshot []byte
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Draft{}, fmt.Errorf("repo.DraftRepo.Load: %w", domain.ErrNotFound)
		}
		return domain.Draft{}, fmt.Errorf("repo.DraftRepo.Load: %w", err)
	}

	var d domain.Draft
	if err := json.Unmarshal(snapshot, &d); err != nil {
		return domain.Draft{}, fmt.Errorf("repo.DraftRepo.Load: unmarshal: %w", err)
	}
	return d, nil
}

// Delete removes the snapshot row for id.
func (r *pgDraftRepo) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM drafts WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DraftRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DraftRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}
