package exports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrArchiveNotFound is returned when no export matches.
var ErrArchiveNotFound = errors.New("export not found")

// ArchiveRecord is one board export stored in object storage.
type ArchiveRecord struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	ObjectKey   string
	Rows        int
	WindowStart time.Time
	WindowEnd   time.Time
	CreatedBy   *uuid.UUID
	CreatedAt   time.Time
}

// ArchiveStore keeps the history of archived exports.
type ArchiveStore interface {
	RecordArchive(ctx context.Context, rec ArchiveRecord) (ArchiveRecord, error)
	ListArchives(ctx context.Context, tenantID uuid.UUID, limit int) ([]ArchiveRecord, error)
	GetArchive(ctx context.Context, tenantID, id uuid.UUID) (ArchiveRecord, error)
}

// Repository provides data access for export operations.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const recordArchiveQuery = `
	INSERT INTO lead_exports (tenant_id, object_key, row_count, window_start, window_end, created_by)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id, created_at`

// RecordArchive stores rec and returns it with its generated fields.
func (r *Repository) RecordArchive(ctx context.Context, rec ArchiveRecord) (ArchiveRecord, error) {
	err := r.pool.QueryRow(ctx, recordArchiveQuery,
		rec.TenantID, rec.ObjectKey, rec.Rows, rec.WindowStart, rec.WindowEnd, rec.CreatedBy,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return ArchiveRecord{}, fmt.Errorf("record export: %w", err)
	}
	return rec, nil
}

const listArchivesQuery = `
	SELECT id, tenant_id, object_key, row_count, window_start, window_end, created_by, created_at
	FROM lead_exports
	WHERE tenant_id = $1
	ORDER BY created_at DESC
	LIMIT $2`

// ListArchives returns the most recent exports of the tenant.
func (r *Repository) ListArchives(ctx context.Context, tenantID uuid.UUID, limit int) ([]ArchiveRecord, error) {
	rows, err := r.pool.Query(ctx, listArchivesQuery, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}
	defer rows.Close()

	items := make([]ArchiveRecord, 0)
	for rows.Next() {
		rec, err := scanArchive(rows)
		if err != nil {
			return nil, fmt.Errorf("scan export: %w", err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exports: %w", err)
	}
	return items, nil
}

const getArchiveQuery = `
	SELECT id, tenant_id, object_key, row_count, window_start, window_end, created_by, created_at
	FROM lead_exports
	WHERE tenant_id = $1 AND id = $2`

// GetArchive loads one export of the tenant.
func (r *Repository) GetArchive(ctx context.Context, tenantID, id uuid.UUID) (ArchiveRecord, error) {
	rec, err := scanArchive(r.pool.QueryRow(ctx, getArchiveQuery, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ArchiveRecord{}, ErrArchiveNotFound
	}
	if err != nil {
		return ArchiveRecord{}, fmt.Errorf("get export: %w", err)
	}
	return rec, nil
}

func scanArchive(row pgx.Row) (ArchiveRecord, error) {
	var rec ArchiveRecord
	err := row.Scan(&rec.ID, &rec.TenantID, &rec.ObjectKey, &rec.Rows,
		&rec.WindowStart, &rec.WindowEnd, &rec.CreatedBy, &rec.CreatedAt)
	return rec, err
}

var _ ArchiveStore = (*Repository)(nil)
