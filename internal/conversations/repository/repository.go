// Package repository reads stored conversation transcripts.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MaxRows caps a single listing.
const MaxRows = 50000

// Range selects a tenant's conversations created in [Start, EndExclusive).
type Range struct {
	TenantID     uuid.UUID
	Start        time.Time
	EndExclusive time.Time
}

// Row is a raw tenant_conversations row.
type Row struct {
	ID        int64
	LeadName  *string
	Nome      *string
	Phone     *string
	Tag       *string
	Messages  []byte
	CSAT      *string
	Analyst   *string
	StartedAt *time.Time
	EndedAt   *time.Time
	CreatedAt time.Time
}

// Reader is the read side the service depends on.
type Reader interface {
	List(ctx context.Context, r Range, limit int) ([]Row, error)
	Count(ctx context.Context, r Range) (int, error)
	CountQualified(ctx context.Context, r Range) (int, error)
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listQuery = `
	SELECT id, lead_name, nome, phone, tag, messages, csat, analista,
		started_at, ended_at, created_at
	FROM tenant_conversations
	WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
	ORDER BY created_at DESC
	LIMIT $4`

func (r *Repository) List(ctx context.Context, rg Range, limit int) ([]Row, error) {
	if limit <= 0 || limit > MaxRows {
		limit = MaxRows
	}
	rows, err := r.pool.Query(ctx, listQuery, rg.TenantID, rg.Start, rg.EndExclusive, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	items := make([]Row, 0)
	for rows.Next() {
		var item Row
		if err := rows.Scan(
			&item.ID, &item.LeadName, &item.Nome, &item.Phone, &item.Tag, &item.Messages,
			&item.CSAT, &item.Analyst, &item.StartedAt, &item.EndedAt, &item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversations: %w", err)
	}
	return items, nil
}

const countQuery = `
	SELECT COUNT(*)
	FROM tenant_conversations
	WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3`

func (r *Repository) Count(ctx context.Context, rg Range) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countQuery, rg.TenantID, rg.Start, rg.EndExclusive).Scan(&n); err != nil {
		return 0, fmt.Errorf("count conversations: %w", err)
	}
	return n, nil
}

// T4 means "transferred" for the collections tenant and is not counted.
const countQualifiedQuery = `
	SELECT COUNT(*)
	FROM tenant_conversations
	WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
		AND (tag ILIKE '%T3%' OR tag ILIKE '%pago%')`

func (r *Repository) CountQualified(ctx context.Context, rg Range) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countQualifiedQuery, rg.TenantID, rg.Start, rg.EndExclusive).Scan(&n); err != nil {
		return 0, fmt.Errorf("count qualified conversations: %w", err)
	}
	return n, nil
}

var _ Reader = (*Repository)(nil)
