package repository

import (
	"context"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadPageReader pages through a tenant's lead rows.
type LeadPageReader interface {
	ListLeadsPage(ctx context.Context, params PageParams) ([]LeadRow, error)
}

// ConversationSummaryReader looks up conversation summary rows by lead.
type ConversationSummaryReader interface {
	ListConversationSummaries(ctx context.Context, table string, tenantID uuid.UUID, leadIDs []uuid.UUID) ([]ConversationSummaryRow, error)
}

// FinanceSheetReader pages through a tenant's collections spreadsheet rows.
type FinanceSheetReader interface {
	ListFinanceSheetPage(ctx context.Context, params PageParams) ([]FinanceSheetRow, error)
}

// TenantReader resolves tenants.
type TenantReader interface {
	GetTenant(ctx context.Context, id uuid.UUID) (Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (Tenant, error)
}

// TenantLister enumerates all tenants for background refreshes.
type TenantLister interface {
	ListTenants(ctx context.Context) ([]Tenant, error)
}

// LeadsRepository is the full repository interface.
type LeadsRepository interface {
	LeadPageReader
	ConversationSummaryReader
	FinanceSheetReader
	TenantReader
	TenantLister
}

var _ LeadsRepository = (*Repository)(nil)
