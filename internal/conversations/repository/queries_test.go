package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueriesAreTenantAndWindowScoped(t *testing.T) {
	for name, q := range map[string]string{
		"list":      listQuery,
		"count":     countQuery,
		"qualified": countQualifiedQuery,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, q, "tenant_id = $1")
			assert.Contains(t, q, "created_at >= $2 AND created_at < $3")
		})
	}
}

func TestListQueryOrdersNewestFirst(t *testing.T) {
	assert.Contains(t, listQuery, "ORDER BY created_at DESC")
	assert.Contains(t, listQuery, "LIMIT $4")
}

func TestQualifiedCountExcludesTransferred(t *testing.T) {
	assert.Contains(t, countQualifiedQuery, "'%T3%'")
	assert.Contains(t, countQualifiedQuery, "'%pago%'")
	assert.NotContains(t, countQualifiedQuery, "T4")
}
