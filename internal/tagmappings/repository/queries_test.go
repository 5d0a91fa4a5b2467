package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListActiveQueryIsTenantScoped(t *testing.T) {
	assert.Contains(t, listActiveQuery, "tenant_id = $1")
	assert.Contains(t, listActiveQuery, "active = true")
	assert.True(t, strings.Contains(listActiveQuery, "ORDER BY display_order"))
}

func TestUpsertQueryReactivatesRows(t *testing.T) {
	assert.Contains(t, upsertQuery, "ON CONFLICT (tenant_id, external_tag)")
	assert.Contains(t, upsertQuery, "active = true")
	assert.Contains(t, deactivateQuery, "WHERE tenant_id = $1")
}
