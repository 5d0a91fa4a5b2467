package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	key := ObjectKey("tenant/2025-03", "leads.csv")

	assert.True(t, strings.HasPrefix(key, "tenant/2025-03/leads_"))
	assert.True(t, strings.HasSuffix(key, ".csv"))
	assert.NotEqual(t, key, ObjectKey("tenant/2025-03", "leads.csv"))
}

func TestValidateContentType(t *testing.T) {
	assert.NoError(t, ValidateContentType("text/csv; charset=utf-8"))
	assert.NoError(t, ValidateContentType("Application/JSON"))
	assert.Error(t, ValidateContentType("image/png"))
}
