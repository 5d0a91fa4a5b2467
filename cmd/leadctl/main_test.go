package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("STAGE_RULES_FILE", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassify(t *testing.T) {
	out, err := run(t, "classify", "T3", "desqualificado", "sem tag conhecida")
	require.NoError(t, err)
	assert.Equal(t, "T3\tqualified\ndesqualificado\tdiscarded\nsem tag conhecida\tnew_lead\n", out)
}

func TestClassifyWithTenantRules(t *testing.T) {
	out, err := run(t, "classify", "--tenant", "sieg", "pago via pix")
	require.NoError(t, err)
	assert.Equal(t, "pago via pix\tqualified\n", out)
}

func TestClassifyRequiresTag(t *testing.T) {
	_, err := run(t, "classify")
	require.Error(t, err)
}

func TestLabelsFollowFunnelOrder(t *testing.T) {
	out, err := run(t, "labels", "--tenant", "asf")
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 5)
	assert.Equal(t, "new_lead\tT1 - Novo Lead\tLeads recém captados pelo funil", string(lines[0]))
	assert.Equal(t, "discarded\tT5 - Desqualificados\tLeads desqualificados ou perdidos", string(lines[4]))
}

func TestParseAmount(t *testing.T) {
	out, err := run(t, "parse-amount", "R$ 1.234,56", "1.234.567", "1.234.56")
	require.NoError(t, err)
	assert.Equal(t, "R$ 1.234,56\t1234.56\n1.234.567\t1234567.00\n1.234.56\t0.00\n", out)
}

func TestRulesFileExtendsCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  fechado: qualified\n"), 0o600))

	out, err := run(t, "--rules", path, "classify", "fechado")
	require.NoError(t, err)
	assert.Equal(t, "fechado\tqualified\n", out)
}

func TestSummaryRejectsBadWindowBeforeConnecting(t *testing.T) {
	_, err := run(t, "summary", "--tenant-id", "6f1c1d2e-8a4b-4a57-9d43-0c7f0d3f6b11", "--start", "2025-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--start and --end")
}

func TestSummaryRejectsBadTenantID(t *testing.T) {
	_, err := run(t, "summary", "--tenant-id", "nope")
	require.Error(t, err)
}
