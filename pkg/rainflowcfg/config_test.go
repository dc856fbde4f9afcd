package rainflowcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ja7ad/rainflow/pkg/class"
	"github.com/ja7ad/rainflow/pkg/rainflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	cfg := rainflow.Config{
		Class:      class.Params{Offset: -10, Width: 2, Count: 32},
		Hysteresis: 2,
		Wohler:     rainflow.WohlerCurve{SD: 100, ND: 1e6, K: -5, Omega: 1},
		Flags:      rainflow.FlagCountAll | rainflow.FlagEnforceMargin,
		Method:     rainflow.MethodHCM,
		Spread:     rainflow.SpreadRampAmplitude23,
		FullInc:    2,
		HalfInc:    1,
		EnableDamageHistory: true,
		EnableTPStore:       true,
		TPCapHint:           128,
	}

	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, Save(path, cfg, rainflow.ResidualClormannSeeger))

	got, residual, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
	assert.Equal(t, rainflow.ResidualClormannSeeger, residual)
}

func TestLoad_UnknownMethodErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("method: bogus\n"), 0o644))

	_, _, err := Load(path)
	assert.Error(t, err)
}
