package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nathoo/bravecore/engine/combat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bravecore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "content", cfg.ContentDir)
	assert.Equal(t, combat.DefaultPolicy(), cfg.Policy())
	assert.Equal(t, 1000, cfg.TurnOptions().Threshold)
	assert.True(t, cfg.TurnOptions().CarryOver)
	assert.Equal(t, 4, cfg.Sim.Workers)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesOnlyWhatIsSet(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
combat:
  crit_multiplier: 2.0
  brave_reset: zero
  break_bonus: 50
turn:
  threshold: 500
sim:
  workers: 8
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "content", cfg.ContentDir, "unset keys keep defaults")

	p := cfg.Policy()
	assert.Equal(t, 2.0, p.CritMultiplier)
	assert.Equal(t, combat.ResetZero, p.BraveReset)
	assert.Equal(t, 50, p.BreakBonus)
	assert.Equal(t, 1, p.MinDamage)
	assert.True(t, p.MissConsumesCost)

	assert.Equal(t, 500, cfg.TurnOptions().Threshold)
	assert.True(t, cfg.TurnOptions().CarryOver)
	assert.Equal(t, 8, cfg.Sim.Workers)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"threshold", "turn:\n  threshold: 0\n", "threshold 0 must be positive"},
		{"crit", "combat:\n  crit_multiplier: 0.5\n", "crit multiplier"},
		{"reset", "combat:\n  brave_reset: half\n", `unknown brave reset "half"`},
		{"workers", "sim:\n  workers: 0\n", "workers 0 must be positive"},
		{"yaml", "combat: [\n", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Turn.Threshold = -1
	cfg.Sim.MaxTurns = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold")
	assert.Contains(t, err.Error(), "max_turns")
}

func TestPath(t *testing.T) {
	t.Setenv(EnvPath, "")
	assert.Equal(t, DefaultPath, Path(""))

	t.Setenv(EnvPath, "/etc/bravecore.yaml")
	assert.Equal(t, "/etc/bravecore.yaml", Path(""))
	assert.Equal(t, "mine.yaml", Path("mine.yaml"), "flag wins over env")
}

func TestSaves(t *testing.T) {
	cfg := Default()
	cfg.SaveDir = "/tmp/saves"
	dir, err := cfg.Saves()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/saves", dir)

	t.Setenv("HOME", "/home/tester")
	cfg.SaveDir = ""
	dir, err = cfg.Saves()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".bravecore", "saves"), dir)
}
