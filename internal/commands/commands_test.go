package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agendacal/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildPlanner(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	now := time.Date(2025, time.March, 9, 15, 30, 0, 0, time.UTC)

	p, err := buildPlanner(cfg, now, plannerOptions{})
	require.NoError(t, err)

	days := p.Days()
	require.Len(t, days, 2)
	assert.Equal(t, "Sunday", days[0].Name())
	assert.Equal(t, time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), days[0].Day())
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), days[1].Day())

	for _, d := range days {
		assert.Len(t, d.Events(), 3)
		assert.Equal(t, 9, d.Summary()["Sleep"])
		assert.Equal(t, 10, d.Summary()["Work"])
		assert.Equal(t, 5, d.Free())
	}
}

func TestBuildPlannerRejectsDuplicateDays(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Days = []string{"Monday", "monday"}
	_, err := buildPlanner(cfg, time.Now(), plannerOptions{})
	assert.Error(t, err)
}

func TestNoFeedsNoRefresher(t *testing.T) {
	cfg := config.DefaultConfig()
	p, err := buildPlanner(cfg, time.Now(), plannerOptions{})
	require.NoError(t, err)

	r, err := newRefresher(cfg, p, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestFreeCommand(t *testing.T) {
	path := writeConfig(t, "timezone: UTC\n")

	out, err := run(t, "free", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Sunday")
	assert.Contains(t, out, "Monday")
	assert.Regexp(t, `Sleep\s+9`, out)
	assert.Regexp(t, `Work\s+10`, out)
	assert.Regexp(t, `Free\s+5`, out)
}

func TestFreeCommandSingleDay(t *testing.T) {
	path := writeConfig(t, "timezone: UTC\nevents: []\n")

	out, err := run(t, "free", "--config", path, "--day", "monday")
	require.NoError(t, err)
	assert.NotContains(t, out, "Sunday")
	assert.Regexp(t, `Free\s+24`, out)

	_, err = run(t, "free", "--config", path, "--day", "friday")
	assert.ErrorContains(t, err, "unknown day")
}

func TestLayoutCommand(t *testing.T) {
	path := writeConfig(t, "timezone: UTC\nlayout:\n  row_height: 48\n")

	out, err := run(t, "layout", "--config", path, "--day", "Sunday", "--feeds=false")
	require.NoError(t, err)
	assert.Contains(t, out, "rows of 48px")
	assert.Regexp(t, `Work\s+07:00\s+17:00\s+336\s+480`, out)
	assert.Contains(t, out, "21:00 (-1d)")
	assert.Contains(t, out, "06:00 (+1d)")
}

func TestConfigFromEnvironment(t *testing.T) {
	path := writeConfig(t, "timezone: UTC\nevents: []\ndays: [Holiday]\n")
	t.Setenv("AGENDACAL_CONFIG", path)

	out, err := run(t, "free")
	require.NoError(t, err)
	assert.Contains(t, out, "Holiday")
}

func TestInvalidConfig(t *testing.T) {
	path := writeConfig(t, "timezone: Mars/Olympus\n")
	_, err := run(t, "free", "--config", path)
	assert.ErrorContains(t, err, "timezone")

	path = writeConfig(t, "timezone: UTC\n")
	_, err = run(t, "free", "--config", path, "--timezone", "Nowhere/Else")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dev")
}
