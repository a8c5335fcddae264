package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	return dir
}

func TestLoadConfigEngineDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: debug
database:
  host: localhost
  port: 3306
  user: root
  dbname: kursus
jwt:
  secret: short-dev-secret
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	// 引擎参数未配置时使用默认值
	assert.Equal(t, 200, cfg.Engine.XPPerLevel)
	assert.Equal(t, 0.7, cfg.Engine.MasteryHistoryWeight)
	assert.Equal(t, 0.3, cfg.Engine.MasterySessionWeight)
	assert.Equal(t, 3, cfg.Engine.WeakAreaResolveRun)
	assert.Equal(t, 50, cfg.Engine.LowScoreAlertThreshold)
}

func TestLoadConfigEngineOverride(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: debug
jwt:
  secret: short-dev-secret
engine:
  xp_per_level: 500
  mastery_history_weight: 0.8
  mastery_session_weight: 0.2
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Engine.XPPerLevel)
	assert.Equal(t, 0.8, cfg.Engine.MasteryHistoryWeight)
}

func TestLoadConfigRejectsBadMasteryWeights(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: debug
jwt:
  secret: short-dev-secret
engine:
  mastery_history_weight: 0.9
  mastery_session_weight: 0.3
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}

func TestLoadConfigReleaseModeRequiresStrongSecret(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: release
jwt:
  secret: short
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
