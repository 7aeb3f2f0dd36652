package cmd

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/api"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/config"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/di"
)

type recordingStarter struct {
	deps   api.Dependencies
	config api.ServerConfig
}

func (s *recordingStarter) StartServer(_ context.Context, deps api.Dependencies, config api.ServerConfig) error {
	s.deps = deps
	s.config = config
	return nil
}

type recordingFactory struct{ starter *recordingStarter }

func (f recordingFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func withStarter(t *testing.T) *recordingStarter {
	t.Helper()
	starter := &recordingStarter{}
	c := di.NewContainer()
	c.SetServerFactory(recordingFactory{starter: starter})
	SetContainer(c)
	t.Cleanup(func() { SetContainer(di.NewContainer()) })
	return starter
}

func TestServeCommand(t *testing.T) {
	starter := withStarter(t)

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Server.APIKey = "from-config"
	cfg.SiteNumber = 3
	require.NoError(t, config.SaveConfig(cfg, configPath))

	res := execute(t, "", "--config", configPath, "serve", "--port", "9300", "--bind", "0.0.0.0")
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, "0.0.0.0", starter.config.Bind)
	assert.Equal(t, 9300, starter.config.Port)
	assert.Equal(t, "from-config", starter.config.APIKey)
	assert.Equal(t, int64(32<<20), starter.config.MaxUploadBytes)
	assert.Equal(t, uint8(3), starter.config.Run.SiteNumber)
	assert.NotNil(t, starter.deps.Converter)
	assert.NotNil(t, starter.deps.Metrics)
	assert.Nil(t, starter.deps.History, "history is disabled without a directory")
}

func TestServeCommand_FlagsOverrideConfig(t *testing.T) {
	starter := withStarter(t)
	dir := t.TempDir()
	meta := writeFile(t, dir, "meta.yaml", "mir_overrides:\n  NODE_NAM: web\n")

	res := execute(t, "", "--history-dir", filepath.Join(dir, "history"),
		"serve", "--api-key", "flag-key", "--max-upload-bytes", "1024", "--meta", meta)
	require.NoError(t, res.err, res.stderr)

	assert.Equal(t, "flag-key", starter.config.APIKey)
	assert.Equal(t, int64(1024), starter.config.MaxUploadBytes)
	assert.Equal(t, "web", starter.config.Run.MIROverrides["NODE_NAM"])
	assert.NotNil(t, starter.deps.History)
}

func TestServeCommand_RejectsArgs(t *testing.T) {
	withStarter(t)
	res := execute(t, "", "serve", "extra")
	assert.Error(t, res.err)
}
