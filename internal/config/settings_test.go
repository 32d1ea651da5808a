package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/salconv/internal/solver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadSettings_Defaults(t *testing.T) {
	settings, err := LoadSettings("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", settings.Server.Address)
	assert.Equal(t, []string{"*"}, settings.Server.CORSOrigins)
	assert.Equal(t, "info", settings.Logging.Level)
	assert.Equal(t, "console", settings.Output.Format)
	assert.Equal(t, solver.DefaultOptions(), settings.SolverOptions())
	assert.Equal(t, SchedulePaths{}, settings.Schedules)
}

func TestLoadSettings_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "salconv.yaml")
	content := `
server:
  address: ":7000"
logging:
  level: debug
  format: json
solver:
  max_iterations: 50
schedules:
  file: /etc/salconv/schedules.yaml
output:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("SALCONV_SERVER_ADDRESS", ":9090")

	settings, err := LoadSettings(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", settings.Server.Address, "environment wins over file")
	assert.Equal(t, "debug", settings.Logging.Level)
	assert.Equal(t, "json", settings.Logging.Format)
	assert.Equal(t, 50, settings.Solver.MaxIterations)
	assert.Equal(t, 1e-9, settings.Solver.Tolerance)
	assert.Equal(t, "/etc/salconv/schedules.yaml", settings.Schedules.File)
	assert.Equal(t, "json", settings.Output.Format)
}

func TestLoadSettings_Errors(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  format: xml\n"), 0644))
	_, err = LoadSettings(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
	}{
		{"zero tolerance", func(s *Settings) { s.Solver.Tolerance = 0 }},
		{"zero iterations", func(s *Settings) { s.Solver.MaxIterations = 0 }},
		{"zero step", func(s *Settings) { s.Solver.Step = 0 }},
		{"half a table pair", func(s *Settings) { s.Schedules.TaxTable = "irpf.txt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			assert.Error(t, s.Validate())
		})
	}

	s := DefaultSettings()
	assert.NoError(t, s.Validate())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LoggingConfig{Level: "warn", Format: "console"}, "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel), "debug disabled at warn")

	logger, err = NewLogger(LoggingConfig{Level: "warn"}, "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel), "override wins")

	_, err = NewLogger(LoggingConfig{Level: "loud"}, "")
	assert.Error(t, err)

	_, err = NewLogger(LoggingConfig{Format: "xml"}, "")
	assert.Error(t, err)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "salconv.log")
	logger, err := NewLogger(LoggingConfig{Level: "info", Format: "json", OutputFile: path}, "")
	require.NoError(t, err)

	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}
