package config

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/salconv/internal/solver"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. SALCONV_SERVER_ADDRESS
const EnvPrefix = "SALCONV"

// Settings holds all application settings for salconv
type Settings struct {
	Server    ServerConfig  `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Solver    SolverConfig  `mapstructure:"solver" yaml:"solver"`
	Schedules SchedulePaths `mapstructure:"schedules" yaml:"schedules"`
	Output    OutputConfig  `mapstructure:"output" yaml:"output"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Address     string   `mapstructure:"address" yaml:"address"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`             // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`           // json, console
	OutputFile string `mapstructure:"output_file" yaml:"output_file,omitempty"` // optional file output
}

// SolverConfig mirrors solver.Options
type SolverConfig struct {
	Tolerance     float64 `mapstructure:"tolerance" yaml:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	Step          float64 `mapstructure:"step" yaml:"step"`
}

// SchedulePaths points at schedule data; all empty selects the built-in tables
type SchedulePaths struct {
	File              string `mapstructure:"file" yaml:"file,omitempty"`
	ContributionTable string `mapstructure:"contribution_table" yaml:"contribution_table,omitempty"`
	TaxTable          string `mapstructure:"tax_table" yaml:"tax_table,omitempty"`
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // console, json, csv, yaml
}

// DefaultSettings returns the settings used when nothing is configured
func DefaultSettings() Settings {
	opts := solver.DefaultOptions()
	return Settings{
		Server: ServerConfig{
			Address:     ":8080",
			CORSOrigins: []string{"*"},
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Solver: SolverConfig{
			Tolerance:     opts.Tolerance,
			MaxIterations: opts.MaxIterations,
			Step:          opts.Step,
		},
		Output: OutputConfig{Format: "console"},
	}
}

// LoadSettings reads settings from an optional YAML file and SALCONV_* environment
// variables, on top of DefaultSettings.
func LoadSettings(configPath string) (*Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file, %s", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return &settings, nil
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output_file", d.Logging.OutputFile)
	v.SetDefault("solver.tolerance", d.Solver.Tolerance)
	v.SetDefault("solver.max_iterations", d.Solver.MaxIterations)
	v.SetDefault("solver.step", d.Solver.Step)
	v.SetDefault("schedules.file", d.Schedules.File)
	v.SetDefault("schedules.contribution_table", d.Schedules.ContributionTable)
	v.SetDefault("schedules.tax_table", d.Schedules.TaxTable)
	v.SetDefault("output.format", d.Output.Format)
}

// Validate checks the loaded settings
func (s *Settings) Validate() error {
	if s.Solver.Tolerance <= 0 {
		return fmt.Errorf("solver tolerance must be positive")
	}
	if s.Solver.MaxIterations <= 0 {
		return fmt.Errorf("solver max_iterations must be positive")
	}
	if s.Solver.Step == 0 {
		return fmt.Errorf("solver step cannot be zero")
	}
	switch s.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", s.Logging.Format)
	}
	if (s.Schedules.ContributionTable == "") != (s.Schedules.TaxTable == "") {
		return fmt.Errorf("schedules: contribution_table and tax_table must be set together")
	}
	return nil
}

// SolverOptions converts the solver settings
func (s *Settings) SolverOptions() solver.Options {
	return solver.Options{
		Tolerance:     s.Solver.Tolerance,
		MaxIterations: s.Solver.MaxIterations,
		Step:          s.Solver.Step,
	}
}
