package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
)

// Alerts is the alerts configuration tree.
type Alerts struct {
	// Stages restricts compilation to the listed stages when non-empty.
	Stages []string `yaml:"stages" validate:"dive,required"`
	// NameTemplate is the default AlarmName template of every alarm.
	NameTemplate string `yaml:"nameTemplate"`
	// PrefixTemplate is the default AlarmName prefix template.
	PrefixTemplate string `yaml:"prefixTemplate"`
	// Topics maps severities or topic groups to notification topics.
	Topics map[string]any `yaml:"topics"`
	// Definitions overrides or extends the built-in definitions.
	Definitions map[string]map[string]any `yaml:"definitions"`
	// Global alarms apply to every function that does not opt out.
	Global []alarm.Ref `yaml:"global" validate:"dive"`
	// Function alarms apply to every function.
	Function []alarm.Ref `yaml:"function" validate:"dive"`
	// Stack alarms are compiled once, outside any function.
	Stack []alarm.Ref `yaml:"stack" validate:"dive"`
	// Composite lists the composite alarms to compile.
	Composite []alarm.Ref `yaml:"composite" validate:"dive"`
}

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

const (
	// DefaultConfigFilename is the default alerts configuration file.
	DefaultConfigFilename = "alerts.yaml"

	// DefaultFilePermissions is the default permission of written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnsupportedFormat is returned for unknown file extensions.
	errUnsupportedFormat = errors.New("unsupported configuration format")

	//nolint:gochecknoglobals // Validator instances are meant to be reused.
	validate = newValidator()
)

// Load reads the alerts configuration from path, picking the decoder from the
// file extension.
func Load(path string) (*Alerts, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read alerts config: %w", err)
	}

	return Parse(contents, format)
}

// Parse decodes and validates an alerts configuration document.
func Parse(contents []byte, format Format) (*Alerts, error) {
	var cfg Alerts

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(contents, &cfg); err != nil {
			return nil, fmt.Errorf("unmarshal alerts config: %w", err)
		}
	case FormatTOML:
		var raw map[string]any
		if err := toml.Unmarshal(contents, &raw); err != nil {
			return nil, fmt.Errorf("unmarshal alerts config: %w", err)
		}

		if err := FromMap(raw, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromMap decodes an already-parsed document into cfg.
func FromMap(raw map[string]any, cfg *Alerts) error {
	contents, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("normalize alerts config: %w", err)
	}

	if err = yaml.Unmarshal(contents, cfg); err != nil {
		return fmt.Errorf("unmarshal alerts config: %w", err)
	}

	return nil
}

// FormatOf maps a file extension to a Format.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedFormat, path)
	}
}

// Validate checks the configuration for structural mistakes.
func Validate(cfg *Alerts) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid alerts config: %w", err)
	}

	return nil
}

// StageAllowed reports whether stage may be compiled. An empty allow-list
// admits every stage.
func (a *Alerts) StageAllowed(stage string) bool {
	return len(a.Stages) == 0 || slices.Contains(a.Stages, stage)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateRef, alarm.Ref{})

	return v
}

// validateRef rejects empty references: a blank name or an empty object.
func validateRef(sl validator.StructLevel) {
	ref, ok := sl.Current().Interface().(alarm.Ref)
	if !ok {
		return
	}

	if ref.Name == "" && len(ref.Inline) == 0 {
		sl.ReportError(ref.Name, "Name", "name", "alarmref", "")
	}
}
