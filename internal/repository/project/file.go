package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/alarm-compiler/internal/config"
	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
	"github.com/oshokin/alarm-compiler/internal/logger"
)

// DefaultManifestFilename is the default service manifest.
const DefaultManifestFilename = "serverless.yml"

// ErrNotFound is returned when the manifest does not exist.
var ErrNotFound = errors.New("manifest not found")

//nolint:gochecknoglobals // Validator instances are meant to be reused.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Repository loads projects.
type Repository interface {
	Load(ctx context.Context) (*Project, error)
}

// FileRepository reads the service manifest from disk.
type FileRepository struct {
	// path is the filesystem location of the manifest.
	path string
	// stage overrides the manifest stage when set.
	stage string
	// mu serializes reads of the manifest.
	mu sync.Mutex
}

// NewFileRepository creates a repository reading the manifest at path. A
// non-empty stage overrides provider.stage.
func NewFileRepository(path, stage string) *FileRepository {
	if path == "" {
		path = DefaultManifestFilename
	}

	return &FileRepository{
		path:  filepath.Clean(path),
		stage: stage,
	}
}

// Path returns the manifest location.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and decodes the manifest.
func (r *FileRepository) Load(ctx context.Context) (*Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}

		return nil, fmt.Errorf("read manifest: %w", err)
	}

	project, err := Parse(contents, r.stage)
	if err != nil {
		return nil, err
	}

	logger.DebugKV(ctx, "Loaded service manifest",
		"path", r.path,
		"service", project.service,
		"stage", project.stage,
		"functions", len(project.order))

	return project, nil
}

// Parse decodes a manifest document. A non-empty stage overrides the
// manifest stage.
func Parse(contents []byte, stage string) (*Project, error) {
	var m manifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}

	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	if stage == "" {
		stage = m.Provider.Stage
	}

	if stage == "" {
		stage = DefaultStage
	}

	project := &Project{
		service:   string(m.Service),
		stage:     stage,
		functions: make(map[string]*alarm.FunctionDescriptor),
	}

	if err := project.decodeFunctions(&m.Functions); err != nil {
		return nil, err
	}

	if m.Custom.Alerts.Kind != 0 {
		var alerts config.Alerts
		if err := m.Custom.Alerts.Decode(&alerts); err != nil {
			return nil, fmt.Errorf("unmarshal custom.alerts: %w", err)
		}

		if err := config.Validate(&alerts); err != nil {
			return nil, err
		}

		project.alerts = &alerts
	}

	return project, nil
}

// decodeFunctions walks the functions mapping in document order.
func (p *Project) decodeFunctions(node *yaml.Node) error {
	if node.Kind == 0 {
		return nil
	}

	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("functions must be a mapping, got node kind %d", node.Kind)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value

		var spec functionSpec
		if err := node.Content[i+1].Decode(&spec); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}

		if err := validate.Struct(&spec); err != nil {
			return fmt.Errorf("function %s: %w", name, err)
		}

		if _, dup := p.functions[name]; dup {
			return fmt.Errorf("function %s is declared twice", name)
		}

		p.order = append(p.order, name)
		p.functions[name] = spec.descriptor(name, p.service, p.stage)
	}

	return nil
}
