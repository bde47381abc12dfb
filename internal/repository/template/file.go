package template

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/alarm-compiler/internal/config"
)

// ErrNotFound is returned when the template file does not exist yet.
var ErrNotFound = errors.New("template not found")

// Repository defines persistence operations for template documents.
type Repository interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}

// FileRepository persists a template document to a file on disk.
type FileRepository struct {
	// path is the filesystem location of the template.
	path string
	// format is the encoding used to read and write the file.
	format Format
	// mu protects concurrent access to the template file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes path in format.
func NewFileRepository(path string, format Format) *FileRepository {
	return &FileRepository{
		path:   filepath.Clean(path),
		format: format,
	}
}

// Load reads the template from disk.
func (r *FileRepository) Load(_ context.Context) (Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read template file: %w", err)
	}

	return Decode(contents, r.format)
}

// Save writes the template to disk.
func (r *FileRepository) Save(_ context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := Encode(doc, r.format)
	if err != nil {
		return err
	}

	if err = os.WriteFile(r.path, contents, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write template file: %w", err)
	}

	return nil
}
