package compile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/oshokin/alarm-compiler/internal/cfn"
	"github.com/oshokin/alarm-compiler/internal/compiler"
	"github.com/oshokin/alarm-compiler/internal/config"
	"github.com/oshokin/alarm-compiler/internal/logger"
	"github.com/oshokin/alarm-compiler/internal/metrics"
	"github.com/oshokin/alarm-compiler/internal/repository/project"
	"github.com/oshokin/alarm-compiler/internal/repository/template"
)

// StdoutPath selects standard output as the output destination.
const StdoutPath = "-"

// Options controls one alarm-compiler invocation.
type Options struct {
	// ProjectPath is the service manifest (defaults to serverless.yml).
	ProjectPath string
	// ConfigPath is an optional alerts file that replaces custom.alerts.
	ConfigPath string
	// Stage overrides the manifest stage.
	Stage string
	// OutputPath is the output file; empty or "-" writes to Stdout.
	OutputPath string
	// Format is json or yaml; empty picks it from OutputPath.
	Format string
	// TemplatePath is an existing template the resources are merged into.
	TemplatePath string
	// Watch keeps recompiling on input changes until ctx is canceled.
	Watch bool
	// MetricsFile receives compile statistics in the Prometheus text format.
	MetricsFile string
	// Stdout replaces os.Stdout, mostly for tests.
	Stdout io.Writer
}

// errOptionsNotSet is returned when Run is called without options.
var errOptionsNotSet = errors.New("options are not set")

// service compiles with fixed options; callers use Run.
type service struct {
	// opts are the invocation options.
	opts *Options
	// format is the resolved output format.
	format template.Format
	// stdout receives the output when no file is set.
	stdout io.Writer
	// collector records compile statistics.
	collector *metrics.Collector
}

// Run compiles once, or keeps compiling on changes when opts.Watch is set.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-compiler")

	svc, err := newService(opts)
	if err != nil {
		return err
	}

	if err = svc.compileOnce(ctx); err != nil {
		if !opts.Watch {
			return err
		}

		logger.ErrorKV(ctx, "Compilation failed, waiting for changes", "error", err)
	}

	if !opts.Watch {
		return nil
	}

	paths := []string{svc.projectPath()}
	if opts.ConfigPath != "" {
		paths = append(paths, opts.ConfigPath)
	}

	return config.Watch(ctx, paths, func(path string) {
		logger.InfoKV(ctx, "Input changed, recompiling", "path", path)

		if compileErr := svc.compileOnce(ctx); compileErr != nil {
			logger.ErrorKV(ctx, "Compilation failed", "error", compileErr)
		}
	})
}

func newService(opts *Options) (*service, error) {
	if opts == nil {
		return nil, errOptionsNotSet
	}

	formatName := opts.Format
	if formatName == "" && opts.OutputPath != "" && opts.OutputPath != StdoutPath {
		formatName = string(template.FormatOf(opts.OutputPath))
	}

	format, err := template.ParseFormat(formatName)
	if err != nil {
		return nil, err
	}

	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	return &service{
		opts:      opts,
		format:    format,
		stdout:    stdout,
		collector: metrics.New(),
	}, nil
}

func (s *service) projectPath() string {
	if s.opts.ProjectPath == "" {
		return project.DefaultManifestFilename
	}

	return s.opts.ProjectPath
}

// compileOnce runs one full compilation and records its statistics.
func (s *service) compileOnce(ctx context.Context) error {
	started := time.Now()

	resources, err := s.compile(ctx)
	if err != nil {
		s.collector.ObserveFailure(time.Since(started))
	} else {
		s.collector.ObserveSuccess(resources, time.Since(started))
	}

	if s.opts.MetricsFile != "" {
		if writeErr := s.collector.WriteFile(s.opts.MetricsFile); writeErr != nil {
			logger.WarnKV(ctx, "Metrics file was not written", "error", writeErr)
		}
	}

	return err
}

func (s *service) compile(ctx context.Context) (cfn.Resources, error) {
	proj, err := project.NewFileRepository(s.projectPath(), s.opts.Stage).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	alerts := proj.Alerts()
	if s.opts.ConfigPath != "" {
		if alerts, err = config.Load(s.opts.ConfigPath); err != nil {
			return nil, fmt.Errorf("load alerts config: %w", err)
		}
	}

	resources, err := compiler.New(proj, alerts).Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("compile alerts: %w", err)
	}

	doc, err := s.loadTemplate(ctx)
	if err != nil {
		return nil, err
	}

	if err = doc.Merge(resources); err != nil {
		return nil, fmt.Errorf("merge resources: %w", err)
	}

	if err = s.write(ctx, doc); err != nil {
		return nil, err
	}

	counts := resources.CountByType()
	logger.InfoKV(ctx, "Alerts compiled",
		"stack", proj.StackName(),
		"alarms", counts[cfn.TypeAlarm],
		"composites", counts[cfn.TypeCompositeAlarm],
		"topics", counts[cfn.TypeTopic],
		"metric_filters", counts[cfn.TypeMetricFilter])

	return resources, nil
}

// loadTemplate returns the template to merge into, or an empty one.
func (s *service) loadTemplate(ctx context.Context) (template.Document, error) {
	if s.opts.TemplatePath == "" {
		return template.NewDocument(), nil
	}

	repo := template.NewFileRepository(s.opts.TemplatePath, template.FormatOf(s.opts.TemplatePath))

	doc, err := repo.Load(ctx)
	if errors.Is(err, template.ErrNotFound) {
		logger.WarnKV(ctx, "Template not found, starting from an empty one", "path", s.opts.TemplatePath)

		return template.NewDocument(), nil
	}

	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	return doc, nil
}

func (s *service) write(ctx context.Context, doc template.Document) error {
	if s.opts.OutputPath == "" || s.opts.OutputPath == StdoutPath {
		contents, err := template.Encode(doc, s.format)
		if err != nil {
			return err
		}

		if _, err = s.stdout.Write(contents); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		return nil
	}

	if err := template.NewFileRepository(s.opts.OutputPath, s.format).Save(ctx, doc); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Template written", "path", s.opts.OutputPath, "format", string(s.format))

	return nil
}
