package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/alarm-compiler/internal/domain/alarm"
)

const yamlConfig = `
stages: [production]
nameTemplate: $[functionName]-$[metricName]
topics:
  ok: ok-topic
  alarm: arn:aws:sns:eu-west-1:123456789012:alarm
definitions:
  functionErrors:
    threshold: 1
function:
  - functionInvocations
  - name: functionErrors
    enabled: false
composite:
  - errorsEverywhere
`

const tomlConfig = `
stages = ["production"]
function = ["functionInvocations", { name = "functionErrors", enabled = false }]

[topics]
ok = "ok-topic"

[definitions.functionErrors]
threshold = 1
`

// TestParseYAML verifies YAML documents decode into the typed tree.
func TestParseYAML(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(yamlConfig), FormatYAML)
	require.NoError(t, err)

	require.Equal(t, []string{"production"}, cfg.Stages)
	require.Equal(t, "$[functionName]-$[metricName]", cfg.NameTemplate)
	require.Equal(t, "ok-topic", cfg.Topics["ok"])
	require.Equal(t, 1, cfg.Definitions["functionErrors"]["threshold"])
	require.Equal(t, []alarm.Ref{
		alarm.NamedRef("functionInvocations"),
		{Name: "functionErrors", Inline: map[string]any{"name": "functionErrors", "enabled": false}},
	}, cfg.Function)
	require.Equal(t, "errorsEverywhere", cfg.Composite[0].Name)
}

// TestParseTOML ensures TOML documents are normalized to the same shape.
func TestParseTOML(t *testing.T) {
	t.Parallel()

	cfg, err := Parse([]byte(tomlConfig), FormatTOML)
	require.NoError(t, err)

	require.Equal(t, "ok-topic", cfg.Topics["ok"])
	require.Equal(t, 1, cfg.Definitions["functionErrors"]["threshold"])
	require.Len(t, cfg.Function, 2)
	require.Equal(t, "functionErrors", cfg.Function[1].Name)
	require.Equal(t, false, cfg.Function[1].Inline["enabled"])
}

// TestValidate checks structural validation of the tree.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := &Alerts{Stages: []string{""}}
	require.Error(t, Validate(cfg))

	cfg = &Alerts{Global: []alarm.Ref{{}}}
	require.Error(t, Validate(cfg))

	cfg = &Alerts{Global: []alarm.Ref{alarm.NamedRef("functionErrors")}}
	require.NoError(t, Validate(cfg))
}

// TestStageAllowed covers the empty and populated allow-lists.
func TestStageAllowed(t *testing.T) {
	t.Parallel()

	require.True(t, (&Alerts{}).StageAllowed("dev"))
	require.True(t, (&Alerts{Stages: []string{"dev"}}).StageAllowed("dev"))
	require.False(t, (&Alerts{Stages: []string{"production"}}).StageAllowed("dev"))
}

// TestLoadByExtension verifies the decoder is chosen from the file extension.
func TestLoadByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "alerts.yml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(yamlConfig), DefaultFilePermissions))

	tomlPath := filepath.Join(dir, "alerts.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte(tomlConfig), DefaultFilePermissions))

	fromYAML, err := Load(yamlPath)
	require.NoError(t, err)
	require.Len(t, fromYAML.Function, 2)

	fromTOML, err := Load(tomlPath)
	require.NoError(t, err)
	require.Len(t, fromTOML.Function, 2)

	_, err = Load(filepath.Join(dir, "alerts.json"))
	require.ErrorIs(t, err, errUnsupportedFormat)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

// TestWatch verifies a write to a watched file triggers the callback.
func TestWatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), DefaultFilePermissions))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	changed := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- Watch(ctx, []string{path}, func(p string) {
			select {
			case changed <- p:
			default:
			}
		})
	}()

	// Keep writing until the watcher is registered and reports the change.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case got := <-changed:
			abs, err := filepath.Abs(path)
			require.NoError(t, err)
			require.Equal(t, abs, got)

			cancel()
			require.NoError(t, <-done)

			return
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte(yamlConfig), DefaultFilePermissions))
		case <-ctx.Done():
			t.Fatal("no change reported")
		}
	}
}
