package exiftool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"binary-metadata/core/descriptor"
	"binary-metadata/core/metadata"

	"go.uber.org/zap"
)

// ProcessorType is the descriptor type served by this package.
const ProcessorType = "exiftool"

var tagPattern = regexp.MustCompile(`^[A-Za-z0-9_\-]+(:[A-Za-z0-9_\-]+)*$`)

// dateLayouts are the timestamp formats exiftool emits.
var dateLayouts = []string{
	"2006:01:02 15:04:05.999999999Z07:00",
	"2006:01:02 15:04:05Z07:00",
	"2006:01:02 15:04:05.999999999",
	"2006:01:02 15:04:05",
}

// writeLayout is the timestamp format passed back to exiftool.
const writeLayout = "2006:01:02 15:04:05Z07:00"

// Runner executes the exiftool command and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Processor reads and writes embedded metadata through the exiftool CLI.
type Processor struct {
	command string
	timeout time.Duration
	run     Runner
	logger  *zap.Logger
}

// New creates a processor. A nil runner executes the real binary.
func New(cfg Config, run Runner, logger *zap.Logger) *Processor {
	if cfg.Command == "" {
		cfg.Command = "exiftool"
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	if run == nil {
		run = execRunner
	}
	return &Processor{
		command: cfg.Command,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		run:     run,
		logger:  logger,
	}
}

// Factory returns a descriptor.ProcessorFactory building exiftool processors.
// The "command" and "timeout_seconds" options override cfg.
func Factory(cfg Config, run Runner, logger *zap.Logger) descriptor.ProcessorFactory {
	return func(spec descriptor.ProcessorSpec) (metadata.Processor, error) {
		c := cfg
		if cmd := spec.Options["command"]; cmd != "" {
			c.Command = cmd
		}
		if raw := spec.Options["timeout_seconds"]; raw != "" {
			secs, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid timeout_seconds %q: %w", raw, err)
			}
			c.TimeoutSeconds = secs
		}
		return New(c, run, logger.With(zap.String("processor", spec.ID))), nil
	}
}

// ReadMetadata implements metadata.Processor. Empty keys read every tag.
func (p *Processor) ReadMetadata(ctx context.Context, blob *metadata.Blob, keys []string, ignorePrefix bool) (map[string]any, error) {
	args := []string{"-json", "-G"}
	for _, k := range keys {
		if !tagPattern.MatchString(k) {
			return nil, fmt.Errorf("invalid metadata key %q", k)
		}
		args = append(args, "-"+k)
	}

	var out []byte
	err := p.withTempFile(blob, func(path string) error {
		var runErr error
		out, runErr = p.invoke(ctx, append(args, path)...)
		return runErr
	})
	if err != nil {
		return nil, err
	}

	return parseOutput(out, ignorePrefix)
}

// WriteMetadata implements metadata.Processor. The input blob is not modified.
func (p *Processor) WriteMetadata(ctx context.Context, blob *metadata.Blob, values map[string]string, ignorePrefix bool) (*metadata.Blob, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		if !tagPattern.MatchString(k) {
			return nil, fmt.Errorf("invalid metadata key %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []string{"-overwrite_original"}
	for _, k := range keys {
		tag := k
		if ignorePrefix {
			tag = metadata.StripPrefix(k)
		}
		args = append(args, fmt.Sprintf("-%s=%s", tag, formatValue(values[k])))
	}

	var data []byte
	err := p.withTempFile(blob, func(path string) error {
		if _, err := p.invoke(ctx, append(args, path)...); err != nil {
			return err
		}
		var readErr error
		data, readErr = os.ReadFile(path)
		return readErr
	})
	if err != nil {
		return nil, err
	}

	return blob.WithData(data), nil
}

func (p *Processor) invoke(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	out, err := p.run(ctx, p.command, args...)
	p.logger.Debug("exiftool invoked",
		zap.Int("args", len(args)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	if err != nil {
		return nil, fmt.Errorf("exiftool failed: %w", err)
	}
	return out, nil
}

// withTempFile stages blob data in a private directory for the duration of fn.
func (p *Processor) withTempFile(blob *metadata.Blob, fn func(path string) error) error {
	dir, err := os.MkdirTemp("", "exiftool-*")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	name := "blob" + filepath.Ext(filepath.Base(blob.Filename))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, blob.Data, 0o600); err != nil {
		return fmt.Errorf("failed to stage blob: %w", err)
	}

	return fn(path)
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// parseOutput decodes the JSON emitted by "exiftool -json -G". With
// ignorePrefix, tags of several groups may strip to the same name; the group
// sorting first wins (EXIF before IPTC before XMP).
func parseOutput(out []byte, ignorePrefix bool) (map[string]any, error) {
	var docs []map[string]any
	if err := json.Unmarshal(out, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode exiftool output: %w", err)
	}

	result := make(map[string]any)
	if len(docs) == 0 {
		return result, nil
	}

	tags := make([]string, 0, len(docs[0]))
	for k := range docs[0] {
		if k != "SourceFile" {
			tags = append(tags, k)
		}
	}
	sort.Strings(tags)

	for _, tag := range tags {
		k := tag
		if ignorePrefix {
			k = metadata.StripPrefix(tag)
			if _, seen := result[k]; seen {
				continue
			}
		}
		result[k] = parseValue(docs[0][tag])
	}
	return result, nil
}

func parseValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return s
}

// formatValue turns RFC3339 timestamps into the exiftool date format.
func formatValue(v string) string {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t.Format(writeLayout)
	}
	return v
}
