// Package export writes normalized records to their target files.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/pkg/directus"
	"github.com/ubuntu/decorate"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of one target file.
type Format string

// Supported target formats.
const (
	FormatJSON Format = constants.FormatJSON
	FormatYAML Format = constants.FormatYAML
)

// FormatFor picks the format from the file extension. Anything that is not
// .yaml or .yml is written as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Result describes one target write.
type Result struct {
	Path   string `json:"path"   yaml:"path"`
	Format Format `json:"format" yaml:"format"`
	Bytes  int    `json:"bytes"  yaml:"bytes"`
	Err    error  `json:"-"      yaml:"-"`
}

// Writer writes the same record list to every target.
type Writer struct {
	targets []string
	indent  string
	logger  directus.Logger
}

// Option configures a Writer.
type Option func(*Writer)

// WithIndent sets the JSON indent.
func WithIndent(indent string) Option {
	return func(w *Writer) {
		w.indent = indent
	}
}

// WithLogger sets the logger.
func WithLogger(logger directus.Logger) Option {
	return func(w *Writer) {
		w.logger = logger
	}
}

// NewWriter creates a writer for targets. Blank entries are ignored.
func NewWriter(targets []string, opts ...Option) (*Writer, error) {
	var cleaned []string

	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target != "" {
			cleaned = append(cleaned, target)
		}
	}

	if len(cleaned) == 0 {
		return nil, constants.ErrNoExportTargets
	}

	w := &Writer{
		targets: cleaned,
		indent:  constants.DefaultJSONIndent,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Targets returns the target paths in write order.
func (w *Writer) Targets() []string {
	return append([]string(nil), w.targets...)
}

// Write writes records to every target. A failing target does not stop the
// others; all failures are joined into the returned error. Writes are not
// transactional, so one target may be updated while another is not.
func (w *Writer) Write(records []directus.Record) ([]Result, error) {
	if records == nil {
		records = []directus.Record{}
	}

	encoded := make(map[Format][]byte)
	results := make([]Result, 0, len(w.targets))

	var errs []error

	for _, target := range w.targets {
		result := Result{Path: target, Format: FormatFor(target)}

		data, ok := encoded[result.Format]
		if !ok {
			var err error

			data, err = w.encode(result.Format, records)
			if err != nil {
				result.Err = err
				results = append(results, result)
				errs = append(errs, fmt.Errorf("%s: %w", target, err))

				continue
			}

			encoded[result.Format] = data
		}

		if err := writeFile(target, data); err != nil {
			result.Err = err
			errs = append(errs, err)
			w.log("Failed to write export target", map[string]interface{}{"path": target, "error": err.Error()})
		} else {
			result.Bytes = len(data)
			w.log("Wrote export target", map[string]interface{}{"path": target, "records": len(records), "bytes": len(data)})
		}

		results = append(results, result)
	}

	return results, errors.Join(errs...)
}

func (w *Writer) encode(format Format, records []directus.Record) ([]byte, error) {
	if format == FormatYAML {
		return EncodeYAML(records)
	}

	return EncodeJSON(records, w.indent)
}

func (w *Writer) log(msg string, fields map[string]interface{}) {
	if w.logger == nil {
		return
	}

	if _, failed := fields["error"]; failed {
		w.logger.Error(msg, fields)

		return
	}

	w.logger.Info(msg, fields)
}

// EncodeJSON pretty-prints records. HTML characters are kept literal and
// there is no trailing newline.
func EncodeJSON(records []directus.Record, indent string) ([]byte, error) {
	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", indent)

	if err := encoder.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding records as JSON: %w", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// EncodeYAML writes records as a YAML sequence. Numbers decoded as
// json.Number are emitted as YAML numbers.
func EncodeYAML(records []directus.Record) ([]byte, error) {
	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)

	if err := encoder.Encode(yamlValue(records)); err != nil {
		return nil, fmt.Errorf("encoding records as YAML: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("encoding records as YAML: %w", err)
	}

	return buf.Bytes(), nil
}

func yamlValue(value any) any {
	switch v := value.(type) {
	case []directus.Record:
		out := make([]any, len(v))
		for i, record := range v {
			out[i] = yamlValue(map[string]any(record))
		}

		return out
	case directus.Record:
		return yamlValue(map[string]any(v))
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = yamlValue(item)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = yamlValue(item)
		}

		return out
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}

		if f, err := v.Float64(); err == nil {
			return f
		}

		return string(v)
	default:
		return v
	}
}

func writeFile(path string, data []byte) (err error) {
	defer decorate.OnError(&err, "could not write %s", path)

	if err := os.MkdirAll(filepath.Dir(path), constants.OutputDirPerm); err != nil {
		return err
	}

	return os.WriteFile(path, data, constants.OutputFilePerm)
}
