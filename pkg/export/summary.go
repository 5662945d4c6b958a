package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/trendmerge/pkg/series"
)

// Summary file extensions.
const (
	jsonExtension = ".json"
	yamlExtension = ".yaml"
	ymlExtension  = ".yml"
)

const defaultIndent = "  "

// ErrUnknownSummaryFormat is returned when a summary path has no supported extension.
var ErrUnknownSummaryFormat = errors.New("unknown summary format")

// Codec serializes run summaries.
type Codec interface {
	Encode(w io.Writer, v any) error
	Decode(r io.Reader, v any) error
	// Extension returns the canonical file extension, including the dot.
	Extension() string
}

// JSONCodec writes indented JSON.
type JSONCodec struct {
	// Indent is the indentation string. Empty means compact output.
	Indent string
}

// NewJSONCodec returns a JSON codec with two-space indentation.
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Encode implements Codec.
func (c *JSONCodec) Encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (c *JSONCodec) Decode(r io.Reader, v any) error {
	err := json.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("json decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (c *JSONCodec) Extension() string { return jsonExtension }

// YAMLCodec writes YAML documents.
type YAMLCodec struct{}

// Encode implements Codec.
func (YAMLCodec) Encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(len(defaultIndent))

	err := encoder.Encode(v)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("yaml close: %w", err)
	}

	return nil
}

// Decode implements Codec.
func (YAMLCodec) Decode(r io.Reader, v any) error {
	err := yaml.NewDecoder(r).Decode(v)
	if err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	return nil
}

// Extension implements Codec.
func (YAMLCodec) Extension() string { return yamlExtension }

// CodecFor picks a codec from the extension of path.
func CodecFor(path string) (Codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case jsonExtension:
		return NewJSONCodec(), nil
	case yamlExtension, ymlExtension:
		return YAMLCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSummaryFormat, path)
	}
}

// Summary describes one run: its inputs, the merged table shape, the
// continuity result and the files produced.
type Summary struct {
	GeneratedAt time.Time          `json:"generated_at"          yaml:"generated_at"`
	InputDir    string             `json:"input_dir"             yaml:"input_dir"`
	Pattern     string             `json:"pattern"               yaml:"pattern"`
	Files       []FileSummary      `json:"files"                 yaml:"files"`
	MergedRows  int                `json:"merged_rows"           yaml:"merged_rows"`
	Metrics     []string           `json:"metrics"               yaml:"metrics"`
	Continuity  ContinuitySummary  `json:"continuity"            yaml:"continuity"`
	ZeroShares  map[string]float64 `json:"zero_shares,omitempty" yaml:"zero_shares,omitempty"`
	Outputs     []string           `json:"outputs"               yaml:"outputs"`
}

// FileSummary is the per-export part of a Summary.
type FileSummary struct {
	File   string       `json:"file"   yaml:"file"`
	Metric string       `json:"metric" yaml:"metric"`
	Rows   int          `json:"rows"   yaml:"rows"`
	Stats  series.Stats `json:"stats"  yaml:"stats"`
}

// ContinuitySummary records the month-start check. Missing holds month labels.
type ContinuitySummary struct {
	Checked    bool     `json:"checked"           yaml:"checked"`
	Empty      bool     `json:"empty"             yaml:"empty"`
	Continuous bool     `json:"continuous"        yaml:"continuous"`
	Expected   int      `json:"expected"          yaml:"expected"`
	Missing    []string `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// FileSummaryOf builds the summary entry of a loaded series.
func FileSummaryOf(s series.Series) FileSummary {
	return FileSummary{File: s.Source, Metric: s.Metric, Rows: s.Len(), Stats: s.Stats}
}

// SaveSummary writes sum to path using the codec chosen by its extension.
func SaveSummary(path string, sum *Summary) error {
	codec, err := CodecFor(path)
	if err != nil {
		return err
	}

	_, err = WriteFile(path, func(w io.Writer) error {
		return codec.Encode(w, sum)
	})
	if err != nil {
		return fmt.Errorf("save summary: %w", err)
	}

	return nil
}

// LoadSummary reads a summary written by SaveSummary. The document is
// validated against the summary schema before it is decoded.
func LoadSummary(path string) (*Summary, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary: %w", err)
	}

	var doc any

	err = codec.Decode(bytes.NewReader(data), &doc)
	if err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	err = ValidateSummary(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var sum Summary

	err = codec.Decode(bytes.NewReader(data), &sum)
	if err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	return &sum, nil
}
