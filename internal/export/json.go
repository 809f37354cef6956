package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/repodoc/internal/graph"
	"github.com/dusk-indust/repodoc/internal/repo"
	"github.com/dusk-indust/repodoc/internal/tree"
)

// Format selects the bundle encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Bundle is the machine-readable companion of the rendered document. It holds
// everything Render needs except the timestamp.
type Bundle struct {
	RepoName    string                   `json:"repoName" yaml:"repoName"`
	GeneratedAt string                   `json:"generatedAt,omitempty" yaml:"generatedAt,omitempty"`
	Summary     string                   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Metadata    *repo.Metadata           `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Tree        *tree.Node               `json:"tree" yaml:"tree"`
	Model       *graph.RelationshipModel `json:"model" yaml:"model"`
	Stats       graph.ModelStats         `json:"stats" yaml:"stats"`
}

// NewBundle captures the inputs of a render.
func NewBundle(in RenderInput) *Bundle {
	b := &Bundle{
		RepoName: in.RepoName,
		Summary:  in.Summary,
		Metadata: in.Metadata,
		Tree:     in.Tree,
		Model:    in.Model,
	}
	if !in.GeneratedAt.IsZero() {
		b.GeneratedAt = in.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if b.Model != nil {
		b.Stats = b.Model.Stats()
	}
	return b
}

// RenderInput rebuilds the render input. The timestamp is not restored;
// callers set GeneratedAt.
func (b *Bundle) RenderInput() RenderInput {
	return RenderInput{
		RepoName: b.RepoName,
		Summary:  b.Summary,
		Metadata: b.Metadata,
		Tree:     b.Tree,
		Model:    b.Model,
	}
}

// Encode serialises the bundle in the given format.
func (b *Bundle) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// DecodeBundle parses data in the given format.
func DecodeBundle(data []byte, f Format) (*Bundle, error) {
	var b Bundle
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	}
	if b.Model == nil {
		return nil, fmt.Errorf("bundle has no model")
	}
	return &b, nil
}

// LoadBundle reads a bundle from disk. The format follows the extension.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	f := FormatJSON
	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		f = FormatYAML
	}
	return DecodeBundle(data, f)
}

// WriteBundle encodes b and saves it atomically.
func WriteBundle(b *Bundle, f Format, dest string) error {
	data, err := b.Encode(f)
	if err != nil {
		return err
	}
	return SaveErr(data, dest)
}
