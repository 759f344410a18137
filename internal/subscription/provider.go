package subscription

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider supplies the configuration snapshot the panel renders.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// StaticProvider always returns the same snapshot.
type StaticProvider struct {
	snap Snapshot
}

// NewStaticProvider wraps snap. The provider hands out copies, so callers
// cannot mutate the wrapped value.
func NewStaticProvider(snap Snapshot) *StaticProvider {
	return &StaticProvider{snap: snap}
}

// Snapshot returns a copy of the wrapped snapshot.
func (p *StaticProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := p.snap
	return &s, nil
}

// FileProvider reads a snapshot from disk on every call.
// Files ending in .yaml or .yml are parsed as YAML, everything else as JSON.
type FileProvider struct {
	Path string
}

// NewFileProvider returns a provider reading path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

// Snapshot reads and decodes the file.
func (p *FileProvider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", p.Path, err)
	}
	snap, err := Decode(data, formatForPath(p.Path))
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", p.Path, err)
	}
	return snap, nil
}

// Format names a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a snapshot document in the given format.
func Decode(data []byte, format Format) (*Snapshot, error) {
	var snap Snapshot
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&snap); err != nil {
			return nil, err
		}
	}
	return &snap, nil
}
