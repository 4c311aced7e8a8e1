package blueprint

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/utils"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format is a spec file encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Document is a loaded spec file
type Document struct {
	AppID string
	Name  string
	// Blueprint is true when the file used the shorthand blueprint layout
	Blueprint bool
	Spec      *types.AppSpec
}

// FormatFor picks the decoder from a file extension. Blueprint (.bp)
// files are JSON.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".bp":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported spec file extension %q", filepath.Ext(path))
	}
}

// Load reads and parses a spec file
func Load(path string) (*Document, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read spec file: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if doc.AppID == "" {
		doc.AppID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return doc, nil
}

// Parse decodes a spec in either the plain ui_spec layout or the blueprint
// layout ({"app": {...}, "ui": {...}}), then validates it.
func Parse(data []byte, format Format) (*Document, error) {
	if err := utils.ValidateSpecSize(data); err != nil {
		return nil, err
	}

	raw, err := decode(data, format)
	if err != nil {
		return nil, err
	}

	doc := &Document{}
	specMap := raw
	if ui, ok := raw["ui"].(map[string]interface{}); ok {
		app, _ := raw["app"].(map[string]interface{})
		doc.Blueprint = true
		doc.AppID, _ = app["id"].(string)
		doc.Name, _ = app["name"].(string)
		specMap = NewExpander().Expand(ui, raw["services"])
	}

	spec, err := toSpec(specMap)
	if err != nil {
		return nil, err
	}
	if spec.Title == "" && doc.Name != "" {
		spec.Title = doc.Name
	}
	spec.Normalize()
	if err := utils.ValidateAppSpec(spec); err != nil {
		return nil, err
	}
	doc.Spec = spec
	return doc, nil
}

func decode(data []byte, format Format) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	var err error

	switch format {
	case FormatJSON:
		err = sonic.Unmarshal(data, &out)
	case FormatYAML:
		err = yaml.Unmarshal(data, &out)
	case FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(&out)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", utils.ErrInvalidSpec, format, err)
	}
	return out, nil
}

// toSpec re-encodes a generic tree so every format yields the same
// value types in props (float64 numbers, []interface{} lists).
func toSpec(m map[string]interface{}) (*types.AppSpec, error) {
	data, err := sonic.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSpec, err)
	}
	var spec types.AppSpec
	if err := sonic.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("%w: %v", utils.ErrInvalidSpec, err)
	}
	return &spec, nil
}
