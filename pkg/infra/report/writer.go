package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relkeep/pkg/domain/model"
	"github.com/m-mizutani/relkeep/pkg/domain/types"
	"github.com/pelletier/go-toml/v2"
)

// Format is a serialization format of a report file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf selects the format from the file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", goerr.Wrap(types.ErrInvalidFormat, "report file must end with .json, .yaml, .yml or .toml",
			goerr.V("path", path))
	}
}

// Marshal encodes report in format
func Marshal(report *model.Report, format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(report, "", "  ")
	case FormatYAML:
		data, err = yaml.Marshal(report)
	case FormatTOML:
		data, err = toml.Marshal(report)
	default:
		return nil, goerr.Wrap(types.ErrInvalidFormat, "unknown report format", goerr.V("format", format))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode report", goerr.V("format", format))
	}

	return data, nil
}

// Write saves report to path in the format given by its extension
func Write(path string, report *model.Report) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	data, err := Marshal(report, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write report", goerr.V("path", path))
	}

	return nil
}
