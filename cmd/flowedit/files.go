package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kode4food/argyll/editor/pkg/api"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

var ErrUnknownFormat = errors.New("unknown file format")

// formatOf picks the encoding of path from its extension
func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

// toJSON normalizes YAML or JSON content to JSON, so that the api types
// decode it with their own unmarshalers
func toJSON(data []byte, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return data, nil
	case formatYAML:
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return json.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func fromJSON(data []byte, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		res, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(res, '\n'), nil
	case formatYAML:
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return yaml.Marshal(doc)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func readDocument(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	js, err := toJSON(data, formatOf(path))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(js, dst); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func loadFlow(path string) (*api.FlowVersion, error) {
	var v api.FlowVersion
	if err := readDocument(path, &v); err != nil {
		return nil, err
	}
	if v.Trigger == nil {
		return nil, fmt.Errorf("%s: flow has no trigger", path)
	}
	return &v, nil
}

func loadOperations(path string) ([]api.Operation, error) {
	var msgs []api.OperationMessage
	if err := readDocument(path, &msgs); err != nil {
		return nil, err
	}
	res := make([]api.Operation, len(msgs))
	for i, m := range msgs {
		res[i] = m.Operation
	}
	return res, nil
}

// writeFlow encodes v in the selected format, to the output file when one
// is set and to stdout otherwise
func (c *cli) writeFlow(v *api.FlowVersion, input string) error {
	format := c.format
	if format == "" {
		format = formatOf(input)
	}
	js, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err := fromJSON(js, format)
	if err != nil {
		return err
	}
	if c.output == "" {
		_, err = c.out.Write(data)
		return err
	}
	return os.WriteFile(c.output, data, 0o644)
}
