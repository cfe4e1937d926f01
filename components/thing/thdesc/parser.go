package thdesc

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-control-systems/thingweb/components/status"
)

// Fetcher fetches raw description documents by URL.
type Fetcher interface {
	// Fetch returns the document located at url.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// FromBytes parses JSON description.
func FromBytes(data []byte) (*Description, error) {
	var desc Description

	if err := json.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("thing-description: %v: %w", err, status.StatusParse)
	}

	if err := validate(&desc); err != nil {
		return nil, err
	}

	return &desc, nil
}

// FromYAML parses YAML description.
func FromYAML(data []byte) (*Description, error) {
	var desc Description

	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("thing-description: %v: %w", err, status.StatusParse)
	}

	if err := validate(&desc); err != nil {
		return nil, err
	}

	return &desc, nil
}

// FromFile reads and parses description from the file.
//
// Remarks:
//   - Files with .yaml or .yml extension are parsed as YAML, others as JSON.
func FromFile(path string) (*Description, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("thing-description: failed to read file: path=%s: %w",
			path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FromYAML(data)
	default:
		return FromBytes(data)
	}
}

// FromURL fetches and parses JSON description.
func FromURL(ctx context.Context, fetcher Fetcher, url string) (*Description, error) {
	data, err := fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("thing-description: failed to fetch: url=%s: %w", url, err)
	}

	return FromBytes(data)
}

func validate(desc *Description) error {
	if desc.Metadata.Name == "" {
		return fmt.Errorf("thing-description: missed thing name: %w", status.StatusParse)
	}

	for _, i := range desc.Interactions {
		if i.Name == "" {
			return fmt.Errorf("thing-description: interaction without name: %w",
				status.StatusParse)
		}
	}

	return nil
}
