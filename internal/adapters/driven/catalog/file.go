package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure FileSource implements CatalogSource
var _ driven.CatalogSource = (*FileSource)(nil)

// FileSource reads venue records from a JSON or YAML file.
//
// Accepted layouts are a list of records, a list of bare field maps, or an
// Airtable export ({"records": [...]}). A record is either {id, fields} or a
// plain field map.
type FileSource struct {
	path string
}

// NewFileSource creates a file catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Name identifies the source
func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.path)
}

// Fetch reads and decodes the file in record order
func (s *FileSource) Fetch(ctx context.Context) ([]domain.CatalogRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}

	records, err := ParseRecords(data, filepath.Ext(s.path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCatalogFetch, s.path, err)
	}
	return records, nil
}

// ParseRecords decodes catalog records. ext selects the format (".json",
// ".yaml" or ".yml"); anything else is decoded as YAML, which also accepts JSON.
func ParseRecords(data []byte, ext string) ([]domain.CatalogRecord, error) {
	var raw any
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	}

	var items []any
	switch v := raw.(type) {
	case nil:
		return []domain.CatalogRecord{}, nil
	case []any:
		items = v
	case map[string]any:
		list, ok := v["records"].([]any)
		if !ok {
			return nil, fmt.Errorf("expected a list of records or a \"records\" key")
		}
		items = list
	default:
		return nil, fmt.Errorf("unexpected catalog document of type %T", raw)
	}

	records := make([]domain.CatalogRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("record %d: expected a map, got %T", i, item)
		}
		records = append(records, toRecord(m))
	}
	return records, nil
}

func toRecord(m map[string]any) domain.CatalogRecord {
	fields, hasFields := m["fields"].(map[string]any)
	if !hasFields {
		fields = make(map[string]any, len(m))
		for k, v := range m {
			if k == "id" {
				continue
			}
			fields[k] = v
		}
	}

	var id string
	if v, ok := m["id"]; ok && v != nil {
		id = fmt.Sprint(v)
	}
	return domain.CatalogRecord{ID: id, Fields: fields}
}
