package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSource_YAML(t *testing.T) {
	path := writeFile(t, "venues.yaml", `
- id: rec1
  fields:
    Name: Le Jardin
    Address: 12 Rue des Rosiers, 75004 Paris
    Capacity_Max: 12
    Special_Features: [Terrace, Private room]
- Name: Chez Marie
  Address: 3 Rue Oberkampf, 75011 Paris
`)

	src := NewFileSource(path)
	assert.Equal(t, "file:venues.yaml", src.Name())

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "Le Jardin", records[0].Fields["Name"])
	assert.Equal(t, 12, records[0].Fields["Capacity_Max"])
	assert.Equal(t, []any{"Terrace", "Private room"}, records[0].Fields["Special_Features"])

	assert.Empty(t, records[1].ID)
	assert.Equal(t, "Chez Marie", records[1].Fields["Name"])
}

func TestFileSource_JSONAirtableExport(t *testing.T) {
	path := writeFile(t, "export.json", `{"records":[{"id":"recA","fields":{"Name":"Le Jardin","Address":"Paris"}}]}`)

	records, err := NewFileSource(path).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "recA", records[0].ID)
	assert.Equal(t, "Paris", records[0].Fields["Address"])
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogFetch)

	bad := writeFile(t, "bad.json", `{"records": 3}`)
	_, err = NewFileSource(bad).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogFetch)

	scalars := writeFile(t, "scalars.yaml", "- one\n- two\n")
	_, err = NewFileSource(scalars).Fetch(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogFetch)
}

func TestParseRecords_Empty(t *testing.T) {
	records, err := ParseRecords([]byte(""), ".yaml")
	require.NoError(t, err)
	assert.Empty(t, records)
}
