package domain

import "time"

// Catalog field names as they appear in the venue table
const (
	FieldName            = "Name"
	FieldAddress         = "Address"
	FieldCuisine         = "Cuisine"
	FieldAtmosphere      = "Atmosphere"
	FieldCapacityMax     = "Capacity_Max"
	FieldSpecialFeatures = "Special_Features"
)

// RequiredFields must be present and non-empty for a record to be indexed
var RequiredFields = []string{FieldName, FieldAddress}

// OptionalFields default to the empty string when absent
var OptionalFields = []string{FieldCuisine, FieldAtmosphere, FieldCapacityMax, FieldSpecialFeatures}

// CatalogRecord is one venue row as delivered by a catalog source.
// Values may be strings, numbers, lists or absent.
type CatalogRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// Venue is the validated view of a CatalogRecord.
// Optional fields are empty strings, never nil.
type Venue struct {
	Name            string `json:"name"`
	Address         string `json:"address"`
	Cuisine         string `json:"cuisine"`
	Atmosphere      string `json:"atmosphere"`
	CapacityMax     string `json:"capacity_max"`
	SpecialFeatures string `json:"special_features"`
}

// Document is the text representation of one venue used for embedding.
// Position is the record's index in the catalog and breaks score ties.
type Document struct {
	ID       string        `json:"id"`
	Position int           `json:"position"`
	Text     string        `json:"text"`
	Venue    Venue         `json:"venue"`
	Record   CatalogRecord `json:"-"`
}

// RankedDocument is a retrieval hit with its similarity score
type RankedDocument struct {
	Document *Document `json:"document"`
	Score    float64   `json:"score"`
}

// IndexStatus describes the currently served semantic index
type IndexStatus struct {
	Ready          bool          `json:"ready"`
	Source         string        `json:"source"`
	EmbeddingModel string        `json:"embedding_model"`
	Documents      int           `json:"documents"`
	Skipped        int           `json:"skipped"`
	BuiltAt        time.Time     `json:"built_at"`
	Took           time.Duration `json:"took" swaggertype:"integer" example:"1500000"`
}
