package normalisers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.RecordNormaliser = (*RecordNormaliser)(nil)

// documentTemplate is the embedded text for one venue. Field order is fixed.
const documentTemplate = "%s, %s, Cuisine: %s, Atmosphere: %s, Capacity: %s, Features: %s"

// listSeparator joins multi-select values such as Special_Features
const listSeparator = ", "

// RecordNormaliser validates catalog records against the venue schema
// and renders them into Documents.
type RecordNormaliser struct{}

// NewRecordNormaliser creates a new record normaliser.
func NewRecordNormaliser() *RecordNormaliser {
	return &RecordNormaliser{}
}

// Normalise converts every record, failing on the first record that lacks
// a required field. The output has the same length and order as records.
func (n *RecordNormaliser) Normalise(records []domain.CatalogRecord) ([]*domain.Document, error) {
	docs := make([]*domain.Document, 0, len(records))
	for i, rec := range records {
		doc, err := n.normalise(i, rec)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// NormaliseLenient converts valid records and skips the rest.
// Positions keep the original catalog index so tie-breaks stay stable.
func (n *RecordNormaliser) NormaliseLenient(records []domain.CatalogRecord) ([]*domain.Document, []error) {
	docs := make([]*domain.Document, 0, len(records))
	var errs []error
	for i, rec := range records {
		doc, err := n.normalise(i, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, errs
}

func (n *RecordNormaliser) normalise(position int, rec domain.CatalogRecord) (*domain.Document, error) {
	for _, field := range domain.RequiredFields {
		if FieldValue(rec.Fields, field) == "" {
			return nil, &domain.MissingRequiredFieldError{
				RecordID: rec.ID,
				Position: position,
				Field:    field,
			}
		}
	}

	venue := VenueFromRecord(rec)
	id := rec.ID
	if id == "" {
		id = "rec-" + strconv.Itoa(position)
	}

	return &domain.Document{
		ID:       id,
		Position: position,
		Text:     DocumentText(venue),
		Venue:    venue,
		Record:   rec,
	}, nil
}

// VenueFromRecord reads the venue schema out of a record.
// Absent fields come back as empty strings.
func VenueFromRecord(rec domain.CatalogRecord) domain.Venue {
	return domain.Venue{
		Name:            FieldValue(rec.Fields, domain.FieldName),
		Address:         FieldValue(rec.Fields, domain.FieldAddress),
		Cuisine:         FieldValue(rec.Fields, domain.FieldCuisine),
		Atmosphere:      FieldValue(rec.Fields, domain.FieldAtmosphere),
		CapacityMax:     FieldValue(rec.Fields, domain.FieldCapacityMax),
		SpecialFeatures: FieldValue(rec.Fields, domain.FieldSpecialFeatures),
	}
}

// DocumentText renders the embedding text for a venue.
func DocumentText(v domain.Venue) string {
	return fmt.Sprintf(documentTemplate,
		v.Name, v.Address, v.Cuisine, v.Atmosphere, v.CapacityMax, v.SpecialFeatures)
}

// FieldValue returns the string form of a record field, or "" when absent.
func FieldValue(fields map[string]any, name string) string {
	if fields == nil {
		return ""
	}
	return formatValue(fields[name])
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return formatFloat(val)
	case float32:
		return formatFloat(float64(val))
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return joinValues(len(val), func(i int) string { return strings.TrimSpace(val[i]) })
	case []any:
		return joinValues(len(val), func(i int) string { return formatValue(val[i]) })
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// joinValues drops empty elements so a list never renders dangling separators
func joinValues(n int, at func(int) string) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if s := at(i); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, listSeparator)
}
