package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/normalisers"
)

// Verify interface compliance
var _ driven.CatalogSource = (*VenueSource)(nil)

// VenueSource implements driven.CatalogSource over the venues table
type VenueSource struct {
	db *DB
}

// NewVenueSource creates a new VenueSource
func NewVenueSource(db *DB) *VenueSource {
	return &VenueSource{db: db}
}

// Name identifies the source
func (s *VenueSource) Name() string {
	return "postgres:venues"
}

// Fetch returns all venues ordered by catalog position.
// NULL columns are left out of the record fields.
func (s *VenueSource) Fetch(ctx context.Context) ([]domain.CatalogRecord, error) {
	query := `
		SELECT id, name, address, cuisine, atmosphere, capacity_max, special_features
		FROM venues
		ORDER BY position, id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}
	defer rows.Close()

	records := []domain.CatalogRecord{}
	for rows.Next() {
		var row venueRow
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Address,
			&row.Cuisine,
			&row.Atmosphere,
			&row.CapacityMax,
			pq.Array(&row.SpecialFeatures),
		); err != nil {
			return nil, fmt.Errorf("%w: scan venue: %w", domain.ErrCatalogFetch, err)
		}
		records = append(records, row.record())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}

	return records, nil
}

// Replace swaps the whole catalog for records in one transaction.
// Record order becomes the venue position.
func (s *VenueSource) Replace(ctx context.Context, records []domain.CatalogRecord) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM venues`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO venues (id, position, name, address, cuisine, atmosphere, capacity_max, special_features)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, rec := range records {
			row := rowFromRecord(rec, i)
			if _, err := stmt.ExecContext(ctx,
				row.ID,
				i,
				row.Name,
				row.Address,
				row.Cuisine,
				row.Atmosphere,
				row.CapacityMax,
				pq.Array(row.SpecialFeatures),
			); err != nil {
				return fmt.Errorf("insert venue %s: %w", row.ID, err)
			}
		}
		return nil
	})
}

// venueRow mirrors one row of the venues table
type venueRow struct {
	ID              string
	Name            sql.NullString
	Address         sql.NullString
	Cuisine         sql.NullString
	Atmosphere      sql.NullString
	CapacityMax     sql.NullInt64
	SpecialFeatures []string
}

func (r venueRow) record() domain.CatalogRecord {
	fields := make(map[string]any, 6)
	setString := func(name string, v sql.NullString) {
		if v.Valid {
			fields[name] = v.String
		}
	}
	setString(domain.FieldName, r.Name)
	setString(domain.FieldAddress, r.Address)
	setString(domain.FieldCuisine, r.Cuisine)
	setString(domain.FieldAtmosphere, r.Atmosphere)
	if r.CapacityMax.Valid {
		fields[domain.FieldCapacityMax] = r.CapacityMax.Int64
	}
	if len(r.SpecialFeatures) > 0 {
		fields[domain.FieldSpecialFeatures] = r.SpecialFeatures
	}
	return domain.CatalogRecord{ID: r.ID, Fields: fields}
}

func rowFromRecord(rec domain.CatalogRecord, position int) venueRow {
	v := normalisers.VenueFromRecord(rec)

	id := rec.ID
	if id == "" {
		id = fmt.Sprintf("venue-%d", position)
	}

	row := venueRow{
		ID:              id,
		Name:            nullString(v.Name),
		Address:         nullString(v.Address),
		Cuisine:         nullString(v.Cuisine),
		Atmosphere:      nullString(v.Atmosphere),
		SpecialFeatures: featureList(rec.Fields[domain.FieldSpecialFeatures]),
	}
	if n, err := strconv.ParseInt(v.CapacityMax, 10, 64); err == nil {
		row.CapacityMax = sql.NullInt64{Int64: n, Valid: true}
	}
	return row
}

// featureList keeps multi-select lists as arrays and splits comma separated text
func featureList(v any) []string {
	var parts []string
	switch val := v.(type) {
	case nil:
		return []string{}
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			parts = append(parts, normalisers.FieldValue(map[string]any{"v": item}, "v"))
		}
	default:
		parts = strings.Split(normalisers.FieldValue(map[string]any{"v": val}, "v"), ",")
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
