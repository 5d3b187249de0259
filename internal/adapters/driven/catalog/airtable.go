// Package catalog provides venue catalog sources.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure AirtableSource implements CatalogSource
var _ driven.CatalogSource = (*AirtableSource)(nil)

const (
	defaultAirtableURL = "https://api.airtable.com/v0"
	airtablePageSize   = 100
	// maxAirtablePages bounds a runaway offset loop
	maxAirtablePages = 1000
)

// AirtableConfig identifies the venue table
type AirtableConfig struct {
	APIKey    string
	BaseID    string
	TableName string
	// View restricts and orders records when set
	View    string
	BaseURL string
	Timeout time.Duration
}

// AirtableSource reads venue records from the Airtable REST API
type AirtableSource struct {
	cfg        AirtableConfig
	httpClient *http.Client
}

type airtableRecord struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type airtablePage struct {
	Records []airtableRecord `json:"records"`
	Offset  string           `json:"offset"`
}

type airtableError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAirtableSource creates an Airtable catalog source
func NewAirtableSource(cfg AirtableConfig) (*AirtableSource, error) {
	if cfg.APIKey == "" || cfg.BaseID == "" || cfg.TableName == "" {
		return nil, fmt.Errorf("%w: airtable api key, base id and table name are required", domain.ErrInvalidInput)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAirtableURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &AirtableSource{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// Name identifies the source
func (s *AirtableSource) Name() string {
	return "airtable:" + s.cfg.BaseID + "/" + s.cfg.TableName
}

// Fetch returns every record of the table in API order, following offsets
func (s *AirtableSource) Fetch(ctx context.Context) ([]domain.CatalogRecord, error) {
	var records []domain.CatalogRecord
	offset := ""

	for page := 0; page < maxAirtablePages; page++ {
		resp, err := s.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}

		for _, r := range resp.Records {
			fields := r.Fields
			if fields == nil {
				fields = map[string]any{}
			}
			records = append(records, domain.CatalogRecord{ID: r.ID, Fields: fields})
		}

		if resp.Offset == "" {
			return records, nil
		}
		offset = resp.Offset
	}

	return nil, fmt.Errorf("%w: airtable pagination exceeded %d pages", domain.ErrCatalogFetch, maxAirtablePages)
}

func (s *AirtableSource) fetchPage(ctx context.Context, offset string) (*airtablePage, error) {
	endpoint := fmt.Sprintf("%s/%s/%s",
		strings.TrimRight(s.cfg.BaseURL, "/"),
		url.PathEscape(s.cfg.BaseID),
		url.PathEscape(s.cfg.TableName))

	params := url.Values{}
	params.Set("pageSize", fmt.Sprint(airtablePageSize))
	if s.cfg.View != "" {
		params.Set("view", s.cfg.View)
	}
	if offset != "" {
		params.Set("offset", offset)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", domain.ErrCatalogFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", domain.ErrCatalogFetch, err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr airtableError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: airtable error %d (%s): %s",
				domain.ErrCatalogFetch, resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: airtable returned status %d", domain.ErrCatalogFetch, resp.StatusCode)
	}

	var page airtablePage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", domain.ErrCatalogFetch, err)
	}
	return &page, nil
}
