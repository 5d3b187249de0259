package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

func newAirtable(t *testing.T, handler http.HandlerFunc, view string) *AirtableSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	src, err := NewAirtableSource(AirtableConfig{
		APIKey:    "key123",
		BaseID:    "appBase",
		TableName: "Restaurants",
		View:      view,
		BaseURL:   server.URL,
	})
	require.NoError(t, err)
	return src
}

func TestAirtableSource_FetchPaginates(t *testing.T) {
	var pages int
	src := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appBase/Restaurants", r.URL.Path)
		assert.Equal(t, "Bearer key123", r.Header.Get("Authorization"))
		assert.Equal(t, "Grid view", r.URL.Query().Get("view"))
		pages++

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("offset") {
		case "":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{
					{"id": "rec1", "fields": map[string]any{"Name": "Le Jardin", "Capacity_Max": 12}},
					{"id": "rec2", "fields": map[string]any{"Name": "Chez Marie"}},
				},
				"offset": "page2",
			})
		case "page2":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"records": []map[string]any{
					{"id": "rec3"},
				},
			})
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}, "Grid view")

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2, pages)

	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "Le Jardin", records[0].Fields["Name"])
	assert.Equal(t, float64(12), records[0].Fields["Capacity_Max"])
	assert.Equal(t, "rec3", records[2].ID)
	assert.NotNil(t, records[2].Fields, "records without fields get an empty map")
	assert.Empty(t, records[2].Fields)
}

func TestAirtableSource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantMsg string
	}{
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"type":"AUTHENTICATION_REQUIRED","message":"Authentication required"}}`))
			},
			wantMsg: "Authentication required",
		},
		{
			name: "plain status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantMsg: "status 502",
		},
		{
			name: "bad json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"records": [`))
			},
			wantMsg: "decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newAirtable(t, tt.handler, "")
			records, err := src.Fetch(context.Background())
			require.Error(t, err)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, domain.ErrCatalogFetch)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAirtableSource_NoViewParam(t *testing.T) {
	src := newAirtable(t, func(w http.ResponseWriter, r *http.Request) {
		_, hasView := r.URL.Query()["view"]
		assert.False(t, hasView)
		assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
		_, _ = w.Write([]byte(`{"records":[]}`))
	}, "")

	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNewAirtableSource_Validation(t *testing.T) {
	_, err := NewAirtableSource(AirtableConfig{APIKey: "k", BaseID: "b"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	src, err := NewAirtableSource(AirtableConfig{APIKey: "k", BaseID: "b", TableName: "t"})
	require.NoError(t, err)
	assert.Equal(t, "airtable:b/t", src.Name())
}
