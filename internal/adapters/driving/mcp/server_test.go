package mcp

import (
	"context"
	"fmt"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

type stubRecommender struct {
	rec  *domain.Recommendation
	err  error
	last driving.RecommendRequest
}

func (s *stubRecommender) Recommend(ctx context.Context, req driving.RecommendRequest) (*domain.Recommendation, error) {
	s.last = req
	return s.rec, s.err
}

type stubCatalog struct {
	status *domain.IndexStatus
}

func (s *stubCatalog) Refresh(ctx context.Context) (*domain.IndexStatus, error) { return s.status, nil }
func (s *stubCatalog) Status() *domain.IndexStatus { return s.status }
func (s *stubCatalog) Documents() []*domain.Document { return nil }

func connect(t *testing.T, srv *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	serverSession, err := srv.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func leJardinRecommendation() *domain.Recommendation {
	return &domain.Recommendation{
		ID:     "rec-1",
		Query:  domain.Query{Original: "Un restaurant dans le 4e", Language: domain.LanguageFrench},
		Answer: "Je vous recommande Le Jardin.",
		Sources: []*domain.RankedDocument{{
			Document: &domain.Document{ID: "rec1", Venue: domain.Venue{Name: "Le Jardin", Address: "12 Rue de Rivoli, 75001 Paris"}},
			Score:    0.91,
		}},
		Disclosures: []domain.Disclosure{{
			Venue:             "Le Jardin",
			Address:           "12 Rue de Rivoli, 75001 Paris",
			RequestedLocation: "4th arrondissement",
		}},
	}
}

func TestListTools(t *testing.T) {
	session := connect(t, New(Config{}, &stubRecommender{}, &stubCatalog{}))

	res, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"recommend_restaurants", "catalog_status"}, names)
}

func TestRecommendRestaurants(t *testing.T) {
	rec := &stubRecommender{rec: leJardinRecommendation()}
	session := connect(t, New(Config{}, rec, &stubCatalog{}))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "recommend_restaurants",
		Arguments: map[string]any{"request": "Un restaurant dans le 4e", "top_k": 2},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, res.Content, 2)

	answer, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Je vous recommande Le Jardin.", answer.Text)

	details, ok := res.Content[1].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, details.Text, `"language": "fr"`)
	assert.Contains(t, details.Text, "is outside 4th arrondissement")

	assert.Equal(t, "Un restaurant dans le 4e", rec.last.Text)
	assert.Equal(t, 2, rec.last.TopK)
}

func TestRecommendRestaurants_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not ready", domain.ErrIndexNotReady, "still loading"},
		{"upstream", fmt.Errorf("%w: 503", domain.ErrGenerationService), "upstream service"},
		{"invalid", fmt.Errorf("%w: request is empty", domain.ErrInvalidInput), "request is empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := connect(t, New(Config{}, &stubRecommender{err: tt.err}, &stubCatalog{}))

			res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
				Name:      "recommend_restaurants",
				Arguments: map[string]any{"request": "x"},
			})
			require.NoError(t, err)
			assert.True(t, res.IsError)
			require.NotEmpty(t, res.Content)
			assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, tt.want)
		})
	}
}

func TestCatalogStatus(t *testing.T) {
	catalog := &stubCatalog{status: &domain.IndexStatus{Ready: true, Documents: 12, Source: "airtable:app/Restaurants"}}
	session := connect(t, New(Config{}, &stubRecommender{}, catalog))

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: "catalog_status"})
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, `"documents": 12`)
}

func TestServer_handleRecommend(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and venues", func(t *testing.T) {
		srv := New(Config{}, &stubRecommender{rec: leJardinRecommendation()}, &stubCatalog{})

		res, out, err := srv.handleRecommend(ctx, nil, RecommendInput{Request: "Un restaurant dans le 4e"})
		require.NoError(t, err)
		require.False(t, res.IsError)

		output, ok := out.(RecommendOutput)
		require.True(t, ok)
		assert.Equal(t, "rec-1", output.ID)
		assert.Equal(t, "fr", output.Language)
		require.Len(t, output.Venues, 1)
		assert.Equal(t, "Le Jardin", output.Venues[0].Name)
		assert.Equal(t, 0.91, output.Venues[0].Score)
		require.Len(t, output.Disclosures, 1)
	})

	t.Run("service errors become tool errors", func(t *testing.T) {
		srv := New(Config{}, &stubRecommender{err: context.DeadlineExceeded}, &stubCatalog{})

		res, out, err := srv.handleRecommend(ctx, nil, RecommendInput{Request: "x"})
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.True(t, res.IsError)
		assert.Equal(t, "The request timed out.", res.Content[0].(*mcp.TextContent).Text)
	})
}

func TestServer_handleCatalogStatus_NotLoaded(t *testing.T) {
	srv := New(Config{}, &stubRecommender{}, &stubCatalog{})

	res, _, err := srv.handleCatalogStatus(context.Background(), nil, CatalogStatusInput{})
	require.NoError(t, err)
	assert.Contains(t, res.Content[0].(*mcp.TextContent).Text, `"ready": false`)
}
