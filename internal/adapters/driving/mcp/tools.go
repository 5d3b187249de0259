package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool definitions. Input schemas are generated from the handler input types.

var RecommendRestaurantsTool = &mcp.Tool{
	Name: "recommend_restaurants",
	Description: "Recommend restaurants from the concierge venue catalog for a free-text client request. " +
		"Requests may be written in any supported language; the answer is returned in the same language. " +
		"Venues outside the requested location are explicitly flagged.",
}

var CatalogStatusTool = &mcp.Tool{
	Name:        "catalog_status",
	Description: "Report whether the venue catalog index is loaded, how many venues it holds and when it was built.",
}

// RecommendInput is the recommend_restaurants tool input
type RecommendInput struct {
	Request string `json:"request" jsonschema:"The client's request, e.g. a French restaurant in the 4th arrondissement for 6 people"`
	TopK    int    `json:"top_k,omitempty" jsonschema:"Number of catalog venues to consider (default: 4)"`
}

// CatalogStatusInput is the catalog_status tool input
type CatalogStatusInput struct{}

// RecommendOutput summarises a recommendation for tool clients
type RecommendOutput struct {
	ID          string        `json:"id"`
	Language    string        `json:"language"`
	Answer      string        `json:"answer"`
	Venues      []VenueResult `json:"venues"`
	Disclosures []string      `json:"disclosures,omitempty"`
}

// VenueResult is one retrieved venue with its similarity score
type VenueResult struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Score   float64 `json:"score"`
}
