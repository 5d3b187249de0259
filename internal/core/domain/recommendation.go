package domain

import "time"

// DefaultTopK is the number of documents retrieved when none is requested
const DefaultTopK = 4

// Query is a client request and its English-normalised form
type Query struct {
	Original string   `json:"original"`
	Language Language `json:"language"`
	English  string   `json:"english"`
}

// Translated reports whether the English form came from a translation call
func (q Query) Translated() bool {
	return !q.Language.IsEnglish()
}

// GenerationRequest is a single-shot call to a generative model
type GenerationRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Disclosure records a venue recommended outside the requested location
type Disclosure struct {
	Venue             string `json:"venue"`
	Address           string `json:"address"`
	RequestedLocation string `json:"requested_location"`
	// Appended is true when the note was added after generation
	Appended bool `json:"appended"`
}

// EngineResult is the English output of the recommendation engine
type EngineResult struct {
	Answer      string            `json:"answer"`
	Sources     []*RankedDocument `json:"sources"`
	Disclosures []Disclosure      `json:"disclosures,omitempty"`
	Model       string            `json:"model"`
}

// Recommendation is the final answer handed to the caller and the document emitter
type Recommendation struct {
	ID            string            `json:"id"`
	Query         Query             `json:"query"`
	Answer        string            `json:"answer"`
	AnswerEnglish string            `json:"answer_english"`
	Sources       []*RankedDocument `json:"sources"`
	Disclosures   []Disclosure      `json:"disclosures,omitempty"`
	Model         string            `json:"model"`
	CreatedAt     time.Time         `json:"created_at"`
	Took          time.Duration     `json:"took" swaggertype:"integer" example:"1500000"`
}
