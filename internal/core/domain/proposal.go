package domain

import "time"

// ProposalFormat selects the rendered document type
type ProposalFormat string

const (
	ProposalFormatPDF  ProposalFormat = "pdf"
	ProposalFormatHTML ProposalFormat = "html"
)

// ContentType returns the MIME type served for the format
func (f ProposalFormat) ContentType() string {
	switch f {
	case ProposalFormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "application/pdf"
	}
}

// Proposal is the client-facing document built from a recommendation
type Proposal struct {
	Number         string         `json:"number"`
	ClientName     string         `json:"client_name"`
	ClientRequest  string         `json:"client_request"`
	Recommendation string         `json:"recommendation"`
	Price          float64        `json:"price"`
	Currency       string         `json:"currency"`
	Date           time.Time      `json:"date"`
	Language       Language       `json:"language"`
	Format         ProposalFormat `json:"format"`
}

// FileName returns the download name for the rendered proposal
func (p *Proposal) FileName() string {
	ext := string(p.Format)
	if ext == "" {
		ext = string(ProposalFormatPDF)
	}
	if p.Language == LanguageFrench {
		return "proposition." + ext
	}
	return "proposal." + ext
}

// RenderedProposal holds the emitted document bytes
type RenderedProposal struct {
	FileName    string
	ContentType string
	Body        []byte
}
