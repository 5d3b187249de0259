package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
)

// Ensure HTMLRenderer implements ProposalRenderer
var _ driven.ProposalRenderer = (*HTMLRenderer)(nil)

const proposalTemplate = `<!DOCTYPE html>
<html lang="{{ .Proposal.Language }}">
<head>
<meta charset="utf-8">
<title>{{ .Labels.Title }} {{ .Proposal.Number }}</title>
<style>
body { font-family: Georgia, serif; color: #222; max-width: 720px; margin: 40px auto; }
h1 { font-weight: normal; letter-spacing: 0.05em; border-bottom: 1px solid #b8975a; padding-bottom: 8px; }
dl { display: grid; grid-template-columns: max-content auto; gap: 4px 16px; }
dt { color: #777; }
.price { font-size: 1.2em; margin-top: 24px; }
.closing { margin-top: 32px; font-style: italic; }
</style>
</head>
<body>
<h1>{{ .Labels.Title }}</h1>
<dl>
<dt>{{ .Labels.PreparedFor }}</dt><dd>{{ .Proposal.ClientName | trim }}</dd>
<dt>{{ .Labels.Date }}</dt><dd>{{ .Date }}</dd>
<dt>{{ .Labels.Number }}</dt><dd>{{ .Proposal.Number | default "-" }}</dd>
</dl>
<h2>{{ .Labels.Request }}</h2>
<blockquote>{{ .Proposal.ClientRequest | trim }}</blockquote>
<h2>{{ .Labels.Recommendation }}</h2>
{{- range .Paragraphs }}
<p>{{ . }}</p>
{{- end }}
<p class="price"><strong>{{ .Labels.Price }}:</strong> {{ .Price }}</p>
<p class="closing">{{ .Labels.Closing }}<br>{{ .Labels.Signature }}</p>
</body>
</html>
`

// HTMLRenderer renders proposals as a standalone HTML page
type HTMLRenderer struct {
	tmpl *template.Template
}

// NewHTMLRenderer parses the proposal template
func NewHTMLRenderer() *HTMLRenderer {
	tmpl := template.Must(template.New("proposal").Funcs(sprig.FuncMap()).Parse(proposalTemplate))
	return &HTMLRenderer{tmpl: tmpl}
}

// Format returns html
func (r *HTMLRenderer) Format() domain.ProposalFormat {
	return domain.ProposalFormatHTML
}

// Render executes the template. Content is escaped by html/template.
func (r *HTMLRenderer) Render(ctx context.Context, p *domain.Proposal) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil proposal", domain.ErrInvalidInput)
	}
	l := labelsFor(p.Language)

	data := struct {
		Proposal   *domain.Proposal
		Labels     labels
		Date       string
		Price      string
		Paragraphs []string
	}{
		Proposal:   p,
		Labels:     l,
		Date:       l.formatDate(p.Date),
		Price:      l.formatPrice(p.Price, p.Currency),
		Paragraphs: paragraphs(p.Recommendation),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render proposal html: %w", err)
	}
	return buf.Bytes(), nil
}
