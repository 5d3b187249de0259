package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// systemInstruction is sent unchanged with every generation request
const systemInstruction = `You are a professional luxury concierge agent.
Your job is to recommend the best restaurant(s) for a client's request, using only the venues listed in the context.

Rules:
- Be professional, concise and personalised to the client's request (party size, cuisine, atmosphere, occasion).
- Use only facts present in the context. Never invent venues, addresses, prices or features.
- If the context is empty or no venue fits the request, say plainly that no matching venue was found. Do not suggest venues from outside the context.
- If a venue you recommend is NOT in the exact location requested (arrondissement, neighbourhood or city), you MUST say so clearly and politely for that venue, and state where it is located.
  Example: "This restaurant is located just outside the requested area but offers all the desired features."`

const emptyContext = "(no venues available)"

// buildPrompt renders the numbered context and the client request
func buildPrompt(request string, sources []*domain.RankedDocument) string {
	var sb strings.Builder

	sb.WriteString("Context:\n")
	if len(sources) == 0 {
		sb.WriteString(emptyContext)
		sb.WriteString("\n")
	}
	for i, src := range sources {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, src.Document.Text)
	}

	sb.WriteString("\nClient request:\n")
	sb.WriteString(strings.TrimSpace(request))
	sb.WriteString("\n\nAnswer:")

	return sb.String()
}
