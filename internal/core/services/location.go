package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

var (
	arrondissementPattern = regexp.MustCompile(`(?i)\b(20|1[0-9]|[1-9])\s*(?:st|nd|rd|th|er|ère|re|ème|eme|e)?\s*(?:arrondissement|arr\b\.?)`)
	postalCodePattern     = regexp.MustCompile(`\b75(0[0-2][0-9]|116)\b`)
	bareOrdinalPattern    = regexp.MustCompile(`(?i)\b(?:in the|dans le)\s+(20|1[0-9]|[1-9])(?:st|nd|rd|th|er|ème|eme|e)\b(?:\s+(\p{L}+))?`)
	cityDistrictPattern   = regexp.MustCompile(`(?i)\bParis\s+(20|1[0-9]|[1-9])\s*(?:er|ème|eme|è|e)?(?:\W|$)`)
	placePattern          = regexp.MustCompile(`\b(?:in|In|near|Near|around|Around)\s+(?:the\s+)?([A-Z][\p{L}'’]*(?:[ -][A-Z][\p{L}'’]*)*)`)
)

// notDistricts are words that turn "in the 2nd" into something other than
// an arrondissement, as in "in the 2nd week of May".
var notDistricts = map[string]bool{
	"week": true, "weekend": true, "floor": true, "row": true, "century": true,
	"day": true, "half": true, "round": true, "place": true, "time": true, "semaine": true,
}

// notPlaces are capitalised words that follow "in" without naming a location
var notPlaces = map[string]bool{
	"January": true, "February": true, "March": true, "April": true, "May": true, "June": true,
	"July": true, "August": true, "September": true, "October": true, "November": true, "December": true,
	"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": true, "Friday": true,
	"Saturday": true, "Sunday": true, "English": true, "French": true, "I": true,
}

// Location is the area a client asked for
type Location struct {
	// Arrondissement is 1-20, or 0 when the request names a place instead
	Arrondissement int
	Place          string
}

// String describes the location for disclosure notes
func (l Location) String() string {
	if l.Arrondissement > 0 {
		return ordinal(l.Arrondissement) + " arrondissement"
	}
	return l.Place
}

// ParseLocation extracts the requested location from an English request.
// Arrondissements win over postal codes, then bare ordinals such as
// "in the 4th", then "in <Place>" phrases.
func ParseLocation(request string) (Location, bool) {
	if n := parseArrondissement(request); n > 0 {
		return Location{Arrondissement: n}, true
	}
	for _, m := range bareOrdinalPattern.FindAllStringSubmatch(request, -1) {
		if notDistricts[strings.ToLower(m[2])] {
			continue
		}
		n, _ := strconv.Atoi(m[1])
		return Location{Arrondissement: n}, true
	}
	for _, m := range placePattern.FindAllStringSubmatch(request, -1) {
		place := strings.TrimSpace(m[1])
		if place == "" || notPlaces[strings.Fields(place)[0]] {
			continue
		}
		return Location{Place: place}, true
	}
	return Location{}, false
}

func parseArrondissement(text string) int {
	if m := arrondissementPattern.FindStringSubmatch(text); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := postalCodePattern.FindStringSubmatch(text); m != nil {
		if m[1] == "116" {
			return 16
		}
		n, _ := strconv.Atoi(m[1])
		if n >= 1 && n <= 20 {
			return n
		}
	}
	return 0
}

// addressArrondissement also reads the "Paris 4e" form used in French
// addresses.
func addressArrondissement(address string) int {
	if n := parseArrondissement(address); n > 0 {
		return n
	}
	if m := cityDistrictPattern.FindStringSubmatch(address); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// Matches reports whether address lies in the location. The city itself
// matches every address.
func (l Location) Matches(address, city string) bool {
	if l.Arrondissement > 0 {
		if n := addressArrondissement(address); n > 0 {
			return n == l.Arrondissement
		}
		return strings.Contains(strings.ToLower(address), strings.ToLower(l.String()))
	}
	if city != "" && strings.EqualFold(l.Place, city) {
		return true
	}
	return strings.Contains(strings.ToLower(address), strings.ToLower(l.Place))
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// disclosureMarkers are phrases a model uses when it flags a location mismatch
var disclosureMarkers = []string{
	"outside", "not in the", "not located in", "is not in", "isn't in", "not within",
	"not exactly", "not quite in", "just beyond", "neighbouring", "neighboring",
	"different arrondissement", "rather than the", "instead of the",
}

// locationCheck compares the venues named in an answer against the
// requested location.
type locationCheck struct {
	city string
}

// Check returns the disclosures for venues that lie outside the requested
// location, and the answer with a note appended for every such venue the
// model did not flag itself.
func (c locationCheck) Check(request, answer string, sources []*domain.RankedDocument) (string, []domain.Disclosure) {
	loc, ok := ParseLocation(request)
	if !ok || !c.known(loc, sources) {
		return answer, nil
	}

	lower := strings.ToLower(answer)
	var disclosures []domain.Disclosure
	var notes []string
	seen := make(map[string]bool)

	for _, src := range sources {
		venue := src.Document.Venue
		key := strings.ToLower(venue.Name)
		if venue.Name == "" || seen[key] || !strings.Contains(lower, key) {
			continue
		}
		seen[key] = true

		if loc.Matches(venue.Address, c.city) {
			continue
		}

		d := domain.Disclosure{
			Venue:             venue.Name,
			Address:           venue.Address,
			RequestedLocation: loc.String(),
		}
		if !disclosed(lower, key) {
			d.Appended = true
			notes = append(notes, fmt.Sprintf("Please note: %s is located at %s, which is outside the requested %s.",
				venue.Name, venue.Address, loc.String()))
		}
		disclosures = append(disclosures, d)
	}

	if len(notes) == 0 {
		return answer, disclosures
	}
	return strings.TrimRight(answer, "\n ") + "\n\n" + strings.Join(notes, "\n"), disclosures
}

// known reports whether a named place can be checked at all: it must be
// the configured city or appear in a retrieved address. Capitalised words
// such as "in Italian style" or "in Christmas week" fail this and skip the
// check.
func (c locationCheck) known(loc Location, sources []*domain.RankedDocument) bool {
	if loc.Arrondissement > 0 {
		return true
	}
	if c.city != "" && strings.EqualFold(loc.Place, c.city) {
		return true
	}
	place := strings.ToLower(loc.Place)
	for _, src := range sources {
		if strings.Contains(strings.ToLower(src.Document.Venue.Address), place) {
			return true
		}
	}
	return false
}

const (
	disclosureLookBehind = 80
	disclosureLookAhead  = 240
)

// disclosed reports whether the text around any mention of the venue
// already flags the mismatch. The window runs from shortly before the name
// to shortly after it and never crosses a paragraph break, so abbreviations
// like "M." or "arr." inside a name do not cut it short.
func disclosed(text, venue string) bool {
	for offset := 0; ; {
		i := strings.Index(text[offset:], venue)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(venue)
		if hasMarker(disclosureWindow(text, start, end)) {
			return true
		}
		offset = end
	}
}

func disclosureWindow(text string, start, end int) string {
	from := max(0, start-disclosureLookBehind)
	if p := strings.LastIndex(text[from:start], "\n\n"); p >= 0 {
		from += p + 2
	}
	to := min(len(text), end+disclosureLookAhead)
	if p := strings.Index(text[end:to], "\n\n"); p >= 0 {
		to = end + p
	}
	return text[from:to]
}

func hasMarker(text string) bool {
	for _, m := range disclosureMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
