package weather

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/i474232898/trackside-weather/internal/common"
)

// seriesKeywords mark a name as a championship or series rather than a venue.
// Matched as whole words against a space-padded, lowercased name.
var seriesKeywords = []string{
	" championship ", " championships ", " series ", " cup ", " tour ", " round ",
	" rnd ", " league ", " masters ", " grand prix ",
}

var (
	trailingClauseRe = regexp.MustCompile(`(?i)\s+(?:w/|with\s|presented\s+by\s).*$`)
	roundPrefixRe    = regexp.MustCompile(`(?i)^(?:round|rnd|rd)\.?\s*#?\d+\b[\s:-]*`)
	separatorRe      = regexp.MustCompile(`\s+[-|–—:]+\s+`)
)

const maxNGram = 4

// IsSeriesLike reports whether name reads like a series or championship name.
func IsSeriesLike(name string) bool {
	return common.HasAny(common.WordPadded(name), seriesKeywords...)
}

// ResolveCandidates returns the ordered, deduplicated geocoding queries for an
// event. Series-like track names go last so that places extracted from the
// event name are tried first.
func ResolveCandidates(eventName, trackName string) []string {
	trackName = common.CollapseSpaces(trackName)
	extracted := extractEventCandidates(eventName)

	var ordered []string
	if IsSeriesLike(trackName) {
		ordered = append(ordered, extracted...)
		ordered = append(ordered, trackName)
	} else {
		ordered = append(ordered, trackName)
		ordered = append(ordered, extracted...)
	}
	return dedupe(ordered)
}

// extractEventCandidates pulls place-like phrases out of an event name.
func extractEventCandidates(eventName string) []string {
	cleaned := cleanEventName(eventName)
	if cleaned == "" {
		return nil
	}

	var out []string
	phrase := cleaned
	if city, rest, ok := splitCityRegion(cleaned); ok {
		out = append(out, cityRegionVariants(city, rest)...)
		phrase = city
	}
	out = append(out, trailingNGrams(phrase)...)

	kept := out[:0]
	for _, c := range out {
		if utf8.RuneCountInString(c) < 2 || IsSeriesLike(c) {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// cleanEventName strips sponsor clauses, acronym prefixes and round numbers.
func cleanEventName(name string) string {
	s := common.CollapseSpaces(name)
	s = trailingClauseRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, " ")

	for {
		before := s
		s = strings.TrimSpace(roundPrefixRe.ReplaceAllString(s, ""))
		s = stripAcronymPrefix(s)
		s = stripNumericEdges(s)
		if s == before {
			break
		}
	}
	return strings.Trim(s, " ,.-")
}

// stripAcronymPrefix drops a short all-caps leading token such as "ABC" or
// "NSW" when more words follow it.
func stripAcronymPrefix(s string) string {
	first, rest, found := strings.Cut(s, " ")
	if !found || strings.TrimSpace(rest) == "" {
		return s
	}
	if !isAcronym(strings.TrimRight(first, ":,.-")) {
		return s
	}
	return strings.TrimSpace(rest)
}

func isAcronym(tok string) bool {
	n := utf8.RuneCountInString(tok)
	if n < 2 || n > 6 {
		return false
	}
	letters := 0
	for _, r := range tok {
		switch {
		case unicode.IsUpper(r):
			letters++
		case unicode.IsDigit(r):
		default:
			return false
		}
	}
	return letters >= 2
}

// stripNumericEdges removes bare numbers (years, round numbers) from either end.
func stripNumericEdges(s string) string {
	words := strings.Fields(s)
	for len(words) > 1 && isNumber(words[0]) {
		words = words[1:]
	}
	for len(words) > 1 && isNumber(words[len(words)-1]) {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func isNumber(tok string) bool {
	tok = strings.Trim(tok, "#.,")
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// splitCityRegion detects a trailing "City, Region[, Country]" shape.
func splitCityRegion(s string) (city string, rest []string, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return "", nil, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return "", nil, false
		}
	}
	return parts[0], parts[1:], true
}

// cityRegionVariants builds "City, Region[, Country]" using the last two and
// then the last word of the text before the first comma.
func cityRegionVariants(city string, rest []string) []string {
	words := strings.Fields(city)
	suffix := ", " + strings.Join(rest, ", ")

	var out []string
	for n := min(2, len(words)); n >= 1; n-- {
		out = append(out, strings.Join(words[len(words)-n:], " ")+suffix)
	}
	return out
}

// trailingNGrams takes the last maxNGram words of phrase as the place window
// and returns its leading 4-, 3-, 2- and 1-word slices.
func trailingNGrams(phrase string) []string {
	words := strings.Fields(strings.ReplaceAll(phrase, ",", " "))
	if len(words) == 0 {
		return nil
	}
	start := max(0, len(words)-maxNGram)
	window := words[start:]

	var out []string
	for n := maxNGram; n >= 1; n-- {
		if n > len(window) {
			continue
		}
		out = append(out, strings.Join(window[:n], " "))
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = common.CollapseSpaces(it)
		if it == "" {
			continue
		}
		key := strings.ToLower(it)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
