package proxy

import (
	"strings"

	"github.com/pixelbot/pixel-bot/internal/models"
)

// WrapSeparator splits a stored pattern into its prefix and suffix
// halves. A pattern without it is a bare prefix.
const WrapSeparator = "..."

// Pattern is one parsed proxy pattern.
type Pattern struct {
	Prefix string
	Suffix string
}

// ParsePattern classifies a stored pattern string. Only the first
// separator occurrence splits; anything after it belongs to the suffix.
func ParsePattern(raw string) Pattern {
	if prefix, suffix, found := strings.Cut(raw, WrapSeparator); found {
		return Pattern{Prefix: prefix, Suffix: suffix}
	}
	return Pattern{Prefix: raw}
}

// Apply matches text against the pattern and extracts the inner
// content, trimmed of surrounding whitespace. ok is false when the
// text does not carry the pattern.
func (p Pattern) Apply(text string) (inner string, ok bool) {
	if !strings.HasPrefix(text, p.Prefix) {
		return "", false
	}
	rest := text[len(p.Prefix):]
	if !strings.HasSuffix(rest, p.Suffix) {
		return "", false
	}
	rest = rest[:len(rest)-len(p.Suffix)]
	return strings.TrimSpace(rest), true
}

// MatchResult is a successful proxy tag match.
type MatchResult struct {
	Name  string
	Alter *models.Alter
	Inner string
}

// Match scans the owner's alters in creation order for the first one
// whose proxy pattern covers the text. Collisions between patterns are
// resolved purely by creation order, never by specificity.
//
// A match whose inner content trims to nothing is dropped unless the
// message carries attachments, so a bare trigger with nothing to say
// never proxies.
func Match(profile *models.Profile, text string, hasAttachments bool) (MatchResult, bool) {
	for _, entry := range profile.OrderedAlters() {
		alter := entry.Alter
		if !alter.HasProxy() || !alter.AllowProxy {
			continue
		}

		inner, ok := ParsePattern(alter.Proxy).Apply(text)
		if !ok {
			continue
		}
		if inner == "" && !hasAttachments {
			continue
		}

		return MatchResult{Name: entry.Name, Alter: alter, Inner: inner}, true
	}
	return MatchResult{}, false
}

// Overlapping returns the names of alters whose existing patterns
// collide with a candidate pattern, meaning some message could trigger
// both. Used to warn at configuration time; matching itself stays
// first-match-wins.
func Overlapping(profile *models.Profile, pattern string, exclude string) []string {
	candidate := ParsePattern(pattern)
	var names []string
	for _, entry := range profile.OrderedAlters() {
		if entry.Name == exclude || !entry.Alter.HasProxy() {
			continue
		}
		other := ParsePattern(entry.Alter.Proxy)
		if prefixesOverlap(candidate.Prefix, other.Prefix) && suffixesOverlap(candidate.Suffix, other.Suffix) {
			names = append(names, entry.Name)
		}
	}
	return names
}

func prefixesOverlap(a, b string) bool {
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}

func suffixesOverlap(a, b string) bool {
	return strings.HasSuffix(a, b) || strings.HasSuffix(b, a)
}
