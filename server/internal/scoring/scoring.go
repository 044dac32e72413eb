package scoring

import (
	"strings"
	"time"
	"unicode"
)

// Classification is the category of a submitted answer's correctness.
// Values are shared with the wire protocol.
type Classification int32

const (
	None Classification = iota
	Title
	Artist
	Lyrics
)

func (c Classification) String() string {
	switch c {
	case Title:
		return "title"
	case Artist:
		return "artist"
	case Lyrics:
		return "lyrics"
	default:
		return "none"
	}
}

// Base point values, strictly decreasing by classification.
const (
	titleBase  = 100
	artistBase = 60
	lyricsBase = 30
)

type Result struct {
	Classification Classification
	Points         int
}

// Normalize prepares an answer for comparison: lowercase, trim, strip
// punctuation, collapse internal whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeSet normalizes every accepted answer and drops entries that
// normalize to the empty string.
func NormalizeSet(answers []string) []string {
	out := make([]string, 0, len(answers))
	for _, a := range answers {
		if n := Normalize(a); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Classify matches a raw answer against the accepted-answer sets in fixed
// precedence order: title, then artist, then lyrics fragment. The sets must
// already be normalized.
func Classify(raw string, titles, artists, lyrics []string) Classification {
	n := Normalize(raw)
	if n == "" {
		return None
	}
	if contains(titles, n) {
		return Title
	}
	if contains(artists, n) {
		return Artist
	}
	if contains(lyrics, n) {
		return Lyrics
	}
	return None
}

// Score computes the point value for a classified answer. Late submissions
// never score; within the window the base value earns a speed bonus that
// falls linearly from the full base at elapsed=0 to zero at elapsed=limit.
func Score(class Classification, elapsed, limit time.Duration) int {
	if class == None || limit <= 0 || elapsed < 0 || elapsed > limit {
		return 0
	}
	base := 0
	switch class {
	case Title:
		base = titleBase
	case Artist:
		base = artistBase
	case Lyrics:
		base = lyricsBase
	}
	bonus := int(int64(base) * int64(limit-elapsed) / int64(limit))
	return base + bonus
}

// ClassifyAndScore settles a submission in one step. Identical inputs always
// yield identical outputs.
func ClassifyAndScore(raw string, titles, artists, lyrics []string, elapsed, limit time.Duration) Result {
	class := Classify(raw, titles, artists, lyrics)
	return Result{
		Classification: class,
		Points:         Score(class, elapsed, limit),
	}
}

func contains(set []string, s string) bool {
	for _, a := range set {
		if a == s {
			return true
		}
	}
	return false
}
