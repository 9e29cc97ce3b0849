// Package blocks turns raw article text into candidate text blocks with
// exact byte offsets, at paragraph, line, and sentence granularity.
package blocks

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Minimum block lengths per granularity. Lines get a lower floor because
// menu bars are often rendered one short item per line.
const (
	MinParagraphLength = 30
	MinLineLength      = 20
	MinSentenceLength  = 40
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	paragraphRe  = regexp.MustCompile(`\n\s*\n`)
)

// Block is one candidate text block with its [Start, End) byte span in the
// original article text.
type Block struct {
	Text  string
	Start int
	End   int
}

// Normalize collapses all whitespace runs to single spaces and strips
// diacritics so that CMS encoding drift does not split otherwise identical
// blocks. The result is the identity key used for duplicate grouping.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(folded, " "))
}

// Paragraphs splits on blank-line boundaries and keeps blocks of at least
// MinParagraphLength characters.
func Paragraphs(text string) []Block {
	return collect(text, paragraphRe.Split(text, -1), MinParagraphLength)
}

// Lines splits on single newlines and keeps lines of at least MinLineLength
// characters.
func Lines(text string) []Block {
	return collect(text, strings.Split(text, "\n"), MinLineLength)
}

// Sentences splits on ". " and keeps sentences of at least MinSentenceLength
// characters.
func Sentences(text string) []Block {
	return collect(text, strings.Split(text, ". "), MinSentenceLength)
}

// All returns the three overlapping candidate streams concatenated.
func All(text string) []Block {
	out := Paragraphs(text)
	out = append(out, Lines(text)...)
	out = append(out, Sentences(text)...)
	return out
}

// collect trims each piece, drops pieces under minLen, and recovers exact
// offsets by scanning forward from the last match position. Scanning forward
// maps repeated identical substrings within one article to distinct,
// non-overlapping positions.
func collect(original string, pieces []string, minLen int) []Block {
	out := make([]Block, 0, len(pieces))
	cursor := 0
	for _, piece := range pieces {
		trimmed := strings.TrimSpace(piece)
		if len(trimmed) < minLen {
			continue
		}
		idx := strings.Index(original[cursor:], trimmed)
		if idx < 0 {
			continue
		}
		start := cursor + idx
		end := start + len(trimmed)
		out = append(out, Block{Text: trimmed, Start: start, End: end})
		cursor = end
	}
	return out
}
