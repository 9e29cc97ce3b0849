// Package boilerplate implements boilerplate mining, scoring, and
// single-article cleaning over extracted news text.
// vocab.go holds the keyword vocabularies and the Aho-Corasick matchers used
// for pattern-type classification and structural share-row detection.
package boilerplate

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// navigationVocab is section-menu vocabulary. Two or more distinct hits in a
// block indicate a navigation region.
var navigationVocab = []string{
	"news", "sports", "obituaries", "opinion", "classifieds", "e-edition",
	"subscribe", "home", "about", "contact", "weather", "lifestyle",
	"entertainment", "business", "calendar", "events", "jobs", "real estate",
	"marketplace", "public notices",
}

// footerVocab is copyright/legal footer vocabulary. A single hit marks a
// footer block.
var footerVocab = []string{
	"copyright", "all rights reserved", "privacy policy", "terms of use",
	"terms of service", "©",
}

// subscriptionVocab is paywall/subscription prompt vocabulary. A single hit
// marks a subscription block.
var subscriptionVocab = []string{
	"subscriber", "subscription", "paywall", "premium content", "sign up",
	"log in to continue", "print subscribers", "free access", "full access",
	"this item is available in full",
}

// shareSignatureVocab is the fixed structural signature set for
// social-share/engagement button rows. Three or more distinct hits in a
// short run mark it removable regardless of length gates.
var shareSignatureVocab = []string{
	"facebook", "twitter", "whatsapp", "sms", "email", "print", "share",
	"subscribe", "back to top", "all rights reserved", "linkedin", "reddit",
	"pinterest",
}

// vocabMatcher counts distinct vocabulary hits in normalized text using a
// single Aho-Corasick pass.
type vocabMatcher struct {
	matcher *ahocorasick.Matcher
	terms   []string
}

func newVocabMatcher(terms []string) *vocabMatcher {
	normalized := make([]string, len(terms))
	for i, t := range terms {
		normalized[i] = matchNormalize(t)
	}
	return &vocabMatcher{
		matcher: ahocorasick.NewStringMatcher(normalized),
		terms:   normalized,
	}
}

// distinctHits returns how many distinct vocabulary terms occur in the text.
// The package-level matchers are shared by every concurrent Clean call, so
// only the thread-safe match entry point may be used here.
func (v *vocabMatcher) distinctHits(text string) int {
	return len(v.matcher.MatchThreadSafe([]byte(matchNormalize(text))))
}

// hitTerms returns the distinct matched terms, for removal-reason reporting.
func (v *vocabMatcher) hitTerms(text string) []string {
	hits := v.matcher.MatchThreadSafe([]byte(matchNormalize(text)))
	out := make([]string, 0, len(hits))
	for _, idx := range hits {
		if idx < len(v.terms) {
			out = append(out, v.terms[idx])
		}
	}
	return out
}

// matchNormalize lowercases and replaces non-alphanumeric runes with spaces,
// preserving word boundaries for the matcher. The copyright sign is kept
// because footerVocab matches on it.
func matchNormalize(text string) string {
	text = strings.ToLower(text)

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '©' {
			result.WriteRune(r)
		} else {
			result.WriteByte(' ')
		}
	}
	return result.String()
}

var (
	navigationMatcher   = newVocabMatcher(navigationVocab)
	footerMatcher       = newVocabMatcher(footerVocab)
	subscriptionMatcher = newVocabMatcher(subscriptionVocab)
	shareMatcher        = newVocabMatcher(shareSignatureVocab)
)
