// Package wire detects wire-service (syndication) provenance in text
// segments scheduled for removal, using a prioritized signature registry.
package wire

import (
	"regexp"
	"sort"
	"strings"

	"github.com/LocalNewsImpact/boilerplate-engine/internal/domain"
)

// Confidence assigned per priority band. Strong signals are explicit
// service names in bylines or copyright footers; weak signals are
// section-path URL hints that need corroboration.
const (
	strongSignalConfidence = 0.9
	midSignalConfidence    = 0.7
	weakSignalConfidence   = 0.4
)

// Logger defines the logging interface used by the matcher.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
}

type compiledPattern struct {
	re     *regexp.Regexp
	source domain.WireServicePattern
	method string
}

// Matcher evaluates wire-service patterns in priority order (lower priority
// value checked first). It is stateless after construction and
// side-effect-free: it only reports findings, never mutates article state.
type Matcher struct {
	patterns []compiledPattern
	logger   Logger
}

// NewMatcher compiles the active patterns from the registry, sorted by
// ascending priority. Patterns that fail to compile are logged and skipped
// rather than failing construction.
func NewMatcher(registry []domain.WireServicePattern, logger Logger) *Matcher {
	compiled := make([]compiledPattern, 0, len(registry))
	for _, p := range registry {
		if !p.Active {
			continue
		}
		expr := p.Pattern
		if !p.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			logger.Warn("skipping wire pattern that failed to compile",
				"service", p.ServiceName, "pattern", p.Pattern, "error", err)
			continue
		}
		compiled = append(compiled, compiledPattern{re: re, source: p, method: methodFor(p)})
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].source.Priority < compiled[j].source.Priority
	})

	logger.Debug("wire matcher initialized", "patterns", len(compiled))
	return &Matcher{patterns: compiled, logger: logger}
}

// Detect returns the provenance finding for a text segment, or nil when no
// active pattern matches. The first match in priority order wins, which
// resolves multi-pattern ambiguity deterministically.
func (m *Matcher) Detect(segment, dom string) *domain.WireDetection {
	if segment == "" {
		return nil
	}
	for _, p := range m.patterns {
		if !p.re.MatchString(segment) {
			continue
		}
		m.logger.Debug("wire service detected",
			"service", p.source.ServiceName,
			"domain", dom,
			"method", p.method,
			"priority", p.source.Priority,
		)
		return &domain.WireDetection{
			Provider:        p.source.ServiceName,
			Confidence:      confidenceFor(p.source.Priority),
			DetectionMethod: p.method,
		}
	}
	return nil
}

// PatternCount returns the number of compiled active patterns.
func (m *Matcher) PatternCount() int {
	return len(m.patterns)
}

func methodFor(p domain.WireServicePattern) string {
	switch p.PatternType {
	case domain.WirePatternByline, domain.WirePatternAuthor:
		return domain.DetectionMethodAuthorField
	case domain.WirePatternURL:
		return domain.DetectionMethodURLHint
	case domain.WirePatternContent:
		if strings.Contains(p.Pattern, "©") || strings.Contains(strings.ToLower(p.Pattern), "copyright") {
			return domain.DetectionMethodFooterCopyright
		}
		return domain.DetectionMethodStoredPattern
	default:
		return domain.DetectionMethodStoredPattern
	}
}

func confidenceFor(priority int) float64 {
	switch {
	case priority <= domain.StrongSignalPriority:
		return strongSignalConfidence
	case priority >= domain.WeakSignalPriority:
		return weakSignalConfidence
	default:
		return midSignalConfidence
	}
}
