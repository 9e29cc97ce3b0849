package boilerplate

import "strings"

// Header-scan limits: boilerplate headers sit at the very top of extracted
// text, so the scan is bounded and cheap.
const (
	maxHeaderScanLines = 10
	maxHeaderScanBytes = 600

	// A line belongs to the header run when share/navigation tokens make
	// up at least this fraction of its words.
	headerLineDominance = 0.6

	// minHeaderLineHits is the minimum token hits for a line to qualify;
	// minHeaderRunHits is the minimum total across the stripped run.
	minHeaderLineHits = 2
	minHeaderRunHits  = 3
)

// DetectLeadingHeader scans the start of an article for a contiguous run of
// lines dominated by share-button or navigation-section tokens and returns
// the byte length of the prefix to strip (0 when no header is present).
// This is independent of the corpus-wide miner: it fires on a single article
// with no mining history, because the structural signature is unambiguous.
// Prose that merely mentions share platforms as subjects does not qualify.
func DetectLeadingHeader(text string) int {
	limit := len(text)
	if limit > maxHeaderScanBytes {
		limit = maxHeaderScanBytes
	}

	end := 0
	totalHits := 0
	lines := 0
	offset := 0
	for offset < limit && lines < maxHeaderScanLines {
		nl := strings.IndexByte(text[offset:], '\n')
		var line string
		lineEnd := len(text)
		if nl >= 0 {
			line = text[offset : offset+nl]
			lineEnd = offset + nl + 1
		} else {
			line = text[offset:]
		}
		lines++

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			// Blank lines inside the header run are absorbed.
			if end > 0 {
				end = lineEnd
			}
			offset = lineEnd
			continue
		}

		hits := shareMatcher.distinctHits(trimmed) + navigationMatcher.distinctHits(trimmed)
		words := wordCount(trimmed)
		if words == 0 || hits < minHeaderLineHits || float64(hits)/float64(words) < headerLineDominance {
			break
		}

		totalHits += hits
		end = lineEnd
		offset = lineEnd
	}

	if totalHits < minHeaderRunHits {
		return 0
	}

	// Absorb any whitespace that follows the stripped run, so the cleaned
	// text starts at the first editorial character.
	for end < len(text) && isSpaceByte(text[end]) {
		end++
	}
	return end
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\n' || b == '\r' || b == '\t'
}
