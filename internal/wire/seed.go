package wire

import "github.com/LocalNewsImpact/boilerplate-engine/internal/domain"

// SeedPatterns is the built-in wire-service registry, used when the database
// registry is empty. Once operators populate the wire_service_patterns
// table, the stored rows are authoritative.
func SeedPatterns() []domain.WireServicePattern {
	return []domain.WireServicePattern{
		{
			Pattern:     `\(AP\)\s*[—-]`,
			PatternType: domain.WirePatternDateline,
			ServiceName: "Associated Press",
			Priority:    1,
			Active:      true,
			Notes:       "AP dateline, e.g. WASHINGTON (AP) —",
		},
		{
			Pattern:     `\bassociated press\b`,
			PatternType: domain.WirePatternByline,
			ServiceName: "Associated Press",
			Priority:    5,
			Active:      true,
		},
		{
			Pattern:     `\(reuters\)`,
			PatternType: domain.WirePatternDateline,
			ServiceName: "Reuters",
			Priority:    1,
			Active:      true,
		},
		{
			Pattern:     `\breuters\b`,
			PatternType: domain.WirePatternAuthor,
			ServiceName: "Reuters",
			Priority:    8,
			Active:      true,
		},
		{
			Pattern:     `(?:©|copyright).{0,20}Cable News Network.{0,40}Warner Bros\.?\s*Discovery`,
			PatternType: domain.WirePatternContent,
			ServiceName: "CNN NewsSource",
			Priority:    3,
			Active:      true,
			Notes:       "© Cable News Network, Inc., a Warner Bros. Discovery Company (copyright footer)",
		},
		{
			Pattern:     `\bCNN\s+NewsSource\b`,
			PatternType: domain.WirePatternByline,
			ServiceName: "CNN NewsSource",
			Priority:    5,
			Active:      true,
		},
		{
			Pattern:     `agence france[- ]presse|\bAFP\b`,
			PatternType: domain.WirePatternByline,
			ServiceName: "AFP",
			Priority:    8,
			Active:      true,
		},
		{
			Pattern:     `\bbloomberg\s+news\b`,
			PatternType: domain.WirePatternByline,
			ServiceName: "Bloomberg",
			Priority:    8,
			Active:      true,
		},
		{
			Pattern:     `tribune (news service|content agency)`,
			PatternType: domain.WirePatternByline,
			ServiceName: "Tribune News Service",
			Priority:    8,
			Active:      true,
		},
		{
			Pattern:     `\bstacker\b.{0,60}(media|story|republish)`,
			PatternType: domain.WirePatternContent,
			ServiceName: "Stacker",
			Priority:    20,
			Active:      true,
		},
		{
			Pattern:     `states newsroom`,
			PatternType: domain.WirePatternByline,
			ServiceName: "States Newsroom",
			Priority:    8,
			Active:      true,
		},
		{
			Pattern:     `the conversation`,
			PatternType: domain.WirePatternByline,
			ServiceName: "The Conversation",
			Priority:    15,
			Active:      true,
			Notes:       "Common phrase; mid priority so explicit services win ties",
		},
		{
			Pattern:     `/wire/|/ap-news/|/national-news/`,
			PatternType: domain.WirePatternURL,
			ServiceName: "Unattributed Wire",
			Priority:    60,
			Active:      true,
			Notes:       "Section-path hint only; requires corroborating evidence",
		},
	}
}
