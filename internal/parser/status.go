package parser

import (
	"strings"

	"github.com/samber/lo"

	"media-grabber/internal/domain"
)

// LineKind is the outcome of classifying one extractor output line.
type LineKind int

const (
	LineIgnored LineKind = iota
	LineStatus
	LineProgress
	LineCompleted
	LineSuppressed
)

const alreadyDownloaded = "has already been downloaded"

// StatusRule maps output substrings to a phase. Rules are evaluated in order
// and the first rule with a matching pattern wins.
type StatusRule struct {
	Kind     LineKind
	Phase    domain.Phase
	Patterns []string
	// RequireAll makes every pattern mandatory instead of any one of them.
	RequireAll bool
}

// DefaultStatusRules is the rule table for yt-dlp output.
// The already-downloaded rule must stay ahead of the progress rule.
var DefaultStatusRules = []StatusRule{
	{Kind: LineCompleted, Phase: domain.PhaseComplete, Patterns: []string{alreadyDownloaded}},
	{Kind: LineProgress, Patterns: []string{"[download]", "%"}, RequireAll: true},
	{Kind: LineStatus, Phase: domain.PhaseResolving, Patterns: []string{"Extracting URL"}},
	{Kind: LineStatus, Phase: domain.PhaseConnecting, Patterns: []string{"Downloading webpage"}},
	{Kind: LineStatus, Phase: domain.PhaseFetchingMetadata, Patterns: []string{
		"Downloading API",
		"Downloading JSON",
		"Downloading video information",
	}},
	{Kind: LineStatus, Phase: domain.PhaseProcessingStreams, Patterns: []string{"Downloading m3u8", "manifest"}},
	{Kind: LineSuppressed, Phase: domain.PhaseMerging, Patterns: []string{"[Merger]", "Merging"}},
	{Kind: LineStatus, Phase: domain.PhaseStarting, Patterns: []string{"[download] Destination:"}},
}

// Classification is the result of Classify.
type Classification struct {
	Kind     LineKind
	Phase    domain.Phase
	Progress domain.ProgressEvent
}

// Classifier applies an ordered rule table to extractor output.
type Classifier struct {
	rules []StatusRule
}

// NewClassifier creates a classifier over rules, or DefaultStatusRules when nil.
func NewClassifier(rules []StatusRule) *Classifier {
	if rules == nil {
		rules = DefaultStatusRules
	}
	return &Classifier{rules: rules}
}

// Classify maps one stdout line to a status, progress or completion result.
// Only bracket-prefixed lines are considered. A progress line whose
// percentage cannot be parsed is ignored.
func (c *Classifier) Classify(line string) Classification {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "[") {
		return Classification{Kind: LineIgnored}
	}

	rule, ok := lo.Find(c.rules, func(rule StatusRule) bool {
		return rule.matches(trimmed)
	})
	if !ok {
		return Classification{Kind: LineIgnored}
	}

	if rule.Kind == LineProgress {
		progress, ok := ParseProgress(trimmed)
		if !ok {
			return Classification{Kind: LineIgnored}
		}
		return Classification{Kind: LineProgress, Progress: progress}
	}

	return Classification{Kind: rule.Kind, Phase: rule.Phase}
}

func (r StatusRule) matches(line string) bool {
	contains := func(pattern string) bool { return strings.Contains(line, pattern) }
	if r.RequireAll {
		return lo.EveryBy(r.Patterns, contains)
	}
	return lo.SomeBy(r.Patterns, contains)
}
