package gates

import "regexp"

// Rule is one forbidden pattern and the issue reported when it matches.
type Rule struct {
	// Name is a short identifier for the rule.
	Name string
	// Pattern is the forbidden pattern.
	Pattern *regexp.Regexp
	// Issue describes the violation to the worker that has to fix it.
	Issue string
}

// MetaRules flag production chatter that leaked into a script: mentions of
// other workers, first-person planning and references to the workflow.
var MetaRules = []Rule{
	{
		Name:    "delegation_mention",
		Pattern: regexp.MustCompile(`(?i)@(producer|researcher|writer|critic|fact-?checker|creative|voiceover|user|all)\b`),
		Issue:   "script mentions a team member (e.g. @writer); remove all delegation notes",
	},
	{
		Name:    "planning_language",
		Pattern: regexp.MustCompile(`(?i)\b(i will now|i'll now|let me (?:now )?(?:write|draft|revise|check|research|ask)|i'm going to (?:write|draft|revise)|next,? i will|we will now)\b`),
		Issue:   "script contains first-person planning language; keep only the spoken script",
	},
	{
		Name:    "phase_reference",
		Pattern: regexp.MustCompile(`(?i)\b(research|writing|review|creative|voiceover|clarifying) phase\b`),
		Issue:   "script refers to the production phase; remove workflow commentary",
	},
	{
		Name:    "draft_label",
		Pattern: regexp.MustCompile(`(?i)\b(here is the (?:revised |updated |final )?(?:script|draft)|revised draft|draft \d+)\b`),
		Issue:   "script contains draft labels or hand-off phrasing; submit the script text only",
	},
	{
		Name:    "feedback_reference",
		Pattern: regexp.MustCompile(`(?i)\b(as (?:the )?(?:critic|factchecker|fact-checker|producer) (?:suggested|noted|requested)|based on (?:your|the) feedback)\b`),
		Issue:   "script refers to review feedback; remove meta-commentary",
	},
}

// MarkupRules match non-speakable markup that must not reach the audio
// backend. Order matters: each rule runs on the text left by the previous
// ones, so a fragment is reported by exactly one rule.
var MarkupRules = []Rule{
	{
		Name:    "visual_tag",
		Pattern: regexp.MustCompile(`(?i)\[\s*(?:visual|b-?roll|on-?screen|graphic|text on screen|shot|camera|scene)\b[^\]]*\]`),
		Issue:   "visual direction tag",
	},
	{
		Name:    "effect_tag",
		Pattern: regexp.MustCompile(`(?i)\[\s*(?:sfx|sound|effect|fx)\b[^\]]*\]`),
		Issue:   "sound effect tag",
	},
	{
		Name:    "music_tag",
		Pattern: regexp.MustCompile(`(?i)\[\s*music\b[^\]]*\]`),
		Issue:   "music cue tag",
	},
	{
		Name:    "cut_tag",
		Pattern: regexp.MustCompile(`(?i)\[\s*(?:cut|transition|fade)\b[^\]]*\]`),
		Issue:   "cut or transition tag",
	},
	{
		Name:    "timestamp_tag",
		Pattern: regexp.MustCompile(`\[\s*\d{1,2}:\d{2}(?:\s*[-–]\s*\d{1,2}:\d{2})?\s*\]`),
		Issue:   "timestamp tag",
	},
	{
		Name:    "pause_tag",
		Pattern: regexp.MustCompile(`(?i)\[\s*(?:pause|beat|breath)\b[^\]]*\]`),
		Issue:   "pause tag",
	},
	{
		Name:    "section_header",
		Pattern: regexp.MustCompile(`(?i)\[\s*(?:hook|intro|introduction|outro|conclusion|body|main|cta|call to action|section)\b[^\]]*\]`),
		Issue:   "section header tag",
	},
	{
		Name:    "markdown_header",
		Pattern: regexp.MustCompile(`(?m)^\s*#{1,6}\s+.*$`),
		Issue:   "markdown header",
	},
	{
		Name:    "delegation_mention",
		Pattern: regexp.MustCompile(`(?i)@(producer|researcher|writer|critic|fact-?checker|creative|voiceover|user|all)\b[,:]?`),
		Issue:   "team member mention",
	},
}
