// Package gates holds the mechanical quality checks a script has to pass
// before it may be finalized or narrated.
//
// The gates are pure functions over text. They never judge content; that
// happens inside the reasoning calls of the critic and factchecker roles.
// They catch contract violations that are cheap to detect with a regular
// expression or a word count:
//   - Envelope: the accepted word-count range for a target duration
//   - CheckScript: length and meta-commentary check for a final script
//   - CleanVoiceover: markup stripping and residual length check for narration
//   - CheckAudio: sanity check of a synthesis result
//
// Rule sets are kept as tables of Rule values so they can be swapped and
// tested without touching the control flow that consumes them.
package gates
