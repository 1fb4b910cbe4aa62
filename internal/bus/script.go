package bus

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ScriptOp is a mutation applied to one script section.
type ScriptOp string

const (
	OpCreate ScriptOp = "create"
	OpUpdate ScriptOp = "update"
	OpDelete ScriptOp = "delete"
)

// ErrUnknownOp is returned for script mutations with an unsupported op.
var ErrUnknownOp = errors.New("unknown script operation")

// ParseScriptOp validates a free-form op name.
func ParseScriptOp(s string) (ScriptOp, error) {
	switch op := ScriptOp(strings.ToLower(strings.TrimSpace(s))); op {
	case OpCreate, OpUpdate, OpDelete:
		return op, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOp, s)
	}
}

// Script maps section names to section text. Order is irrelevant.
type Script map[string]string

// Clone returns an independent copy.
func (s Script) Clone() Script {
	out := make(Script, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Sections returns the section names in sorted order.
func (s Script) Sections() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// WordCount returns the total number of words across all sections. It is
// recomputed on every call.
func (s Script) WordCount() int {
	total := 0
	for _, v := range s {
		total += len(strings.Fields(v))
	}
	return total
}

// SectionWords returns the word count of one section.
func (s Script) SectionWords(section string) int {
	return len(strings.Fields(s[section]))
}

// Text joins all sections in sorted name order, separated by blank lines.
func (s Script) Text() string {
	parts := make([]string, 0, len(s))
	for _, name := range s.Sections() {
		if body := strings.TrimSpace(s[name]); body != "" {
			parts = append(parts, body)
		}
	}
	return strings.Join(parts, "\n\n")
}

// apply mutates s in place. create and update are upserts; deleting a
// missing section is a no-op.
func (s Script) apply(section, content string, op ScriptOp) {
	switch op {
	case OpCreate, OpUpdate:
		s[section] = content
	case OpDelete:
		delete(s, section)
	}
}
