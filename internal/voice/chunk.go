package voice

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxChunkChars is the largest chunk sent to the synthesis backend.
const MaxChunkChars = 4000

// Sentences splits text after '.', '!' or '?' runs that are followed by
// whitespace or the end of the text. Closing quotes and brackets stay with
// their sentence. Whitespace is normalized.
func Sentences(text string) []string {
	runes := []rune(text)
	var (
		out   []string
		start int
	)
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		if s := normalize(string(runes[start:j])); s != "" {
			out = append(out, s)
		}
		start = j
		i = j - 1
	}
	if s := normalize(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// SplitChunks packs whole sentences into chunks of at most max characters.
// A sentence longer than max is broken at clause punctuation, then at word
// boundaries; a single word longer than max is cut. No chunk exceeds max.
// max <= 0 uses MaxChunkChars.
func SplitChunks(text string, max int) []string {
	if max <= 0 {
		max = MaxChunkChars
	}

	var units []string
	for _, s := range Sentences(text) {
		if utf8.RuneCountInString(s) <= max {
			units = append(units, s)
			continue
		}
		for _, clause := range pack(clauses(s), max) {
			if utf8.RuneCountInString(clause) <= max {
				units = append(units, clause)
				continue
			}
			units = append(units, pack(cutWords(strings.Fields(clause), max), max)...)
		}
	}
	return pack(units, max)
}

// pack joins units with single spaces into chunks of at most max
// characters. A unit longer than max is emitted alone.
func pack(units []string, max int) []string {
	var (
		chunks  []string
		current strings.Builder
		size    int
	)
	flush := func() {
		if size > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			size = 0
		}
	}

	for _, u := range units {
		n := utf8.RuneCountInString(u)
		if size > 0 && size+1+n > max {
			flush()
		}
		if size > 0 {
			current.WriteByte(' ')
			size++
		}
		current.WriteString(u)
		size += n
	}
	flush()
	return chunks
}

// clauses splits a sentence after ',', ';' or ':' followed by a space.
func clauses(s string) []string {
	var (
		out   []string
		start int
	)
	for i := 0; i+1 < len(s); i++ {
		if (s[i] == ',' || s[i] == ';' || s[i] == ':') && s[i+1] == ' ' {
			out = append(out, s[start:i+1])
			start = i + 2
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

// cutWords returns words, cutting any word longer than max into pieces.
func cutWords(words []string, max int) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		r := []rune(w)
		for len(r) > max {
			out = append(out, string(r[:max]))
			r = r[max:]
		}
		if len(r) > 0 {
			out = append(out, string(r))
		}
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’':
		return true
	}
	return false
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
