// Package emotion implements the shared <tag>label</tag> markup used to
// annotate spoken emotion in submitted text. The parser is provider-agnostic:
// it only splits text and resolves labels; whether a backend can act on a
// label is each adapter's decision.
package emotion

import (
	"regexp"
	"strings"
)

// Label is one spoken-emotion annotation from the fixed vocabulary.
type Label string

const (
	Laughter  Label = "laughter"
	Angry     Label = "angry"
	Excited   Label = "excited"
	Happy     Label = "happy"
	Sad       Label = "sad"
	Surprised Label = "surprised"
	Scared    Label = "scared"
	Calm      Label = "calm"
)

var vocabulary = map[Label]bool{
	Laughter:  true,
	Angry:     true,
	Excited:   true,
	Happy:     true,
	Sad:       true,
	Surprised: true,
	Scared:    true,
	Calm:      true,
}

// tagPattern matches one well-formed tag span. Matching is non-greedy and
// tags do not nest; an unterminated tag never matches and stays literal text.
var tagPattern = regexp.MustCompile(`<tag>(.*?)</tag>`)

// ParseLabel normalizes s (trim, lower-case) and looks it up in the
// vocabulary. Unknown labels report ok=false, never an error.
func ParseLabel(s string) (Label, bool) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	return l, vocabulary[l]
}

// Segment is a run of plain text carrying the emotion of the tag that
// immediately preceded it, if any.
type Segment struct {
	Text  string
	Label Label // empty when the run carries no emotion
}

// Parse splits text into ordered segments. A tag's label attaches to the
// text run that follows it; text before the first tag has no label. A tag at
// the end of input, or one immediately followed by another tag, yields an
// empty-text segment. Unknown labels contribute no emotion but their markup
// is still consumed. Concatenating the Text fields reproduces the input with
// every well-formed tag removed.
func Parse(text string) []Segment {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		if text == "" {
			return nil
		}
		return []Segment{{Text: text}}
	}

	var segs []Segment
	var pending Label
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, Segment{Text: text[last:m[0]], Label: pending})
		} else if pending != "" {
			segs = append(segs, Segment{Label: pending})
		}
		pending = ""
		if l, ok := ParseLabel(text[m[2]:m[3]]); ok {
			pending = l
		}
		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:], Label: pending})
	} else if pending != "" {
		segs = append(segs, Segment{Label: pending})
	}
	return segs
}

// ReplaceTags rewrites every well-formed tag span through repl, which
// receives the raw label text found between the tags. Text outside tag
// spans is passed through untouched.
func ReplaceTags(text string, repl func(raw string) string) string {
	return tagPattern.ReplaceAllStringFunc(text, func(m string) string {
		sub := tagPattern.FindStringSubmatch(m)
		return repl(sub[1])
	})
}

// spaceRun collapses the doubled spaces left behind when a tag between two
// words is removed.
var spaceRun = regexp.MustCompile(` {2,}`)

// Strip removes every tag span, collapses the space runs that removal
// leaves, and trims the ends. This is what adapters send when the active
// model cannot emote.
func Strip(text string) string {
	out := ReplaceTags(text, func(string) string { return "" })
	return strings.TrimSpace(spaceRun.ReplaceAllString(out, " "))
}

// Labels returns the supported labels in authoring order. Duplicates are
// preserved and nothing is reordered; the caller decides how to compose them.
func Labels(text string) []Label {
	var out []Label
	for _, m := range tagPattern.FindAllStringSubmatch(text, -1) {
		if l, ok := ParseLabel(m[1]); ok {
			out = append(out, l)
		}
	}
	return out
}
