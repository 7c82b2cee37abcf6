package tts

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Johnxjp/tts-evaluation/internal/emotion"
)

// Dropping an unsupported tag between two words leaves a doubled space.
var spaceRun = regexp.MustCompile(` {2,}`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// Every backend speaks a different emotion dialect, so each adapter owns a
// small encoding strategy instead of sharing one branchy rewrite function.
// All strategies drop unsupported labels without substitute text, and all
// adapters strip markup entirely when the active model cannot emote.

// bracketStyle inlines supported labels as literal [label] tokens.
type bracketStyle struct{}

func (bracketStyle) encode(text string) string {
	return collapseSpaces(emotion.ReplaceTags(text, func(raw string) string {
		if l, ok := emotion.ParseLabel(raw); ok {
			return fmt.Sprintf("[%s]", l)
		}
		return ""
	}))
}

// elementStyle keeps the [laughter] bracket and renders every other
// supported label as a self-closing emotion element.
type elementStyle struct{}

func (elementStyle) encode(text string) string {
	return collapseSpaces(emotion.ReplaceTags(text, func(raw string) string {
		l, ok := emotion.ParseLabel(raw)
		switch {
		case ok && l == emotion.Laughter:
			return "[laughter]"
		case ok:
			return fmt.Sprintf(`<emotion value="%s" />`, l)
		default:
			return ""
		}
	}))
}

// spanStyle wraps each labeled text run in a prosody element scoped to that
// run alone; two labels in one utterance each cover only their own segment.
// A label with no following text produces no element.
type spanStyle struct{}

func (spanStyle) encode(text string) string {
	var b strings.Builder
	for _, seg := range emotion.Parse(text) {
		if seg.Label == "" || seg.Text == "" {
			b.WriteString(seg.Text)
			continue
		}
		fmt.Fprintf(&b, `<prosody emotion="%s">%s</prosody>`, seg.Label, seg.Text)
	}
	return strings.TrimSpace(b.String())
}

// describeStyle pulls labels out of the text entirely and folds them into a
// holistic voice description sent alongside the de-tagged text. Labels keep
// their authored order. An empty description means no label survived.
type describeStyle struct{}

func (describeStyle) encode(text string) (plain, description string) {
	labels := emotion.Labels(text)
	plain = emotion.Strip(text)
	if len(labels) == 0 {
		return plain, ""
	}
	words := make([]string, len(labels))
	for i, l := range labels {
		words[i] = string(l)
	}
	return plain, strings.Join(words, ", ") + " tone of voice"
}
