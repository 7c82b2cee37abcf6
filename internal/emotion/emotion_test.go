package emotion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLabel(t *testing.T) {
	l, ok := ParseLabel("  Angry ")
	require.True(t, ok)
	assert.Equal(t, Angry, l)

	l, ok = ParseLabel("EXCITED")
	require.True(t, ok)
	assert.Equal(t, Excited, l)

	_, ok = ParseLabel("furious")
	assert.False(t, ok)

	_, ok = ParseLabel("")
	assert.False(t, ok)
}

func TestParseAttachesLabelToFollowingText(t *testing.T) {
	segs := Parse("Hello <tag>angry</tag> world")
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "Hello "}, segs[0])
	assert.Equal(t, Segment{Text: " world", Label: Angry}, segs[1])
}

func TestParseMultipleTags(t *testing.T) {
	segs := Parse("<tag>angry</tag>Stop that<tag>calm</tag>Okay now")
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "Stop that", Label: Angry}, segs[0])
	assert.Equal(t, Segment{Text: "Okay now", Label: Calm}, segs[1])
}

func TestParseTagAtEndYieldsEmptySegment(t *testing.T) {
	segs := Parse("So long<tag>sad</tag>")
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "So long"}, segs[0])
	assert.Equal(t, Segment{Text: "", Label: Sad}, segs[1])
}

func TestParseConsecutiveTags(t *testing.T) {
	segs := Parse("<tag>angry</tag><tag>calm</tag>Hey")
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "", Label: Angry}, segs[0])
	assert.Equal(t, Segment{Text: "Hey", Label: Calm}, segs[1])
}

func TestParseUnknownLabelConsumesMarkup(t *testing.T) {
	segs := Parse("Hello <tag>furious</tag>world")
	require.Len(t, segs, 2)
	assert.Equal(t, Segment{Text: "Hello "}, segs[0])
	// The tag is removed but the unknown label carries no emotion.
	assert.Equal(t, Segment{Text: "world"}, segs[1])
}

func TestParseMalformedTagIsLiteral(t *testing.T) {
	for _, text := range []string{
		"Hello <tag>angry world",
		"Hello angry</tag> world",
		"Hello <tag></ world",
	} {
		segs := Parse(text)
		require.Len(t, segs, 1, "input %q", text)
		assert.Equal(t, text, segs[0].Text)
	}
}

func TestParseRoundTrip(t *testing.T) {
	inputs := []string{
		"plain text with no markup",
		"Hello <tag>angry</tag> world",
		"<tag>excited</tag>start and <tag>calm</tag>finish",
		"unknown <tag>bogus</tag> label",
		"unterminated <tag>angry tail",
		"",
	}
	for _, input := range inputs {
		var b strings.Builder
		for _, seg := range Parse(input) {
			b.WriteString(seg.Text)
		}
		want := ReplaceTags(input, func(string) string { return "" })
		assert.Equal(t, want, b.String(), "input %q", input)
	}
}

func TestStrip(t *testing.T) {
	assert.Equal(t, "Hello world", Strip("Hello <tag>angry</tag> world"))
	assert.Equal(t, "Hello world", Strip("<tag>excited</tag>Hello world<tag>sad</tag>"))
	assert.Equal(t, "plain", Strip("plain"))
	assert.Equal(t, "", Strip("<tag>angry</tag>"))
}

func TestLabelsKeepsOrderAndDuplicates(t *testing.T) {
	labels := Labels("<tag>calm</tag>a<tag>bogus</tag>b<tag>angry</tag>c<tag>calm</tag>")
	assert.Equal(t, []Label{Calm, Angry, Calm}, labels)
}
