package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "periods with spaces",
			text: "First sentence. Second sentence. Third.",
			want: []string{"First sentence.", "Second sentence.", "Third."},
		},
		{
			name: "mixed punctuation",
			text: "Really? Yes! Fine.",
			want: []string{"Really?", "Yes!", "Fine."},
		},
		{
			name: "newlines",
			text: "Line one\nLine two",
			want: []string{"Line one", "Line two"},
		},
		{
			name: "no terminal punctuation",
			text: "just a fragment",
			want: []string{"just a fragment"},
		},
		{
			name: "period without space does not split",
			text: "v1.2 is out. Upgrade now.",
			want: []string{"v1.2 is out.", "Upgrade now."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitSentences(tt.text))
		})
	}
}

func TestSequenceRatio(t *testing.T) {
	assert.Equal(t, 1.0, sequenceRatio("abc", "abc"))
	assert.Equal(t, 1.0, sequenceRatio("", ""))
	assert.Equal(t, 0.0, sequenceRatio("abc", ""))
	assert.Equal(t, 0.0, sequenceRatio("abc", "xyz"))

	// "abcd" vs "bcde": matching block "bcd", ratio 2*3/8.
	assert.InDelta(t, 0.75, sequenceRatio("abcd", "bcde"), 1e-12)
}

func TestRemoveRepetitions(t *testing.T) {
	t.Run("exact duplicates collapse", func(t *testing.T) {
		got := removeRepetitions("We ship worldwide. We ship worldwide. Returns take 30 days.", 0.85)
		assert.Equal(t, "We ship worldwide. Returns take 30 days.", got)
	})

	t.Run("near duplicates collapse", func(t *testing.T) {
		got := removeRepetitions("Our support team is available all day. Our support team is available all day!", 0.85)
		assert.Equal(t, "Our support team is available all day.", got)
	})

	t.Run("distinct sentences survive", func(t *testing.T) {
		text := "Shipping is free. Refunds take a week."
		assert.Equal(t, text, removeRepetitions(text, 0.85))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", removeRepetitions("", 0.85))
	})
}
