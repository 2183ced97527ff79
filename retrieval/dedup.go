package retrieval

import "strings"

// defaultRepetitionThreshold is the sequence-ratio above which a generated
// sentence counts as a near-duplicate of an already kept one.
const defaultRepetitionThreshold = 0.85

// removeRepetitions strips near-duplicate sentences from generated text.
// Sampling-based generation tends to restate the same sentence with minor
// variations; a sentence is kept only if its sequence ratio against every
// previously kept sentence stays at or below the threshold.
func removeRepetitions(text string, threshold float64) string {
	sentences := splitSentences(text)
	kept := make([]string, 0, len(sentences))
	for _, sentence := range sentences {
		duplicate := false
		for _, existing := range kept {
			if sequenceRatio(sentence, existing) > threshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, sentence)
		}
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// splitSentences splits text after sentence-ending punctuation followed by
// whitespace, and on newlines.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			sentences = append(sentences, current.String())
			current.Reset()
			continue
		}
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && runes[i+1] == ' ' {
			for i+1 < len(runes) && runes[i+1] == ' ' {
				i++
			}
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// sequenceRatio measures similarity of two strings as 2*M/T, where M is the
// total length of matching blocks and T the combined length. 1.0 means
// identical, 0.0 means no common characters in compatible positions.
func sequenceRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	matched := matchingLength(a, b)
	return 2.0 * float64(matched) / float64(len(a)+len(b))
}

// matchingLength sums the lengths of matching blocks found by recursively
// locating the longest common substring and matching the pieces on either
// side of it.
func matchingLength(a, b string) int {
	aStart, bStart, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingLength(a[:aStart], b[:bStart])
	total += matchingLength(a[aStart+size:], b[bStart+size:])
	return total
}

func longestCommonSubstring(a, b string) (aStart, bStart, size int) {
	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			current := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > size {
					size = lengths[j]
					aStart = i - size
					bStart = j - size
				}
			} else {
				lengths[j] = 0
			}
			prev = current
		}
	}
	return
}
