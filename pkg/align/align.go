// Package align matches transcribed word timings to the sentences of a
// lesson's own text.
package align

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/LeiShi1313/readrepeat/pkg/segment"
)

const (
	// a sentence word counts as found when its best transcript match is above this
	minWordSimilarity = 0.5
	// windows scoring below this leave the sentence unaligned
	minWindowScore = 0.3
)

// Word is one transcribed word
type Word struct {
	Text    string
	StartMs int
	EndMs   int
}

// Timing is the aligned span of one sentence. Confidence is 0 when the
// sentence could not be placed.
type Timing struct {
	StartMs    int
	EndMs      int
	Confidence float64
}

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

func normalize(text string) string {
	text = punctuation.ReplaceAllString(strings.ToLower(text), "")
	return strings.Join(strings.Fields(text), " ")
}

// Similarity is 1 minus the edit distance over the longer length, computed on
// lowercased words without punctuation
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return 0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

// Sentences returns one timing per sentence. Sentences are placed in order:
// each one searches the transcript from where the previous match ended for
// the best scoring window of words. A sentence that cannot be placed gets a
// zero-length timing at the previous sentence's end.
func Sentences(sentences []string, words []Word, lang string) []Timing {
	timings := make([]Timing, len(sentences))
	if len(words) == 0 || len(sentences) == 0 {
		return timings
	}

	if segment.PerCharacter(lang) {
		words = splitCharacters(words, lang)
	}
	transcript := make([]string, len(words))
	for i, w := range words {
		transcript[i] = normalize(w.Text)
	}

	cursor := 0
	for i, sentence := range sentences {
		tokens := segment.Tokenize(sentence, lang)
		if len(tokens) == 0 {
			continue
		}

		start, end, score, ok := bestWindow(tokens, transcript, cursor)
		if !ok {
			prevEnd := 0
			if i > 0 {
				prevEnd = timings[i-1].EndMs
			}
			timings[i] = Timing{StartMs: prevEnd, EndMs: prevEnd}
			continue
		}

		timings[i] = Timing{
			StartMs:    words[start].StartMs,
			EndMs:      words[end].EndMs,
			Confidence: score,
		}
		cursor = end + 1
	}
	return timings
}

// bestWindow tries start positions a little past from and window sizes around
// the sentence length, returning the first best scoring window
func bestWindow(tokens, transcript []string, from int) (start, end int, score float64, ok bool) {
	n, total := len(tokens), len(transcript)
	if from >= total {
		return 0, 0, 0, false
	}

	best := -1.0
	searchEnd := min(from+n*3+10, total)
	for s := from; s < min(from+n+5, searchEnd); s++ {
		for size := max(1, n-2); size < n*2+3; size++ {
			e := s + size - 1
			if e >= total {
				break
			}
			if sc := windowScore(tokens, transcript[s:e+1]); sc > best {
				best, start, end = sc, s, e
			}
		}
	}

	if best < minWindowScore {
		return 0, 0, 0, false
	}
	return start, end, best, true
}

// windowScore greedily pairs each sentence token with its most similar unused
// window word. The score averages coverage and similarity, and windows more
// than twice as long or less than half as long as the sentence lose 20%.
func windowScore(tokens, window []string) float64 {
	if len(tokens) == 0 || len(window) == 0 {
		return 0
	}

	used := make([]bool, len(window))
	matched, similarity := 0, 0.0
	for _, token := range tokens {
		bestSim, bestIdx := 0.0, -1
		for i, w := range window {
			if used[i] {
				continue
			}
			if sim := Similarity(token, w); sim > bestSim {
				bestSim, bestIdx = sim, i
			}
		}
		if bestIdx >= 0 && bestSim > minWordSimilarity {
			used[bestIdx] = true
			similarity += bestSim
			matched++
		}
	}

	n := float64(len(tokens))
	penalty := 1.0
	if ratio := float64(len(window)) / n; ratio < 0.5 || ratio > 2.0 {
		penalty = 0.8
	}
	return (float64(matched)/n*0.5 + similarity/n*0.5) * penalty
}

// splitCharacters breaks multi-character words into one word per character,
// sharing the word's span evenly
func splitCharacters(words []Word, lang string) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		chars := segment.Tokenize(w.Text, lang)
		if len(chars) <= 1 {
			out = append(out, w)
			continue
		}
		span := w.EndMs - w.StartMs
		for i, c := range chars {
			out = append(out, Word{
				Text:    c,
				StartMs: w.StartMs + span*i/len(chars),
				EndMs:   w.StartMs + span*(i+1)/len(chars),
			})
		}
	}
	return out
}

// Translations pairs translation sentences with foreign sentences: one to one
// when the counts match, otherwise each foreign sentence takes the translation
// at the same relative position. With no translations every entry is empty.
func Translations(foreign, translations []string) []string {
	mapped := make([]string, len(foreign))
	if len(translations) == 0 {
		return mapped
	}
	if len(foreign) == len(translations) {
		copy(mapped, translations)
		return mapped
	}
	for i := range foreign {
		idx := i * len(translations) / len(foreign)
		mapped[i] = translations[min(idx, len(translations)-1)]
	}
	return mapped
}
