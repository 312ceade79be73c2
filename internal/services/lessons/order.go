package lessons

import (
	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/finetune"
)

// orderSentences sorts sentences by ascending start with the same rule the
// fine-tune session uses and rewrites idx to 0..n-1. It returns the ids whose
// idx changed.
func orderSentences(sentences []models.Sentence) []string {
	segments := make([]finetune.Segment, len(sentences))
	byID := make(map[string]models.Sentence, len(sentences))
	for i, s := range sentences {
		segments[i] = finetune.Segment{ID: s.ID, Idx: s.Idx, StartMs: s.StartMs, EndMs: s.EndMs}
		byID[s.ID] = s
	}

	finetune.Reindex(segments)

	var changed []string
	for i, seg := range segments {
		s := byID[seg.ID]
		if s.Idx != seg.Idx {
			changed = append(changed, s.ID)
		}
		s.Idx = seg.Idx
		sentences[i] = s
	}
	return changed
}
