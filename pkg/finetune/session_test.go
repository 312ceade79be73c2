package finetune

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int) *int { return &v }

// fixture builds n one-second segments s0..s(n-1)
func fixture(n int) []Segment {
	segments := make([]Segment, n)
	for i := range segments {
		segments[i] = Segment{
			ID:              fmt.Sprintf("s%d", i),
			Idx:             i,
			ForeignText:     fmt.Sprintf("F%d", i),
			TranslationText: fmt.Sprintf("T%d", i),
			StartMs:         ptr(i * 1000),
			EndMs:           ptr((i + 1) * 1000),
		}
	}
	return segments
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("new%d", n)
	})
}

func assertContiguous(t *testing.T, segments []Segment) {
	t.Helper()
	for i, seg := range segments {
		assert.Equal(t, i, seg.Idx, "segment %s", seg.ID)
		if i > 0 && seg.StartMs != nil && segments[i-1].StartMs != nil {
			assert.LessOrEqual(t, *segments[i-1].StartMs, *seg.StartMs)
		}
	}
}

func TestMergeThreeAdjacent(t *testing.T) {
	session := NewSession(fixture(6), sequentialIDs())

	merged, err := session.Merge([]string{"s4", "s2", "s3"})
	require.NoError(t, err)

	segments := merged.Segments()
	require.Len(t, segments, 4)
	assertContiguous(t, segments)

	m := segments[2]
	assert.Equal(t, "new1", m.ID)
	assert.True(t, m.IsNew)
	assert.Equal(t, 2000, *m.StartMs)
	assert.Equal(t, 5000, *m.EndMs)
	assert.Equal(t, "F2 F3 F4", m.ForeignText)
	assert.Equal(t, "T2 T3 T4", m.TranslationText)
	assert.Nil(t, m.Confidence)
	assert.Equal(t, []string{"s2", "s3", "s4"}, m.OriginalIDs)

	assert.Equal(t, "s5", segments[3].ID)
	assert.Equal(t, 6, session.Len(), "receiver must be unchanged")
}

func TestMergeSkipsEmptyTexts(t *testing.T) {
	segments := fixture(2)
	segments[0].ForeignText, segments[0].TranslationText = "One.", ""
	segments[1].ForeignText, segments[1].TranslationText = " Two. ", "二。"

	merged, err := NewSession(segments, sequentialIDs()).Merge([]string{"s0", "s1"})
	require.NoError(t, err)

	out := merged.Segments()
	require.Len(t, out, 1)
	assert.Equal(t, "One. Two.", out[0].ForeignText)
	assert.Equal(t, "二。", out[0].TranslationText)
}

func TestMergeRejections(t *testing.T) {
	untimed := fixture(3)
	untimed[1].StartMs = nil

	tests := []struct {
		name     string
		segments []Segment
		ids      []string
		wantErr  error
	}{
		{name: "non contiguous", segments: fixture(4), ids: []string{"s1", "s3"}, wantErr: ErrNotAdjacent},
		{name: "single", segments: fixture(4), ids: []string{"s1"}, wantErr: ErrSelectionSize},
		{name: "empty", segments: fixture(4), ids: nil, wantErr: ErrSelectionSize},
		{name: "unknown", segments: fixture(4), ids: []string{"s1", "zz"}, wantErr: ErrUnknownSegment},
		{name: "duplicate", segments: fixture(4), ids: []string{"s1", "s1"}, wantErr: ErrDuplicateSegment},
		{name: "missing timing", segments: untimed, ids: []string{"s0", "s1"}, wantErr: ErrMissingTiming},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(tt.segments)
			next, err := session.Merge(tt.ids)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, next)
			assert.False(t, session.Changed())
		})
	}
}

func TestSplitCoversInterval(t *testing.T) {
	segments := []Segment{
		{ID: "a", Idx: 0, ForeignText: "A", StartMs: ptr(0), EndMs: ptr(1000)},
		{ID: "b", Idx: 1, ForeignText: "B C", StartMs: ptr(1000), EndMs: ptr(4000)},
		{ID: "c", Idx: 2, ForeignText: "D", StartMs: ptr(4000), EndMs: ptr(5000)},
	}
	session := NewSession(segments, sequentialIDs())

	split, err := session.Split("b", 2500, Texts{ForeignText: "B", TranslationText: "b"}, Texts{ForeignText: " C "})
	require.NoError(t, err)

	out := split.Segments()
	require.Len(t, out, 4)
	assertContiguous(t, out)

	assert.Equal(t, "a", out[0].ID)
	assert.Equal(t, "new1", out[1].ID)
	assert.Equal(t, 1000, *out[1].StartMs)
	assert.Equal(t, 2500, *out[1].EndMs)
	assert.Equal(t, "B", out[1].ForeignText)
	assert.Equal(t, "b", out[1].TranslationText)
	assert.Equal(t, "new2", out[2].ID)
	assert.Equal(t, 2500, *out[2].StartMs)
	assert.Equal(t, 4000, *out[2].EndMs)
	assert.Equal(t, "C", out[2].ForeignText)
	assert.Equal(t, "c", out[3].ID)
	assert.Equal(t, []string{"b"}, out[1].OriginalIDs)
}

func TestSplitRejections(t *testing.T) {
	segments := []Segment{{ID: "x", Idx: 0, ForeignText: "X", StartMs: ptr(1000), EndMs: ptr(4000)}}
	texts := Texts{ForeignText: "half"}

	tests := []struct {
		name    string
		id      string
		at      int
		first   Texts
		wantErr error
	}{
		{name: "at start", id: "x", at: 1000, first: texts, wantErr: ErrSplitOutside},
		{name: "at end", id: "x", at: 4000, first: texts, wantErr: ErrSplitOutside},
		{name: "before start", id: "x", at: 500, first: texts, wantErr: ErrSplitOutside},
		{name: "after end", id: "x", at: 9000, first: texts, wantErr: ErrSplitOutside},
		{name: "unknown", id: "y", at: 2000, first: texts, wantErr: ErrUnknownSegment},
		{name: "missing text", id: "x", at: 2000, first: Texts{}, wantErr: ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(segments)
			next, err := session.Split(tt.id, tt.at, tt.first, texts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, next)
			assert.Equal(t, segments[0].ID, session.Segments()[0].ID)
			assert.False(t, session.Changed())
		})
	}
}

func TestRetime(t *testing.T) {
	session := NewSession(fixture(3))

	retimed, err := session.Retime("s1", 1100, 1900)
	require.NoError(t, err)
	assert.True(t, retimed.Changed())
	assert.Equal(t, 1100, *retimed.Segments()[1].StartMs)
	assert.Equal(t, 1000, *session.Segments()[1].StartMs)

	// Moving a segment past its neighbours reorders idx
	moved, err := session.Retime("s0", 2500, 2800)
	require.NoError(t, err)
	ids := []string{}
	for _, seg := range moved.Segments() {
		ids = append(ids, seg.ID)
	}
	assert.Equal(t, []string{"s1", "s2", "s0"}, ids)

	_, err = session.Retime("s1", 500, 500)
	assert.ErrorIs(t, err, ErrInvalidTiming)
	_, err = session.Retime("nope", 0, 10)
	assert.ErrorIs(t, err, ErrUnknownSegment)
}

func TestChanged(t *testing.T) {
	session := NewSession(fixture(3))
	assert.False(t, session.Changed())

	same, err := session.Retime("s0", 0, 1000)
	require.NoError(t, err)
	assert.False(t, same.Changed(), "retime to identical bounds is not a change")

	merged, err := session.Merge([]string{"s0", "s1"})
	require.NoError(t, err)
	assert.True(t, merged.Changed())
}

func TestReindexPlacesUntimedLast(t *testing.T) {
	segments := []Segment{
		{ID: "late", Idx: 0, StartMs: ptr(3000)},
		{ID: "none", Idx: 1},
		{ID: "early", Idx: 2, StartMs: ptr(100)},
		{ID: "tie", Idx: 3, StartMs: ptr(100)},
	}
	Reindex(segments)

	ids := []string{}
	for i, seg := range segments {
		ids = append(ids, seg.ID)
		assert.Equal(t, i, seg.Idx)
	}
	assert.Equal(t, []string{"early", "tie", "late", "none"}, ids)
}

func TestMergeAfterSplitKeepsProvenance(t *testing.T) {
	session := NewSession(fixture(2), sequentialIDs())
	split, err := session.Split("s0", 500, Texts{ForeignText: "a"}, Texts{ForeignText: "b"})
	require.NoError(t, err)

	merged, err := split.Merge([]string{"new2", "s1"})
	require.NoError(t, err)

	out := merged.Segments()
	require.Len(t, out, 2)
	assert.Equal(t, []string{"s0", "s1"}, out[1].OriginalIDs)

	diff := merged.Diff()
	assert.ElementsMatch(t, []string{"s0", "s1"}, diff.Deletes)
	require.Len(t, diff.Creates, 2)
	assert.NoError(t, diff.Validate())
}

func TestOriginalIsUnchangedByEdits(t *testing.T) {
	session := NewSession(fixture(3), sequentialIDs())

	merged, err := session.Merge([]string{"s1", "s2"})
	require.NoError(t, err)
	split, err := merged.Split("s0", 400, Texts{ForeignText: "a"}, Texts{ForeignText: "b"})
	require.NoError(t, err)
	assert.Equal(t, 3, split.Len())
	assert.Equal(t, 2, merged.Len())

	original := split.Original()
	require.Len(t, original, 3)
	for i, seg := range original {
		assert.Equal(t, fmt.Sprintf("s%d", i), seg.ID)
		assert.Equal(t, i*1000, *seg.StartMs)
	}

	original[0].ForeignText = "mutated"
	*original[0].StartMs = 99
	again := split.Original()
	assert.Equal(t, "F0", again[0].ForeignText)
	assert.Equal(t, 0, *again[0].StartMs, "Original returns a deep copy")
}
