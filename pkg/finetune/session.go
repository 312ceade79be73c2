// Package finetune models an edit session over a lesson's sentence timeline.
//
// A Session is immutable: Retime, Merge and Split each return a new Session
// and leave the receiver untouched, so callers can keep an undo history by
// holding on to earlier values. Diff turns a session into the SaveRequest the
// server applies.
package finetune

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnknownSegment   = errors.New("segment not in session")
	ErrSelectionSize    = errors.New("wrong number of segments selected")
	ErrNotAdjacent      = errors.New("selected segments are not adjacent")
	ErrMissingTiming    = errors.New("segment has no timing")
	ErrInvalidTiming    = errors.New("start must be before end and not negative")
	ErrSplitOutside     = errors.New("split point must lie strictly inside the segment")
	ErrEmptyText        = errors.New("foreign text is required")
	ErrDuplicateSegment = errors.New("segment selected more than once")
)

// Segment is one sentence as seen by the editor
type Segment struct {
	ID              string   `json:"id"`
	Idx             int      `json:"idx"`
	ForeignText     string   `json:"foreignText"`
	TranslationText string   `json:"translationText"`
	StartMs         *int     `json:"startMs"`
	EndMs           *int     `json:"endMs"`
	Confidence      *float64 `json:"confidence"`
	IsNew           bool     `json:"isNew,omitempty"`
	// OriginalIDs lists the loaded segments this one was built from
	OriginalIDs []string `json:"originalIds,omitempty"`
}

// Timed reports whether both boundaries are known
func (s Segment) Timed() bool {
	return s.StartMs != nil && s.EndMs != nil
}

// Texts are the user-supplied texts for one half of a split
type Texts struct {
	ForeignText     string `json:"foreignText"`
	TranslationText string `json:"translationText"`
}

// Option configures a Session
type Option func(*Session)

// WithIDGenerator replaces the UUID generator used for new segments
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		s.newID = fn
	}
}

// Session is an immutable snapshot of an edit in progress
type Session struct {
	original []Segment
	working  []Segment
	newID    func() string
}

// NewSession starts an edit over the loaded sentences
func NewSession(loaded []Segment, opts ...Option) *Session {
	original := cloneSegments(loaded)
	sort.SliceStable(original, func(i, j int) bool { return original[i].Idx < original[j].Idx })

	s := &Session{
		original: original,
		working:  cloneSegments(original),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Segments returns a copy of the working set in idx order
func (s *Session) Segments() []Segment {
	return cloneSegments(s.working)
}

// Original returns a copy of the segments the session was started with
func (s *Session) Original() []Segment {
	return cloneSegments(s.original)
}

// Len returns the number of working segments
func (s *Session) Len() int {
	return len(s.working)
}

// Retime moves the boundaries of one segment
func (s *Session) Retime(id string, startMs, endMs int) (*Session, error) {
	if startMs < 0 || startMs >= endMs {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidTiming, startMs, endMs)
	}
	pos := s.indexOf(id)
	if pos < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSegment, id)
	}

	next := s.derive(cloneSegments(s.working))
	next.working[pos].StartMs = intPtr(startMs)
	next.working[pos].EndMs = intPtr(endMs)
	next.reindex()
	return next, nil
}

// Merge joins two or more idx-adjacent segments into one new segment.
// Texts are trimmed and joined with a space in idx order; empty texts are
// skipped, so a blank translation adds no stray separator.
func (s *Session) Merge(ids []string) (*Session, error) {
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: merge needs at least 2, got %d", ErrSelectionSize, len(ids))
	}

	positions := make([]int, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSegment, id)
		}
		seen[id] = true
		pos := s.indexOf(id)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSegment, id)
		}
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		return s.working[positions[i]].Idx < s.working[positions[j]].Idx
	})

	for i := 1; i < len(positions); i++ {
		if s.working[positions[i]].Idx != s.working[positions[i-1]].Idx+1 {
			return nil, fmt.Errorf("%w: idx %d and %d", ErrNotAdjacent,
				s.working[positions[i-1]].Idx, s.working[positions[i]].Idx)
		}
	}

	selected := make([]Segment, 0, len(positions))
	for _, pos := range positions {
		seg := s.working[pos]
		if !seg.Timed() {
			return nil, fmt.Errorf("%w: %s", ErrMissingTiming, seg.ID)
		}
		selected = append(selected, seg)
	}

	merged := Segment{
		ID:    s.newID(),
		Idx:   selected[0].Idx,
		IsNew: true,
	}
	foreign := make([]string, 0, len(selected))
	translation := make([]string, 0, len(selected))
	start, end := *selected[0].StartMs, *selected[0].EndMs
	for _, seg := range selected {
		foreign = appendText(foreign, seg.ForeignText)
		translation = appendText(translation, seg.TranslationText)
		start = min(start, *seg.StartMs)
		end = max(end, *seg.EndMs)
		merged.OriginalIDs = append(merged.OriginalIDs, provenance(seg)...)
	}
	merged.ForeignText = strings.Join(foreign, " ")
	merged.TranslationText = strings.Join(translation, " ")
	merged.StartMs = intPtr(start)
	merged.EndMs = intPtr(end)

	working := make([]Segment, 0, len(s.working)-len(selected)+1)
	for _, seg := range s.working {
		if !seen[seg.ID] {
			working = append(working, cloneSegment(seg))
		}
	}
	working = append(working, merged)

	next := s.derive(working)
	next.reindex()
	return next, nil
}

// Split cuts one segment at atMs into [start, atMs) and [atMs, end)
func (s *Session) Split(id string, atMs int, first, second Texts) (*Session, error) {
	pos := s.indexOf(id)
	if pos < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSegment, id)
	}
	seg := s.working[pos]
	if !seg.Timed() {
		return nil, fmt.Errorf("%w: %s", ErrMissingTiming, id)
	}
	if atMs <= *seg.StartMs || atMs >= *seg.EndMs {
		return nil, fmt.Errorf("%w: %d not in (%d, %d)", ErrSplitOutside, atMs, *seg.StartMs, *seg.EndMs)
	}
	if strings.TrimSpace(first.ForeignText) == "" || strings.TrimSpace(second.ForeignText) == "" {
		return nil, ErrEmptyText
	}

	origin := provenance(seg)
	left := Segment{
		ID:              s.newID(),
		Idx:             seg.Idx,
		ForeignText:     strings.TrimSpace(first.ForeignText),
		TranslationText: strings.TrimSpace(first.TranslationText),
		StartMs:         intPtr(*seg.StartMs),
		EndMs:           intPtr(atMs),
		IsNew:           true,
		OriginalIDs:     append([]string(nil), origin...),
	}
	right := Segment{
		ID:              s.newID(),
		Idx:             seg.Idx + 1,
		ForeignText:     strings.TrimSpace(second.ForeignText),
		TranslationText: strings.TrimSpace(second.TranslationText),
		StartMs:         intPtr(atMs),
		EndMs:           intPtr(*seg.EndMs),
		IsNew:           true,
		OriginalIDs:     append([]string(nil), origin...),
	}

	working := make([]Segment, 0, len(s.working)+1)
	for i, other := range s.working {
		if i == pos {
			working = append(working, left, right)
			continue
		}
		working = append(working, cloneSegment(other))
	}

	next := s.derive(working)
	next.reindex()
	return next, nil
}

// Changed reports whether saving the session would change anything
func (s *Session) Changed() bool {
	if len(s.working) != len(s.original) {
		return true
	}
	originals := make(map[string]Segment, len(s.original))
	for _, seg := range s.original {
		originals[seg.ID] = seg
	}
	for _, seg := range s.working {
		if seg.IsNew {
			return true
		}
		orig, ok := originals[seg.ID]
		if !ok || !sameContent(orig, seg) {
			return true
		}
	}
	return false
}

func (s *Session) derive(working []Segment) *Session {
	return &Session{
		original: s.original,
		working:  working,
		newID:    s.newID,
	}
}

func (s *Session) indexOf(id string) int {
	for i, seg := range s.working {
		if seg.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) reindex() {
	Reindex(s.working)
}

// Reindex sorts segments by ascending start (untimed last, ties by current idx)
// and reassigns idx 0..n-1 in place
func Reindex(segments []Segment) {
	sort.SliceStable(segments, func(i, j int) bool {
		a, b := segments[i], segments[j]
		switch {
		case a.StartMs == nil && b.StartMs == nil:
			return a.Idx < b.Idx
		case a.StartMs == nil:
			return false
		case b.StartMs == nil:
			return true
		case *a.StartMs != *b.StartMs:
			return *a.StartMs < *b.StartMs
		}
		return a.Idx < b.Idx
	})
	for i := range segments {
		segments[i].Idx = i
	}
}

func sameContent(a, b Segment) bool {
	return a.ForeignText == b.ForeignText &&
		a.TranslationText == b.TranslationText &&
		equalInt(a.StartMs, b.StartMs) &&
		equalInt(a.EndMs, b.EndMs)
}

func provenance(seg Segment) []string {
	if seg.IsNew {
		return seg.OriginalIDs
	}
	return []string{seg.ID}
}

func appendText(parts []string, text string) []string {
	if text = strings.TrimSpace(text); text != "" {
		return append(parts, text)
	}
	return parts
}

func equalInt(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func intPtr(v int) *int {
	return &v
}

func cloneSegment(seg Segment) Segment {
	out := seg
	if seg.StartMs != nil {
		out.StartMs = intPtr(*seg.StartMs)
	}
	if seg.EndMs != nil {
		out.EndMs = intPtr(*seg.EndMs)
	}
	if seg.Confidence != nil {
		c := *seg.Confidence
		out.Confidence = &c
	}
	if seg.OriginalIDs != nil {
		out.OriginalIDs = append([]string(nil), seg.OriginalIDs...)
	}
	return out
}

func cloneSegments(in []Segment) []Segment {
	out := make([]Segment, len(in))
	for i, seg := range in {
		out[i] = cloneSegment(seg)
	}
	return out
}
