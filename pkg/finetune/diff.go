package finetune

import (
	"fmt"
	"strings"
)

// Timing is the full boundary set for one surviving segment
type Timing struct {
	ID      string `json:"id"`
	StartMs int    `json:"startMs"`
	EndMs   int    `json:"endMs"`
}

// Create is a segment introduced by a merge or split
type Create struct {
	ID              string `json:"id"`
	Idx             int    `json:"idx"`
	ForeignText     string `json:"foreignText"`
	TranslationText string `json:"translationText"`
	StartMs         int    `json:"startMs"`
	EndMs           int    `json:"endMs"`
}

// SaveRequest is the body of a fine-tune save
type SaveRequest struct {
	Timings []Timing `json:"timings"`
	Deletes []string `json:"deletes"`
	Creates []Create `json:"creates"`
}

// RequestError is a shape error in a SaveRequest
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func requestError(field, format string, args ...interface{}) *RequestError {
	return &RequestError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Empty reports whether the request carries no changes at all
func (r SaveRequest) Empty() bool {
	return len(r.Timings) == 0 && len(r.Deletes) == 0 && len(r.Creates) == 0
}

// Validate checks the request shape without looking at stored state
func (r SaveRequest) Validate() error {
	if r.Empty() {
		return requestError("request", "no changes")
	}

	timingIDs := make(map[string]bool, len(r.Timings))
	for i, t := range r.Timings {
		field := fmt.Sprintf("timings[%d]", i)
		if strings.TrimSpace(t.ID) == "" {
			return requestError(field+".id", "required")
		}
		if timingIDs[t.ID] {
			return requestError(field+".id", "duplicate id %s", t.ID)
		}
		timingIDs[t.ID] = true
		if t.StartMs < 0 || t.StartMs >= t.EndMs {
			return requestError(field, "start %d must be >= 0 and before end %d", t.StartMs, t.EndMs)
		}
	}

	recreated := make(map[string]bool, len(r.Creates))
	for _, c := range r.Creates {
		recreated[c.ID] = true
	}

	deleted := make(map[string]bool, len(r.Deletes))
	for i, id := range r.Deletes {
		field := fmt.Sprintf("deletes[%d]", i)
		if strings.TrimSpace(id) == "" {
			return requestError(field, "required")
		}
		if deleted[id] {
			return requestError(field, "duplicate id %s", id)
		}
		deleted[id] = true
		if timingIDs[id] && !recreated[id] {
			return requestError(field, "id %s is both deleted and retimed", id)
		}
	}

	created := make(map[string]bool, len(r.Creates))
	for i, c := range r.Creates {
		field := fmt.Sprintf("creates[%d]", i)
		if strings.TrimSpace(c.ID) == "" {
			return requestError(field+".id", "required")
		}
		if created[c.ID] {
			return requestError(field+".id", "duplicate id %s", c.ID)
		}
		created[c.ID] = true
		if strings.TrimSpace(c.ForeignText) == "" {
			return requestError(field+".foreignText", "required")
		}
		if c.Idx < 0 {
			return requestError(field+".idx", "must not be negative")
		}
		if c.StartMs < 0 || c.StartMs >= c.EndMs {
			return requestError(field, "start %d must be >= 0 and before end %d", c.StartMs, c.EndMs)
		}
	}

	return nil
}

// Diff compares a working set against the loaded one.
// Timings cover every timed working segment, Deletes the loaded ids that are
// gone, Creates every new segment.
func Diff(original, working []Segment) SaveRequest {
	req := SaveRequest{
		Timings: []Timing{},
		Deletes: []string{},
		Creates: []Create{},
	}

	present := make(map[string]bool, len(working))
	for _, seg := range working {
		present[seg.ID] = true
		if seg.Timed() {
			req.Timings = append(req.Timings, Timing{ID: seg.ID, StartMs: *seg.StartMs, EndMs: *seg.EndMs})
		}
		if seg.IsNew && seg.Timed() {
			req.Creates = append(req.Creates, Create{
				ID:              seg.ID,
				Idx:             seg.Idx,
				ForeignText:     seg.ForeignText,
				TranslationText: seg.TranslationText,
				StartMs:         *seg.StartMs,
				EndMs:           *seg.EndMs,
			})
		}
	}

	for _, seg := range original {
		if !present[seg.ID] {
			req.Deletes = append(req.Deletes, seg.ID)
		}
	}
	return req
}

// Diff returns the save request for the session
func (s *Session) Diff() SaveRequest {
	return Diff(s.original, s.working)
}
