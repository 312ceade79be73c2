package models

import "fmt"

// LessonStatus is the lesson-level pipeline state
type LessonStatus string

const (
	LessonStatusUploaded   LessonStatus = "UPLOADED"
	LessonStatusProcessing LessonStatus = "PROCESSING"
	LessonStatusReady      LessonStatus = "READY"
	LessonStatusFailed     LessonStatus = "FAILED"
)

// Fixed user-visible messages
const (
	CancelledByUserMessage  = "Cancelled by user"
	LessonDeletedMessage    = "Lesson deleted"
	GenericFailureMessage   = "Processing failed"
	JobTimedOutMessage      = "Job timed out"
	DefaultForeignLang      = "en"
	DefaultTranslationLang  = "zh"
	DefaultWhisperModel     = "base"
	CanonicalAudioFilename  = "original.wav"
	NormalizedAudioFilename = "normalized.wav"
	ClipsDirName            = "clips"
)

// Valid reports whether s is one of the four lesson states
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonStatusUploaded, LessonStatusProcessing, LessonStatusReady, LessonStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether the state machine allows from -> to
func CanTransition(from, to LessonStatus) bool {
	switch from {
	case LessonStatusUploaded:
		return to == LessonStatusProcessing
	case LessonStatusProcessing:
		// UPLOADED is reachable only through cancellation of a lesson without audio
		return to == LessonStatusReady || to == LessonStatusFailed || to == LessonStatusUploaded
	case LessonStatusReady, LessonStatusFailed:
		return to == LessonStatusProcessing
	}
	return false
}

// TransitionError describes a rejected state change
type TransitionError struct {
	LessonID string
	From     LessonStatus
	To       LessonStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("lesson %s cannot move from %s to %s", e.LessonID, e.From, e.To)
}

// TransitionTo moves the lesson to the target status or returns a *TransitionError
func (l *Lesson) TransitionTo(to LessonStatus) error {
	if !CanTransition(l.Status, to) {
		return &TransitionError{LessonID: l.ID, From: l.Status, To: to}
	}
	l.Status = to
	return nil
}

// HasAudio reports whether source audio has been attached or synthesized
func (l *Lesson) HasAudio() bool {
	return l.AudioOriginalPath != nil && *l.AudioOriginalPath != ""
}

// IsProcessing reports whether a pipeline job is outstanding
func (l *Lesson) IsProcessing() bool {
	return l.Status == LessonStatusProcessing
}

// MarkFailed sets FAILED with a non-empty message
func (l *Lesson) MarkFailed(message string) error {
	if message == "" {
		message = GenericFailureMessage
	}
	if err := l.TransitionTo(LessonStatusFailed); err != nil {
		return err
	}
	l.ErrorMessage = &message
	return nil
}

// TableName specifies the table name for GORM
func (Lesson) TableName() string {
	return "lessons"
}

// TableName specifies the table name for GORM
func (Sentence) TableName() string {
	return "sentences"
}

// Duration returns end minus start when both timings are known
func (s Sentence) Duration() (int, bool) {
	if s.StartMs == nil || s.EndMs == nil {
		return 0, false
	}
	return *s.EndMs - *s.StartMs, true
}
