package recordings

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/download"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

type service struct {
	repo   Repository
	prober Prober
}

// Option configures the recording service
type Option func(*service)

// WithProber fills in durationMs for local recordings created without one
func WithProber(p Prober) Option {
	return func(s *service) {
		s.prober = p
	}
}

// NewService creates the recording service
func NewService(repo Repository, opts ...Option) Service {
	s := &service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Create(ctx context.Context, sentenceID string, input CreateInput) (*models.UserRecording, error) {
	if strings.TrimSpace(input.AudioPath) == "" {
		return nil, apperrors.MissingFieldError("audioPath")
	}
	if input.DurationMs != nil && *input.DurationMs < 0 {
		return nil, apperrors.ValidationError("durationMs", "must not be negative")
	}
	if err := s.checkSentence(ctx, sentenceID); err != nil {
		return nil, err
	}

	recording := &models.UserRecording{
		SentenceID: sentenceID,
		AudioPath:  input.AudioPath,
		DurationMs: input.DurationMs,
	}
	if recording.DurationMs == nil {
		recording.DurationMs = s.probeDuration(ctx, input.AudioPath)
	}
	if err := s.repo.Create(ctx, recording); err != nil {
		return nil, apperrors.DatabaseError("create recording", err)
	}

	log.Debugf("Stored recording %s for sentence %s", recording.ID, sentenceID)
	return recording, nil
}

func (s *service) List(ctx context.Context, sentenceID string) ([]models.UserRecording, error) {
	if err := s.checkSentence(ctx, sentenceID); err != nil {
		return nil, err
	}
	recordings, err := s.repo.ListBySentence(ctx, sentenceID)
	if err != nil {
		return nil, apperrors.DatabaseError("list recordings", err)
	}
	return recordings, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.UserRecording, error) {
	recording, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordingNotFound) {
			return nil, apperrors.NotFound("recording", id).WithCause(err)
		}
		return nil, apperrors.DatabaseError("get recording", err)
	}
	return recording, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrRecordingNotFound) {
			return apperrors.NotFound("recording", id).WithCause(err)
		}
		return apperrors.DatabaseError("delete recording", err)
	}
	return nil
}

// probeDuration is best effort; a recording without a duration is still valid
func (s *service) probeDuration(ctx context.Context, path string) *int {
	if s.prober == nil || download.IsRemote(path) {
		return nil
	}
	metadata, err := s.prober.Probe(ctx, path)
	if err != nil {
		log.Debugf("Could not probe recording %s: %v", path, err)
		return nil
	}
	durationMs := metadata.DurationMs()
	return &durationMs
}

func (s *service) checkSentence(ctx context.Context, sentenceID string) error {
	if err := s.repo.SentenceExists(ctx, sentenceID); err != nil {
		if errors.Is(err, ErrSentenceNotFound) {
			return apperrors.NotFound("sentence", sentenceID).WithCause(err)
		}
		return apperrors.DatabaseError("get sentence", err)
	}
	return nil
}
