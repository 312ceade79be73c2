package recordings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/testutil"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

func TestRecordings(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewService(NewRepository(db))
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, db, models.LessonStatusReady, "/a.wav")
	sentences := testutil.SeedSentences(t, db, lesson.ID, 2)

	tests := []struct {
		name       string
		sentenceID string
		input      CreateInput
		wantCode   apperrors.ErrorCode
	}{
		{name: "missing path", sentenceID: sentences[0].ID, input: CreateInput{}, wantCode: apperrors.ErrCodeMissingField},
		{name: "negative duration", sentenceID: sentences[0].ID, input: CreateInput{AudioPath: "/r.webm", DurationMs: testutil.Ptr(-1)}, wantCode: apperrors.ErrCodeValidation},
		{name: "unknown sentence", sentenceID: "nope", input: CreateInput{AudioPath: "/r.webm"}, wantCode: apperrors.ErrCodeNotFound},
		{name: "valid", sentenceID: sentences[0].ID, input: CreateInput{AudioPath: "/r1.webm", DurationMs: testutil.Ptr(1200)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := svc.Create(ctx, tt.sentenceID, tt.input)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, apperrors.GetCode(err))
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, rec.ID)
		})
	}

	list, err := svc.List(ctx, sentences[0].ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "/r1.webm", list[0].AudioPath)

	empty, err := svc.List(ctx, sentences[1].ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.List(ctx, "nope")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))

	got, err := svc.Get(ctx, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, sentences[0].ID, got.SentenceID)

	require.NoError(t, svc.Delete(ctx, list[0].ID))
	_, err = svc.Get(ctx, list[0].ID)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(svc.Delete(ctx, list[0].ID)))
}

type fakeProber struct {
	durations map[string]float64
	calls     []string
}

func (p *fakeProber) Probe(ctx context.Context, path string) (*ffmpeg.AudioMetadata, error) {
	p.calls = append(p.calls, path)
	seconds, ok := p.durations[path]
	if !ok {
		return nil, errors.New("no such file")
	}
	return &ffmpeg.AudioMetadata{Duration: seconds}, nil
}

func TestCreateProbesMissingDuration(t *testing.T) {
	db := testutil.NewDB(t)
	prober := &fakeProber{durations: map[string]float64{"/data/take.webm": 2.345}}
	svc := NewService(NewRepository(db), WithProber(prober))
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, db, models.LessonStatusReady, "/a.wav")
	sentence := testutil.SeedSentences(t, db, lesson.ID, 1)[0]

	probed, err := svc.Create(ctx, sentence.ID, CreateInput{AudioPath: "/data/take.webm"})
	require.NoError(t, err)
	require.NotNil(t, probed.DurationMs)
	assert.Equal(t, 2345, *probed.DurationMs)

	explicit, err := svc.Create(ctx, sentence.ID, CreateInput{AudioPath: "/data/take.webm", DurationMs: testutil.Ptr(900)})
	require.NoError(t, err)
	assert.Equal(t, 900, *explicit.DurationMs)

	unreadable, err := svc.Create(ctx, sentence.ID, CreateInput{AudioPath: "/data/broken.webm"})
	require.NoError(t, err)
	assert.Nil(t, unreadable.DurationMs)

	remote, err := svc.Create(ctx, sentence.ID, CreateInput{AudioPath: "https://cdn.example.com/take.webm"})
	require.NoError(t, err)
	assert.Nil(t, remote.DurationMs)

	assert.Equal(t, []string{"/data/take.webm", "/data/broken.webm"}, prober.calls)
}
