package waveforms

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/services/cache"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

type countingGenerator struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (g *countingGenerator) GenerateWaveform(ctx context.Context, input string, resolution int) (*ffmpeg.WaveformData, error) {
	g.calls.Add(1)
	if g.delay > 0 {
		time.Sleep(g.delay)
	}
	if g.err != nil {
		return nil, g.err
	}
	peaks := make([]float32, resolution)
	for i := range peaks {
		peaks[i] = float32(i) / float32(resolution)
	}
	return &ffmpeg.WaveformData{Peaks: peaks, Duration: 3.5, Resolution: resolution, SampleRate: 16000}, nil
}

func newTestService(t *testing.T, next Generator) (*Service, *cache.MemoryCache) {
	t.Helper()
	mc := cache.NewMemoryCache(1)
	t.Cleanup(mc.Stop)
	return NewService(next, mc, time.Minute), mc
}

func writeAudio(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "original.mp3")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGenerateWaveformCaches(t *testing.T) {
	ctx := context.Background()
	generator := &countingGenerator{}
	service, mc := newTestService(t, generator)
	audio := writeAudio(t, "mp3")

	first, err := service.GenerateWaveform(ctx, audio, 4)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0.25, 0.5, 0.75}, first.Peaks)

	second, err := service.GenerateWaveform(ctx, audio, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), generator.calls.Load())
	assert.Equal(t, int64(1), mc.Stats().Hits)

	// a different resolution is a different entry
	_, err = service.GenerateWaveform(ctx, audio, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(2), generator.calls.Load())
}

func TestGenerateWaveformSeesRewrittenFile(t *testing.T) {
	ctx := context.Background()
	generator := &countingGenerator{}
	service, _ := newTestService(t, generator)
	audio := writeAudio(t, "mp3")

	_, err := service.GenerateWaveform(ctx, audio, 4)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(audio, []byte("a longer replacement"), 0644))
	_, err = service.GenerateWaveform(ctx, audio, 4)
	require.NoError(t, err)
	assert.Equal(t, int32(2), generator.calls.Load())
}

func TestGenerateWaveformErrors(t *testing.T) {
	ctx := context.Background()
	failing := &countingGenerator{err: errors.New("ffmpeg died")}
	service, mc := newTestService(t, failing)
	audio := writeAudio(t, "mp3")

	tests := []struct {
		name       string
		input      string
		resolution int
		wantErr    error
	}{
		{name: "empty input", input: " ", resolution: 10, wantErr: ErrInvalidInput},
		{name: "zero resolution", input: audio, resolution: 0, wantErr: ErrInvalidResolution},
		{name: "negative resolution", input: audio, resolution: -5, wantErr: ErrInvalidResolution},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.GenerateWaveform(ctx, tt.input, tt.resolution)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := service.GenerateWaveform(ctx, audio, 10)
	assert.EqualError(t, err, "ffmpeg died")
	assert.Equal(t, 0, mc.Stats().Entries)
}

func TestGenerateWaveformSharesConcurrentRuns(t *testing.T) {
	ctx := context.Background()
	generator := &countingGenerator{delay: 50 * time.Millisecond}
	service, _ := newTestService(t, generator)
	audio := writeAudio(t, "mp3")

	var wg sync.WaitGroup
	results := make([]*ffmpeg.WaveformData, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := service.GenerateWaveform(ctx, audio, 8)
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), generator.calls.Load())
	for _, data := range results {
		require.NotNil(t, data)
		assert.Len(t, data.Peaks, 8)
	}
	// callers get independent copies
	results[0].Peaks[0] = 99
	assert.NotEqual(t, float32(99), results[1].Peaks[0])
}

func TestGenerateWaveformDropsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	generator := &countingGenerator{}
	service, mc := newTestService(t, generator)
	audio := writeAudio(t, "mp3")

	require.NoError(t, mc.Set(ctx, cacheKey(audio, 4), []byte("not json"), time.Minute))

	data, err := service.GenerateWaveform(ctx, audio, 4)
	require.NoError(t, err)
	assert.Len(t, data.Peaks, 4)
	assert.Equal(t, int32(1), generator.calls.Load())
}
