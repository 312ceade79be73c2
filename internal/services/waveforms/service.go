package waveforms

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/LeiShi1313/readrepeat/internal/services/cache"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

// Service wraps a Generator with a cache keyed on the audio file's identity,
// so a file rewritten by a later pipeline run is decoded again.
// Concurrent requests for the same key share one ffmpeg run.
type Service struct {
	next  Generator
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewService creates the caching waveform service
func NewService(next Generator, c cache.Cache, ttl time.Duration) *Service {
	return &Service{
		next:  next,
		cache: c,
		ttl:   ttl,
	}
}

// GenerateWaveform returns cached peaks or computes and stores them
func (s *Service) GenerateWaveform(ctx context.Context, input string, resolution int) (*ffmpeg.WaveformData, error) {
	if strings.TrimSpace(input) == "" {
		return nil, ErrInvalidInput
	}
	if resolution <= 0 {
		return nil, ErrInvalidResolution
	}

	key := cacheKey(input, resolution)
	if data, ok := s.lookup(ctx, key); ok {
		return data, nil
	}

	value, err, shared := s.group.Do(key, func() (interface{}, error) {
		data, err := s.next.GenerateWaveform(ctx, input, resolution)
		if err != nil {
			return nil, err
		}
		if encoded, err := json.Marshal(data); err == nil {
			if err := s.cache.Set(ctx, key, encoded, s.ttl); err != nil {
				log.Warnf("Failed to cache waveform for %s: %v", input, err)
			}
		}
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugf("Waveform for %s shared with a concurrent request", input)
	}

	data := *value.(*ffmpeg.WaveformData)
	data.Peaks = append([]float32(nil), data.Peaks...)
	return &data, nil
}

func (s *Service) lookup(ctx context.Context, key string) (*ffmpeg.WaveformData, bool) {
	encoded, ok := s.cache.Get(ctx, key)
	if !ok {
		return nil, false
	}
	var data ffmpeg.WaveformData
	if err := json.Unmarshal(encoded, &data); err != nil {
		log.Warnf("Dropping unreadable waveform cache entry %s: %v", key, err)
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return &data, true
}

// cacheKey includes size and mtime for local files; remote inputs are keyed
// on the URL alone
func cacheKey(input string, resolution int) string {
	if info, err := os.Stat(input); err == nil {
		return fmt.Sprintf("waveform:%s:%d:%d:%d", input, info.Size(), info.ModTime().UnixNano(), resolution)
	}
	return fmt.Sprintf("waveform:%s:%d", input, resolution)
}
