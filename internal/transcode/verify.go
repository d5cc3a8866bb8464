package transcode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/vansante/go-ffprobe.v2"
)

// ErrStreamMismatch reports an output that lost streams during the remux.
var ErrStreamMismatch = errors.New("stream count mismatch")

// probeFunc defines the function signature used to execute ffprobe.
type probeFunc func(ctx context.Context, path string, extraOpts ...string) (*ffprobe.ProbeData, error)

// Verifier compares stream counts between a source and its remuxed output.
// Probe results are cached per file version.
type Verifier struct {
	probe probeFunc
	cache *cache.Cache
}

// NewVerifier creates a verifier using the ffprobe binary at binPath.
func NewVerifier(binPath string) *Verifier {
	if binPath != "" {
		ffprobe.SetFFProbeBinPath(binPath)
	}
	return &Verifier{
		probe: ffprobe.ProbeURL,
		cache: cache.New(time.Hour, 10*time.Minute),
	}
}

// StreamCount returns the number of streams ffprobe reports for path.
func (v *Verifier) StreamCount(ctx context.Context, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if n, ok := v.cache.Get(key); ok {
		return n.(int), nil
	}

	data, err := v.probe(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	n := 0
	if data != nil {
		n = len(data.Streams)
	}
	v.cache.Set(key, n, cache.DefaultExpiration)
	return n, nil
}

// Verify checks that out carries as many streams as src.
func (v *Verifier) Verify(ctx context.Context, src, out string) error {
	want, err := v.StreamCount(ctx, src)
	if err != nil {
		return err
	}
	got, err := v.StreamCount(ctx, out)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: %s has %d streams, %s has %d", ErrStreamMismatch, src, want, out, got)
	}
	return nil
}
