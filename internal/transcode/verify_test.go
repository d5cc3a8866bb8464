package transcode

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/vansante/go-ffprobe.v2"
)

func newTestVerifier(streams func(path string) int) *Verifier {
	return &Verifier{
		probe: func(_ context.Context, path string, _ ...string) (*ffprobe.ProbeData, error) {
			data := &ffprobe.ProbeData{}
			n := streams(path)
			for i := 0; i < n; i++ {
				data.Streams = append(data.Streams, &ffprobe.Stream{Index: i})
			}
			return data, nil
		},
		cache: cache.New(time.Minute, time.Minute),
	}
}

func TestVerifierCachesProbes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mkv")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	var probes atomic.Int32
	v := newTestVerifier(func(string) int {
		probes.Add(1)
		return 2
	})

	for i := 0; i < 3; i++ {
		n, err := v.StreamCount(context.Background(), path)
		if err != nil || n != 2 {
			t.Fatalf("StreamCount() = (%d, %v), want (2, nil)", n, err)
		}
	}
	if probes.Load() != 1 {
		t.Errorf("probed %d times, want 1", probes.Load())
	}
}

func TestVerifierMatch(t *testing.T) {
	dir := t.TempDir()
	src, out := filepath.Join(dir, "a.mkv"), filepath.Join(dir, "a.mp4")
	for _, p := range []string{src, out} {
		if err := os.WriteFile(p, []byte(p), 0644); err != nil {
			t.Fatal(err)
		}
	}

	v := newTestVerifier(func(string) int { return 4 })
	if err := v.Verify(context.Background(), src, out); err != nil {
		t.Errorf("Verify() error = %v", err)
	}
}

func TestVerifierProbeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mkv")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	v := &Verifier{
		probe: func(context.Context, string, ...string) (*ffprobe.ProbeData, error) { return nil, boom },
		cache: cache.New(time.Minute, time.Minute),
	}
	if _, err := v.StreamCount(context.Background(), path); !errors.Is(err, boom) {
		t.Errorf("StreamCount() error = %v, want boom", err)
	}
}
