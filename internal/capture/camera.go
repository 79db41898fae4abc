package capture

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/disintegration/imaging"

	"github.com/alienorar/student-system.asianuniversity.uz/pkg/errors"
)

// Camera acquires a live stream. Open fails with ErrCameraDenied when the
// device cannot be accessed.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is one active camera acquisition. Stop releases every underlying
// track and must be safe to call more than once; after Stop, Frame fails.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Stop()
}

// DirectoryCamera serves frames from image files in a directory, in name
// order, cycling. It stands in for a physical device on headless agents
// and in tests.
type DirectoryCamera struct {
	Dir string
}

func (c DirectoryCamera) Open(ctx context.Context) (Stream, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCameraDenied, err)
	}

	var frames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg", ".png":
			frames = append(frames, filepath.Join(c.Dir, e.Name()))
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in %s", errors.ErrCameraDenied, c.Dir)
	}
	sort.Strings(frames)

	return &dirStream{frames: frames}, nil
}

type dirStream struct {
	mu      sync.Mutex
	frames  []string
	next    int
	stopped bool
}

func (s *dirStream) Frame(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, errors.ErrNoActiveStream
	}

	path := s.frames[s.next]
	s.next = (s.next + 1) % len(s.frames)

	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame %s: %w", path, err)
	}
	return img, nil
}

func (s *dirStream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
