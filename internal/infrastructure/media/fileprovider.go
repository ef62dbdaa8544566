package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/erp/pos/internal/domain/scan"
	"github.com/erp/pos/internal/domain/shared"
)

// FileProvider is a virtual camera backed by a directory of still
// images. It serves development stations without camera hardware and
// the examples in the repository; each image file becomes one frame,
// served cyclically at the configured frame rate.
type FileProvider struct {
	Dir       string
	FrameRate int
}

// EnumerateDevices exposes the directory as a single rear-facing camera
func (p *FileProvider) EnumerateDevices(ctx context.Context) ([]Device, error) {
	if _, err := os.Stat(p.Dir); err != nil {
		return nil, fmt.Errorf("frame directory unavailable: %w", err)
	}
	return []Device{
		{ID: "file:0", Label: "Virtual camera (back, " + filepath.Base(p.Dir) + ")"},
	}, nil
}

// OpenStream builds a stream over the image files in the directory
func (p *FileProvider) OpenStream(ctx context.Context, c Constraints) (Stream, error) {
	entries, err := os.ReadDir(p.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(p.Dir, entry.Name()))
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no frame images in %s", p.Dir)
	}
	sort.Strings(files)

	rate := c.FrameRate
	if rate <= 0 {
		rate = p.FrameRate
	}
	if rate <= 0 {
		rate = 30
	}

	return &fileStream{
		files:    files,
		interval: time.Second / time.Duration(rate),
	}, nil
}

// fileStream serves directory images as frames
type fileStream struct {
	files    []string
	interval time.Duration

	mu      sync.Mutex
	next    int
	stopped bool
}

func (s *fileStream) NextFrame(ctx context.Context) (scan.Frame, error) {
	select {
	case <-ctx.Done():
		return scan.Frame{}, ctx.Err()
	case <-time.After(s.interval):
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return scan.Frame{}, shared.ErrSessionClosed
	}
	path := s.files[s.next]
	s.next = (s.next + 1) % len(s.files)
	s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return scan.Frame{}, fmt.Errorf("failed to read frame %s: %w", path, err)
	}

	frame := scan.Frame{Data: data}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		frame.Width = cfg.Width
		frame.Height = cfg.Height
	}
	return frame, nil
}

func (s *fileStream) Capabilities() Capabilities {
	return Capabilities{}
}

func (s *fileStream) ApplyConstraints(c Constraints) error {
	return nil
}

func (s *fileStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

// Ensure FileProvider implements Provider
var _ Provider = (*FileProvider)(nil)
