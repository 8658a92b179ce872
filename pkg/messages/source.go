// Package messages serves canned messages from a line-oriented text file.
package messages

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gliderlab/autochat/pkg/logging"
)

// DefaultFile is the canned message file read when none is configured.
const DefaultFile = "pesan.txt"

// NoMessages is returned when the file exists but holds no non-empty line.
const NoMessages = "No messages available."

// NotFound returns the sentinel reported when path cannot be read.
func NotFound(path string) string {
	return fmt.Sprintf("File %s not found.", filepath.Base(path))
}

// Source picks a random line from a file. The file is re-read on every call
// so edits take effect without a restart.
type Source struct {
	path   string
	intn   func(n int) int
	logger *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithRand sets the random index function; it must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(s *Source) { s.intn = intn }
}

// WithLogger sets the logger used for missing and empty file warnings.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) { s.logger = logging.OrNop(l) }
}

// NewSource returns a Source backed by path (DefaultFile when empty).
func NewSource(path string, opts ...Option) *Source {
	if path == "" {
		path = DefaultFile
	}
	s := &Source{
		path:   path,
		intn:   rand.IntN,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Source) Path() string { return s.path }

// RandomMessage returns one non-empty line, whitespace-trimmed, chosen
// uniformly at random. It never fails: a missing or unreadable file yields
// NotFound(path) and an empty file yields NoMessages.
func (s *Source) RandomMessage() string {
	lines, err := s.Lines()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("canned message file not found", zap.String("path", s.path))
		} else {
			s.logger.Warn("canned message file unreadable", zap.String("path", s.path), zap.Error(err))
		}
		return NotFound(s.path)
	}
	if len(lines) == 0 {
		s.logger.Warn("canned message file is empty", zap.String("path", s.path))
		return NoMessages
	}
	return lines[s.intn(len(lines))]
}

// Lines reads the file and returns its non-empty lines with surrounding
// whitespace removed.
func (s *Source) Lines() ([]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return lines, nil
}
