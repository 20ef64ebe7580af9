package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.FileSource = (*Source)(nil)

// DefaultDebounce is how long a file must stay quiet after its last event
// before Watch reads it.
const DefaultDebounce = 250 * time.Millisecond

// Source yields the .txt files directly inside a directory.
// Subdirectories and hidden files are ignored.
type Source struct {
	root     string
	debounce time.Duration
}

// New creates a source rooted at dir.
func New(dir string) *Source {
	return &Source{root: dir, debounce: DefaultDebounce}
}

// SetDebounce sets the quiet period Watch waits for. Zero delivers every
// event immediately.
func (s *Source) SetDebounce(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.debounce = d
}

// Root returns the directory path.
func (s *Source) Root() string {
	return s.root
}

// Files reads every supported file, ordered by name. Unreadable files are
// kept in the listing with ReadError set.
func (s *Source) Files(ctx context.Context) ([]domain.SourceFile, error) {
	if err := s.checkRoot(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !wanted(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	files := make([]domain.SourceFile, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		file, err := s.read(name)
		if err != nil {
			logger.Warn("filesystem: %v", err)
			file = domain.SourceFile{Name: name, ReadError: err.Error()}
		}
		files = append(files, file)
	}

	logger.Debug("filesystem: %d text files in %s", len(files), s.root)
	return files, nil
}

// Watch calls fn for each supported file created or written in the
// directory until ctx is cancelled. Events for one file are coalesced until
// it has been quiet for the debounce period, so a file still being written
// is read once, after the writer stops.
func (s *Source) Watch(ctx context.Context, fn func(domain.SourceFile) error) error {
	if err := s.checkRoot(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.root); err != nil {
		return fmt.Errorf("watch %s: %w", s.root, err)
	}

	ready := make(chan string, 16)
	stopped := make(chan struct{})
	pending := make(map[string]*time.Timer)
	defer func() {
		close(stopped)
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			name := filepath.Base(event.Name)
			if !wanted(name) {
				continue
			}
			if s.debounce == 0 {
				s.deliver(name, fn)
				continue
			}
			if t, ok := pending[name]; ok {
				t.Reset(s.debounce)
				continue
			}
			pending[name] = time.AfterFunc(s.debounce, func() {
				select {
				case ready <- name:
				case <-stopped:
				}
			})

		case name := <-ready:
			delete(pending, name)
			s.deliver(name, fn)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("filesystem: watcher error: %v", err)
		}
	}
}

func (s *Source) deliver(name string, fn func(domain.SourceFile) error) {
	file, err := s.read(name)
	if err != nil {
		// Removed or renamed before it could be read.
		logger.Debug("filesystem: skip %s: %v", name, err)
		return
	}
	if err := fn(file); err != nil {
		logger.Warn("filesystem: %s: %v", name, err)
	}
}

func (s *Source) checkRoot() error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("%w: root path error: %w", domain.ErrValidation, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: root path error: %s is not a directory", domain.ErrValidation, s.root)
	}
	return nil
}

func (s *Source) read(name string) (domain.SourceFile, error) {
	path := filepath.Join(s.root, name)
	info, err := os.Stat(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if !info.Mode().IsRegular() {
		return domain.SourceFile{}, errors.New(name + " is not a regular file")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("read %s: %w", name, err)
	}
	return domain.SourceFile{Name: name, Content: content}, nil
}

func wanted(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return domain.SourceFile{Name: name}.IsSupported()
}
