package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	catalogDomain "accessgate/internal/domain/catalog"
	sharedConfig "accessgate/internal/shared/config"
	"accessgate/internal/shared/logger"
)

// Fetcher syncs a remote catalog object into a local file.
type Fetcher interface {
	Sync(ctx context.Context, key, localPath string) (bool, error)
}

type sourceFile struct {
	key  string
	path string
}

// Store serves parsed catalog documents. Refresh pulls the latest files from
// S3; a fetch failure degrades to the local copy so that a catalog outage
// never blocks request evaluation. Parsed documents are cached per file and
// invalidated on mtime change.
type Store struct {
	fetcher Fetcher
	files   []sourceFile
	logger  logger.Interface

	mu    sync.Mutex
	cache map[string]*cachedFile
}

type cachedFile struct {
	modTime time.Time
	docs    []*catalogDomain.Document
}

// NewStore creates a store over the configured catalog files. fetcher may be
// nil, in which case only the local copies are used.
func NewStore(cfg *sharedConfig.CatalogConfig, fetcher Fetcher, logger logger.Interface) *Store {
	return &Store{
		fetcher: fetcher,
		files: []sourceFile{
			{key: cfg.AWSSSOKey, path: cfg.AWSSSOPath},
			{key: cfg.TwingateKey, path: cfg.TwingatePath},
		},
		logger: logger,
		cache:  map[string]*cachedFile{},
	}
}

// Refresh syncs every catalog file from remote storage. Failures are logged
// and swallowed per file; the stale local copy stays in service.
func (s *Store) Refresh(ctx context.Context) {
	if s.fetcher == nil {
		return
	}
	for _, file := range s.files {
		if _, err := s.fetcher.Sync(ctx, file.key, file.path); err != nil {
			s.logger.Warnw("catalog refresh failed, serving local copy",
				"key", file.key, "path", file.path, "error", err)
		}
	}
}

// Documents returns the parsed documents of all catalog files in source
// order. A file that is missing or unparsable contributes nothing; an error
// is returned only when no file could be read at all.
func (s *Store) Documents(ctx context.Context) ([]*catalogDomain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var docs []*catalogDomain.Document
	var firstErr error
	loaded := 0

	for _, file := range s.files {
		fileDocs, err := s.loadLocked(file.path)
		if err != nil {
			s.logger.Warnw("failed to load catalog file", "path", file.path, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		loaded++
		docs = append(docs, fileDocs...)
	}

	if loaded == 0 && firstErr != nil {
		return nil, fmt.Errorf("no catalog file readable: %w", firstErr)
	}
	return docs, nil
}

func (s *Store) loadLocked(path string) ([]*catalogDomain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat catalog file %q: %w", path, err)
	}

	if cached, ok := s.cache[path]; ok && cached.modTime.Equal(info.ModTime()) {
		return cached.docs, nil
	}

	docs, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	s.cache[path] = &cachedFile{modTime: info.ModTime(), docs: docs}
	return docs, nil
}
