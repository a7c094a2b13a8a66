package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/toolgate/service/dao"
	"github.com/viant/toolgate/service/dao/criteria"
)

// FsStore is a generic afs-backed implementation of dao.Service. Records are
// persisted as one JSON document per key under a base location, so a store
// can live on a local filesystem or any afs-supported backend. It mirrors
// MemoryStore's contract: Load returns (nil, nil) when the key is absent.
type FsStore[T any] struct {
	basePath       string
	fs             afs.Service
	mu             sync.RWMutex
	keySelector    func(*T) string
	statusSelector func(*T) string
}

// NewFsStore creates a filesystem store rooted at basePath.
func NewFsStore[T any](basePath string, keySelector func(*T) string) (*FsStore[T], error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	fService := afs.New()
	ctx := context.Background()
	if exists, _ := fService.Exists(ctx, basePath); !exists {
		if err := fService.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	basePath = url.Normalize(basePath, file.Scheme)
	return &FsStore[T]{
		basePath:    basePath,
		fs:          fService,
		keySelector: keySelector,
	}, nil
}

// WithStatusSelector enables status-filtered listing.
func (s *FsStore[T]) WithStatusSelector(selector func(*T) string) *FsStore[T] {
	s.statusSelector = selector
	return s
}

// Save persists a record as a JSON document.
func (s *FsStore[T]) Save(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	if key == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	location := s.recordPath(key)
	if err = s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save record to %s: %w", location, err)
	}
	return nil
}

// Create persists a record only when its key is still free.
func (s *FsStore[T]) Create(ctx context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	if key == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	taken, err := s.fs.Exists(ctx, s.recordPath(key))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", key, err)
	}
	if taken {
		return dao.ErrAlreadyExists
	}
	return s.Save(ctx, v)
}

// Load retrieves a record by key, returning (nil, nil) when absent.
func (s *FsStore[T]) Load(ctx context.Context, key string) (*T, error) {
	if key == "" {
		return nil, dao.ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	location := s.recordPath(key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to check record %s: %w", location, err)
	}
	if !exists {
		return nil, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read record %s: %w", location, err)
	}
	var record T
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %s: %w", location, err)
	}
	return &record, nil
}

// Delete removes a record.
func (s *FsStore[T]) Delete(ctx context.Context, key string) error {
	if key == "" {
		return dao.ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	location := s.recordPath(key)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to check record %s: %w", location, err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", location, err)
	}
	return nil
}

// List returns all records, filtered by the "Status" parameter when a status
// selector is configured.
func (s *FsStore[T]) List(ctx context.Context, parameters ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	var records []*T
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			log.Printf("error reading record %s: %v", object.URL(), err)
			continue
		}
		var record T
		if err := json.Unmarshal(data, &record); err != nil {
			log.Printf("error unmarshaling record %s: %v", object.URL(), err)
			continue
		}
		if s.statusSelector != nil && !criteria.FilterByStatus(s.statusSelector(&record), parameters) {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

// recordPath returns the document location for a key. Keys may contain '/'
// (tool calls are keyed taskId/callId) which maps onto sub-directories.
func (s *FsStore[T]) recordPath(key string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", key))
}
