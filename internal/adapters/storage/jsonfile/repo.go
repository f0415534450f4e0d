// Package jsonfile persists ideas as a pretty-printed JSON array and the last
// selected index as a plain decimal file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evanschultz/ideas/internal/domain"
)

// Default file names inside the data directory.
const (
	IdeasFileName = "ideas.json"
	IndexFileName = "index.txt"
)

// Repository reads and rewrites the two persisted files.
type Repository struct {
	ideasPath string
	indexPath string
}

// Open prepares a repository over the given file paths, creating parent directories.
func Open(ideasPath, indexPath string) (*Repository, error) {
	ideasPath = strings.TrimSpace(ideasPath)
	indexPath = strings.TrimSpace(indexPath)
	if ideasPath == "" {
		return nil, errors.New("ideas file path is required")
	}
	if indexPath == "" {
		return nil, errors.New("index file path is required")
	}
	for _, path := range []string{ideasPath, indexPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &Repository{ideasPath: ideasPath, indexPath: indexPath}, nil
}

// OpenDir prepares a repository using the default file names inside dir.
func OpenDir(dir string) (*Repository, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data dir is required")
	}
	return Open(filepath.Join(dir, IdeasFileName), filepath.Join(dir, IndexFileName))
}

// IdeasPath returns the ideas file path.
func (r *Repository) IdeasPath() string {
	return r.ideasPath
}

// IndexPath returns the index file path.
func (r *Repository) IndexPath() string {
	return r.indexPath
}

// LoadIdeas returns the persisted list. A missing or blank file is an empty list.
func (r *Repository) LoadIdeas(_ context.Context) ([]domain.Idea, error) {
	data, err := os.ReadFile(r.ideasPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read ideas file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var ideas []domain.Idea
	if err := json.Unmarshal(data, &ideas); err != nil {
		return nil, fmt.Errorf("decode %s: %w: %w", r.ideasPath, domain.ErrMalformedPayload, err)
	}
	return ideas, nil
}

// SaveIdeas rewrites the whole list.
func (r *Repository) SaveIdeas(_ context.Context, ideas []domain.Idea) error {
	if ideas == nil {
		ideas = []domain.Idea{}
	}
	data, err := json.MarshalIndent(ideas, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ideas: %w", err)
	}
	return writeFileAtomic(r.ideasPath, data)
}

// LoadActiveIndex returns the persisted selection. A missing or blank file is 0.
func (r *Repository) LoadActiveIndex(_ context.Context) (int, error) {
	data, err := os.ReadFile(r.indexPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read index file: %w", err)
	}
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return 0, nil
	}
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w: %w", r.indexPath, domain.ErrMalformedPayload, err)
	}
	if index < 0 {
		return 0, fmt.Errorf("parse %s: %w: negative index %d", r.indexPath, domain.ErrMalformedPayload, index)
	}
	return index, nil
}

// SaveActiveIndex rewrites the index file.
func (r *Repository) SaveActiveIndex(_ context.Context, index int) error {
	if index < 0 {
		return fmt.Errorf("save index %d: %w", index, domain.ErrInvalidPosition)
	}
	return writeFileAtomic(r.indexPath, []byte(strconv.Itoa(index)))
}

// writeFileAtomic replaces path through a sibling temp file so readers never see a partial write.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
