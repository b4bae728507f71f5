package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spigell/talentmatch/internal/skills"
)

type fileContent struct {
	Profiles map[string][]string `json:"profiles"`
}

// FileStore keeps credentials in a JSON file. Each Add reads, updates and
// rewrites the file under one lock; the rewrite goes through a temporary file
// and a rename so readers never see a partial file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Add(_ context.Context, profileID string, skill skills.Name) (bool, error) {
	if err := checkArgs(profileID, skill); err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	content, err := f.read()
	if err != nil {
		return false, err
	}

	set := skills.NewSet(content.Profiles[profileID]...)
	if !set.Add(skill) {
		return false, nil
	}

	content.Profiles[profileID] = set.Names()
	if err := f.write(content); err != nil {
		return false, err
	}

	return true, nil
}

func (f *FileStore) List(_ context.Context, profileID string) (skills.Set, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	content, err := f.read()
	if err != nil {
		return skills.Set{}, err
	}

	return skills.NewSet(content.Profiles[profileID]...), nil
}

func (f *FileStore) read() (*fileContent, error) {
	content := &fileContent{Profiles: make(map[string][]string)}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return content, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials file %s: %w", f.path, err)
	}

	if len(data) == 0 {
		return content, nil
	}

	if err := json.Unmarshal(data, content); err != nil {
		return nil, fmt.Errorf("parsing credentials file %s: %w", f.path, err)
	}

	if content.Profiles == nil {
		content.Profiles = make(map[string][]string)
	}

	return content, nil
}

func (f *FileStore) write(content *fileContent) error {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replacing credentials file %s: %w", f.path, err)
	}

	return nil
}
