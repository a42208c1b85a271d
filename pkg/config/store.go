package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vdt/jetpants/pkg/models"
	"gopkg.in/yaml.v3"
)

type Store interface {
	Load() (*Configuration, error)
	Save(cfg *Configuration) error
}

type defaultStore struct {
	Path string
}

func NewDefaultStore(path string) Store {
	return &defaultStore{Path: path}
}

// DefaultPath returns ~/.jetpants.yaml, falling back to the working
// directory when the home directory cannot be determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".jetpants.yaml"
	}
	return filepath.Join(home, ".jetpants.yaml")
}

func (s *defaultStore) Load() (*Configuration, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		// A missing inventory is an empty inventory, not a failure.
		if errors.Is(err, fs.ErrNotExist) {
			return &Configuration{
				Identities: map[string]models.Identity{},
				Machines:   map[string]models.Machine{},
			}, nil
		}
		return nil, err
	}
	var cfg Configuration
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if cfg.Identities == nil {
		cfg.Identities = map[string]models.Identity{}
	}
	if cfg.Machines == nil {
		cfg.Machines = map[string]models.Machine{}
	}
	return &cfg, nil
}

func (s *defaultStore) Save(cfg *Configuration) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, data, 0600)
}
