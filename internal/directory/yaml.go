package directory

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"gopkg.in/yaml.v3"
)

// YAML is a directory read from a file of the form
//
//	users:
//	  - username: ines
//	    name: Ines
//	    role: Inputter
type YAML struct {
	path string
	mu   sync.Mutex
}

type yamlFile struct {
	Users models.Users `yaml:"users"`
}

func NewYAML(path string) *YAML {
	return &YAML{path: path}
}

// Decode parses a users document.
func Decode(buf []byte) (models.Users, error) {
	var f yamlFile
	if err := yaml.Unmarshal(buf, &f); err != nil {
		return nil, lgerr.Validationf("invalid users file: %v", err)
	}
	return f.Users, nil
}

func (y *YAML) read() (models.Users, error) {
	buf, err := os.ReadFile(y.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.Users{}, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(buf)
}

func (y *YAML) UsersByRole(_ context.Context, role models.Role) ([]string, error) {
	y.mu.Lock()
	defer y.mu.Unlock()

	users, err := y.read()
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, u := range users {
		if strings.TrimSpace(string(u.Role)) == string(role) {
			names = append(names, strings.TrimSpace(u.Username))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (y *YAML) List(context.Context) (models.Users, error) {
	y.mu.Lock()
	defer y.mu.Unlock()
	return y.read()
}

func (y *YAML) Add(_ context.Context, u *models.User) error {
	if err := normalize(u); err != nil {
		return err
	}

	y.mu.Lock()
	defer y.mu.Unlock()

	users, err := y.read()
	if err != nil {
		return err
	}
	for _, existing := range users {
		if strings.TrimSpace(existing.Username) == u.Username {
			return lgerr.Conflictf("user %s already exists", u.Username)
		}
	}

	buf, err := yaml.Marshal(yamlFile{Users: append(users, u)})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(y.path), ".users-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), y.path)
}
