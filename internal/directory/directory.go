// Package directory resolves usernames by role. Two backends are
// provided: a gorm table and a YAML file.
package directory

import (
	"context"
	"strings"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
)

// Directory is the user directory consumed by the workflow.
type Directory interface {
	// UsersByRole lists the usernames holding role. An empty list is
	// not an error.
	UsersByRole(ctx context.Context, role models.Role) ([]string, error)
	List(ctx context.Context) (models.Users, error)
	Add(ctx context.Context, u *models.User) error
}

// normalize trims the user's fields and validates the role.
func normalize(u *models.User) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Name = strings.TrimSpace(u.Name)
	if u.Username == "" {
		return lgerr.Validationf("username is required")
	}
	role, ok := models.ParseRole(string(u.Role))
	if !ok {
		return lgerr.Validationf("unknown role %q", u.Role)
	}
	u.Role = role
	return nil
}

// Contains reports whether user holds role in d. An empty directory
// for the role admits anyone, matching a deployment that has not
// populated its users yet.
func Contains(ctx context.Context, d Directory, role models.Role, user string) (bool, error) {
	users, err := d.UsersByRole(ctx, role)
	if err != nil {
		return false, err
	}
	if len(users) == 0 {
		return true, nil
	}
	for _, u := range users {
		if u == user {
			return true, nil
		}
	}
	return false, nil
}
