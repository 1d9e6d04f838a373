package directory

import (
	"context"
	"errors"
	"strings"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"gorm.io/gorm"
)

// SQL is a directory backed by the users table.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) UsersByRole(ctx context.Context, role models.Role) ([]string, error) {
	var users models.Users
	if err := s.db.WithContext(ctx).Order("username").Find(&users).Error; err != nil {
		return nil, err
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		if strings.TrimSpace(string(u.Role)) == string(role) {
			names = append(names, strings.TrimSpace(u.Username))
		}
	}
	return names, nil
}

func (s *SQL) List(ctx context.Context) (models.Users, error) {
	users := make(models.Users, 0)
	return users, s.db.WithContext(ctx).Order("username").Find(&users).Error
}

func (s *SQL) Add(ctx context.Context, u *models.User) error {
	if err := normalize(u); err != nil {
		return err
	}

	q := s.db.WithContext(ctx)

	err := q.First(&models.User{}, "username = ?", u.Username).Error
	switch {
	case err == nil:
		return lgerr.Conflictf("user %s already exists", u.Username)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	return q.Create(u).Error
}
