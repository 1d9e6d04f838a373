package user

import (
	"context"
	"sync"

	"github.com/caesium-cloud/lgflow/internal/directory"
	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/pkg/log"
)

type User interface {
	WithDirectory(directory.Directory) User
	List(*ListRequest) (models.Users, error)
	UsersByRole(models.Role) ([]string, error)
	Create(*CreateRequest) (*models.User, error)
}

type userService struct {
	ctx context.Context
	dir directory.Directory
}

var (
	defaultDirectory   directory.Directory
	defaultDirectoryMu sync.Mutex
)

// Configure installs the directory used by Service.
func Configure(d directory.Directory) {
	defaultDirectoryMu.Lock()
	defer defaultDirectoryMu.Unlock()
	defaultDirectory = d
}

func Service(ctx context.Context) User {
	defaultDirectoryMu.Lock()
	defer defaultDirectoryMu.Unlock()
	return &userService{ctx: ctx, dir: defaultDirectory}
}

func (u *userService) WithDirectory(d directory.Directory) User {
	u.dir = d
	return u
}

type ListRequest struct {
	Role string
}

func (u *userService) List(req *ListRequest) (models.Users, error) {
	users, err := u.dir.List(u.ctx)
	if err != nil {
		return nil, err
	}
	if req.Role == "" {
		return users, nil
	}

	r, ok := models.ParseRole(req.Role)
	if !ok {
		return nil, lgerr.Validationf("unknown role %q", req.Role)
	}

	out := make(models.Users, 0, len(users))
	for _, usr := range users {
		if usr.Role == r {
			out = append(out, usr)
		}
	}
	return out, nil
}

func (u *userService) UsersByRole(r models.Role) ([]string, error) {
	return u.dir.UsersByRole(u.ctx, r)
}

type CreateRequest struct {
	Username string     `json:"username"`
	Name     string     `json:"name"`
	Role     string     `json:"role"`
	Actor    role.Actor `json:"-"`
}

func (u *userService) Create(req *CreateRequest) (*models.User, error) {
	if err := role.Check(req.Actor, role.ActionManageUsers); err != nil {
		return nil, err
	}

	usr := &models.User{
		Username: req.Username,
		Name:     req.Name,
		Role:     models.Role(req.Role),
	}
	if err := u.dir.Add(u.ctx, usr); err != nil {
		return nil, err
	}

	log.Info("user added", "username", usr.Username, "role", usr.Role, "actor", req.Actor.User)
	return usr, nil
}
