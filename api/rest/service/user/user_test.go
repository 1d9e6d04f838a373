package user

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/caesium-cloud/lgflow/internal/directory"
	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type UserTestSuite struct {
	suite.Suite
	svc User
}

func (s *UserTestSuite) SetupTest() {
	dir := directory.NewYAML(filepath.Join(s.T().TempDir(), "users.yaml"))
	s.svc = Service(context.Background()).WithDirectory(dir)
}

func (s *UserTestSuite) TestCreateRequiresAdmin() {
	_, err := s.svc.Create(&CreateRequest{Username: "ines", Role: "Inputter", Actor: role.Actor{User: "adam", Role: models.RoleAuthorizer}})
	assert.ErrorIs(s.T(), err, lgerr.ErrForbidden)

	usr, err := s.svc.Create(&CreateRequest{Username: "ines", Role: "inputter", Actor: role.Actor{User: "root", Role: models.RoleAdmin}})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.RoleInputter, usr.Role)
}

func (s *UserTestSuite) TestListByRole() {
	root := role.Actor{User: "root", Role: models.RoleAdmin}
	for _, req := range []*CreateRequest{
		{Username: "ines", Role: "Inputter", Actor: root},
		{Username: "adam", Role: "Authorizer", Actor: root},
	} {
		_, err := s.svc.Create(req)
		require.NoError(s.T(), err)
	}

	all, err := s.svc.List(&ListRequest{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 2)

	auth, err := s.svc.List(&ListRequest{Role: "Authorizer"})
	require.NoError(s.T(), err)
	require.Len(s.T(), auth, 1)
	assert.Equal(s.T(), "adam", auth[0].Username)

	_, err = s.svc.List(&ListRequest{Role: "Auditor"})
	assert.ErrorIs(s.T(), err, lgerr.ErrValidation)

	names, err := s.svc.UsersByRole(models.RoleInputter)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), []string{"ines"}, names)
}

func TestUserTestSuite(t *testing.T) {
	suite.Run(t, new(UserTestSuite))
}
