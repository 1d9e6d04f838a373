package role

import (
	"context"
	"testing"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RoleTestSuite struct {
	suite.Suite
	records models.TaskRecords
}

func (s *RoleTestSuite) SetupTest() {
	s.records = models.TaskRecords{
		{TaskID: "1", Inputter: "ines", Authorizer: "adam", Status: models.StatusActive, AssignedDate: "05-Mar-2025", PostType: models.PostTypeCopy},
		{TaskID: "2", Inputter: "ines", Authorizer: "adam", Status: models.StatusPending, AssignedDate: "05/Mar/2025", PostType: models.PostTypeOriginal},
		{TaskID: "3", Inputter: "ian", Authorizer: "adam", Status: models.StatusReadyForAuth, AssignedDate: "04-Mar-2025", PostType: models.PostTypeCopy, OriginalRecvd: true},
		{TaskID: "4", Inputter: "ian", Authorizer: "amy", Status: models.StatusReadyForAuth, AssignedDate: "04-Mar-2025"},
		{TaskID: "5", Inputter: "ines", Authorizer: "adam", Status: models.StatusCompleted, AssignedDate: "01-Mar-2025", PostType: models.PostTypeCopy},
	}
}

func ids(rs models.TaskRecords) []string {
	out := []string{}
	for _, r := range rs {
		out = append(out, r.TaskID)
	}
	return out
}

func (s *RoleTestSuite) TestCapabilities() {
	assert.True(s.T(), Can(models.RoleAuthorizer, ActionCreate))
	assert.False(s.T(), Can(models.RoleInputter, ActionCreate))
	assert.True(s.T(), Can(models.RoleAdmin, ActionDelete))
	assert.False(s.T(), Can(models.RoleAuthorizer, ActionDelete))
	assert.True(s.T(), Can(models.RoleInputter, ActionReceiveOriginal))
	assert.True(s.T(), Can(models.RoleAuthorizer, ActionReceiveOriginal))

	_, ok := For(models.Role("Auditor"))
	assert.False(s.T(), ok)
}

func (s *RoleTestSuite) TestCheck() {
	assert.NoError(s.T(), Check(Actor{User: "adam", Role: models.RoleAuthorizer}, ActionApprove))
	assert.ErrorIs(s.T(), Check(Actor{User: "ines", Role: models.RoleInputter}, ActionApprove), lgerr.ErrForbidden)
	assert.ErrorIs(s.T(), Check(Actor{Role: models.RoleAuthorizer}, ActionApprove), lgerr.ErrForbidden)
	assert.ErrorIs(s.T(), Check(Actor{User: "x", Role: "Auditor"}, ActionApprove), lgerr.ErrForbidden)
}

func (s *RoleTestSuite) TestQueues() {
	ines := Actor{User: "ines", Role: models.RoleInputter}
	adam := Actor{User: "adam", Role: models.RoleAuthorizer}

	cases := []struct {
		actor Actor
		queue Queue
		want  []string
	}{
		{ines, QueueTasks, []string{"1"}},
		{ines, QueueWatchlist, []string{"2"}},
		{ines, QueueOriginals, []string{"1", "5"}},
		{adam, QueueActive, []string{"1"}},
		{adam, QueueReview, []string{"3"}},
		{adam, QueuePendings, []string{"2"}},
		{adam, QueueMaster, []string{"1", "2", "3", "4", "5"}},
	}
	for _, c := range cases {
		got, err := List(s.records, c.actor, c.queue)
		require.NoError(s.T(), err, c.queue)
		assert.Equal(s.T(), c.want, ids(got), c.queue)
	}

	_, err := List(s.records, ines, QueueMaster)
	assert.ErrorIs(s.T(), err, lgerr.ErrForbidden)
}

func (s *RoleTestSuite) TestSummarize() {
	adam := Summarize(s.records, Actor{User: "adam", Role: models.RoleAuthorizer}, "05-Mar-2025")
	assert.Equal(s.T(), Dashboard{Today: 2, GlobalPending: 1, YourActions: 1, Total: 5}, adam)

	ines := Summarize(s.records, Actor{User: "ines", Role: models.RoleInputter}, "05-Mar-2025")
	assert.Equal(s.T(), 1, ines.YourActions)
}

func TestRoleTestSuite(t *testing.T) {
	suite.Run(t, new(RoleTestSuite))
}

func TestActorContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	a := Actor{User: "adam", Role: models.RoleAuthorizer}
	got, ok := FromContext(WithContext(context.Background(), a))
	assert.True(t, ok)
	assert.Equal(t, a, got)
}
