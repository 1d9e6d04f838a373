// Package role maps each role to the work queues it may list and the
// actions it may take.
package role

import (
	"context"
	"slices"
	"strings"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/pkg/lgdate"
)

// Actor is the identity a caller claims for one request.
type Actor struct {
	User string      `json:"user"`
	Role models.Role `json:"role"`
}

// Validate checks that the actor names a user and a known role.
func (a Actor) Validate() error {
	if strings.TrimSpace(a.User) == "" {
		return lgerr.Forbiddenf("missing user")
	}
	if _, ok := models.ParseRole(string(a.Role)); !ok {
		return lgerr.Forbiddenf("unknown role %q", a.Role)
	}
	return nil
}

type Queue string

const (
	QueueTasks     Queue = "tasks"
	QueueWatchlist Queue = "watchlist"
	QueueOriginals Queue = "originals"
	QueueActive    Queue = "active"
	QueueReview    Queue = "review"
	QueuePendings  Queue = "pendings"
	QueueMaster    Queue = "master"
)

type Action string

const (
	ActionCreate          Action = "create"
	ActionSend            Action = "send"
	ActionMarkPending     Action = "mark-pending"
	ActionResubmit        Action = "resubmit"
	ActionReceiveOriginal Action = "receive-original"
	ActionEditActive      Action = "edit-active"
	ActionApprove         Action = "approve"
	ActionHold            Action = "hold"
	ActionReturn          Action = "return"
	ActionRelease         Action = "release"
	ActionDelete          Action = "delete"
	ActionManageUsers     Action = "manage-users"
)

// Capabilities is what a role may see and do.
type Capabilities struct {
	Queues  []Queue  `json:"queues"`
	Actions []Action `json:"actions"`
}

var capabilities = map[models.Role]Capabilities{
	models.RoleInputter: {
		Queues:  []Queue{QueueTasks, QueueWatchlist, QueueOriginals},
		Actions: []Action{ActionSend, ActionMarkPending, ActionResubmit, ActionReceiveOriginal},
	},
	models.RoleAuthorizer: {
		Queues: []Queue{QueueActive, QueueReview, QueuePendings, QueueOriginals, QueueMaster},
		Actions: []Action{
			ActionCreate, ActionEditActive, ActionApprove, ActionHold,
			ActionReturn, ActionRelease, ActionReceiveOriginal,
		},
	},
	models.RoleAdmin: {
		Queues:  []Queue{QueueMaster},
		Actions: []Action{ActionDelete, ActionManageUsers},
	},
}

// For returns the capabilities of r.
func For(r models.Role) (Capabilities, bool) {
	c, ok := capabilities[r]
	return c, ok
}

// Can reports whether r may take action.
func Can(r models.Role, action Action) bool {
	return slices.Contains(capabilities[r].Actions, action)
}

// Sees reports whether r may list queue.
func Sees(r models.Role, queue Queue) bool {
	return slices.Contains(capabilities[r].Queues, queue)
}

// Check fails with lgerr.ErrForbidden unless the actor may take action.
func Check(a Actor, action Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !Can(a.Role, action) {
		return lgerr.Forbiddenf("%s may not %s", a.Role, action)
	}
	return nil
}

// List returns the records in queue as the actor sees them, in table
// order.
func List(records models.TaskRecords, a Actor, queue Queue) (models.TaskRecords, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if !Sees(a.Role, queue) {
		return nil, lgerr.Forbiddenf("%s may not list %s", a.Role, queue)
	}

	var keep func(*models.TaskRecord) bool
	switch queue {
	case QueueTasks:
		keep = func(r *models.TaskRecord) bool { return r.Inputter == a.User && r.Status == models.StatusActive }
	case QueueWatchlist:
		keep = func(r *models.TaskRecord) bool { return r.Inputter == a.User && r.Status == models.StatusPending }
	case QueueOriginals:
		keep = (*models.TaskRecord).MissingOriginal
	case QueueActive:
		keep = func(r *models.TaskRecord) bool { return r.Status == models.StatusActive }
	case QueueReview:
		keep = func(r *models.TaskRecord) bool { return r.Authorizer == a.User && r.Status == models.StatusReadyForAuth }
	case QueuePendings:
		keep = func(r *models.TaskRecord) bool { return r.Status == models.StatusPending }
	default:
		keep = func(*models.TaskRecord) bool { return true }
	}

	return records.Filter(keep), nil
}

// Dashboard holds the headline counts shown to a user.
type Dashboard struct {
	Today         int `json:"today"`
	GlobalPending int `json:"global_pending"`
	YourActions   int `json:"your_actions"`
	Total         int `json:"total"`
}

// Summarize counts the dashboard tiles for the actor. today is a
// date in lgdate.Layout.
func Summarize(records models.TaskRecords, a Actor, today string) Dashboard {
	d := Dashboard{Total: len(records)}
	for _, r := range records {
		if lgdate.Normalize(r.AssignedDate) == today {
			d.Today++
		}
		if r.Status == models.StatusPending {
			d.GlobalPending++
		}
		switch a.Role {
		case models.RoleAuthorizer:
			if r.Authorizer == a.User && r.Status == models.StatusReadyForAuth {
				d.YourActions++
			}
		case models.RoleInputter:
			if r.Inputter == a.User && r.Status == models.StatusActive {
				d.YourActions++
			}
		}
	}
	return d
}

type contextKey struct{}

var actorKey contextKey

// WithContext attaches the actor to ctx.
func WithContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// FromContext returns the actor attached to ctx.
func FromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok
}
