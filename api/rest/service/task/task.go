package task

import (
	"context"
	"sync"

	"github.com/caesium-cloud/lgflow/internal/directory"
	"github.com/caesium-cloud/lgflow/internal/event"
	"github.com/caesium-cloud/lgflow/internal/history"
	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/metrics"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/internal/snapshot"
	"github.com/caesium-cloud/lgflow/internal/taskid"
	"github.com/caesium-cloud/lgflow/internal/workflow"
	"github.com/caesium-cloud/lgflow/pkg/log"
)

// Task is the operational surface over the task table. Every call is
// one load -> mutate -> save cycle.
type Task interface {
	WithBackend(*Backend) Task
	Create(*CreateRequest) (*CreateResponse, error)
	Transition(*TransitionRequest) (*models.TaskRecord, error)
	EditActive(*EditRequest) (*models.TaskRecord, error)
	ReceiveOriginal(*ReceiveRequest) (*models.TaskRecord, error)
	Delete(id string, actor role.Actor) error
	History(lgNumber string) (*HistoryResponse, error)
	Get(id string) (*models.TaskRecord, error)
	List(*ListRequest) (models.TaskRecords, error)
	Dashboard(actor role.Actor) (*role.Dashboard, error)
}

// Backend bundles what the service needs.
type Backend struct {
	Repo      *snapshot.Repository
	Engine    *workflow.Engine
	Directory directory.Directory
	Bus       event.Bus
	// Serial orders creations within the process so sequential ids
	// are computed from a table that already holds the previous one.
	Serial *taskid.Serial
}

type taskService struct {
	ctx context.Context
	*Backend
}

var (
	defaultBackend   *Backend
	defaultBackendMu sync.Mutex

	// guards filling in a Backend's defaults
	defaultsMu sync.Mutex
)

// Configure installs the backend used by Service.
func Configure(b *Backend) {
	defaultBackendMu.Lock()
	defer defaultBackendMu.Unlock()
	defaultBackend = b.withDefaults()
}

func Service(ctx context.Context) Task {
	defaultBackendMu.Lock()
	defer defaultBackendMu.Unlock()
	return &taskService{ctx: ctx, Backend: defaultBackend}
}

func (t *taskService) WithBackend(b *Backend) Task {
	t.Backend = b.withDefaults()
	return t
}

// withDefaults fills in b itself so every service built from one
// Backend shares its Serial.
func (b *Backend) withDefaults() *Backend {
	if b == nil {
		return nil
	}
	defaultsMu.Lock()
	defer defaultsMu.Unlock()
	if b.Bus == nil {
		b.Bus = event.Nop()
	}
	if b.Serial == nil {
		b.Serial = &taskid.Serial{}
	}
	return b
}

type CreateRequest struct {
	workflow.NewTask
	Actor role.Actor `json:"-"`
}

type CreateResponse struct {
	Task    *models.TaskRecord `json:"task"`
	History history.Result     `json:"history"`
}

func (t *taskService) Create(req *CreateRequest) (*CreateResponse, error) {
	var resp *CreateResponse

	err := t.Serial.Do(func() error {
		snap, err := t.Repo.Load(t.ctx)
		if err != nil {
			return err
		}

		if req.Inputter != "" {
			if err := t.eligible(models.RoleInputter, req.Inputter); err != nil {
				return err
			}
		}

		rec, hist, err := t.Engine.Create(snap.Records, req.Actor, req.NewTask)
		if err != nil {
			return err
		}
		snap.Add(rec)

		if err := t.save(snap); err != nil {
			return err
		}

		saved, err := snap.Find(rec.TaskID)
		if err != nil {
			return err
		}
		resp = &CreateResponse{Task: saved, History: hist.Flag(snap.Coerced)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TasksCreatedTotal.WithLabelValues(resp.Task.ReqType).Inc()
	log.Info("task created", "task_id", resp.Task.TaskID, "lg_number", resp.Task.LGNumber, "actor", req.Actor.User)
	t.publish(event.TypeTaskCreated, resp.Task, req.Actor, resp.Task)

	return resp, nil
}

type TransitionRequest struct {
	workflow.Request
	TaskID string     `json:"-"`
	Actor  role.Actor `json:"-"`
}

func (t *taskService) Transition(req *TransitionRequest) (*models.TaskRecord, error) {
	next, applied, err := t.transition(req)
	metrics.TransitionsTotal.WithLabelValues(string(req.Actor.Role), string(req.Decision), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	log.Info("task transitioned",
		"task_id", next.TaskID,
		"decision", req.Decision,
		"from", applied.From,
		"to", applied.To,
		"actor", req.Actor.User,
	)
	t.publish(event.TypeTaskTransitioned, next, req.Actor, map[string]any{
		"decision": req.Decision,
		"from":     applied.From,
		"to":       applied.To,
		"task":     next,
	})

	return next, nil
}

func (t *taskService) transition(req *TransitionRequest) (*models.TaskRecord, workflow.Transition, error) {
	if req.Decision == workflow.DecisionSend && req.Authorizer != "" {
		if err := t.eligible(models.RoleAuthorizer, req.Authorizer); err != nil {
			return nil, workflow.Transition{}, err
		}
	}

	snap, rec, err := t.load(req.TaskID)
	if err != nil {
		return nil, workflow.Transition{}, err
	}

	next, applied, err := t.Engine.Apply(rec, req.Actor, req.Request)
	if err != nil {
		return nil, applied, err
	}

	if err := snap.Put(next); err != nil {
		return nil, applied, err
	}
	if err := t.save(snap); err != nil {
		return nil, applied, err
	}

	saved, _ := snap.Find(next.TaskID)
	return saved, applied, nil
}

type EditRequest struct {
	TaskID  string            `json:"-"`
	Actor   role.Actor        `json:"-"`
	Updates map[string]string `json:"updates"`
}

func (t *taskService) EditActive(req *EditRequest) (*models.TaskRecord, error) {
	if inputter, ok := req.Updates["inputter"]; ok && inputter != "" {
		if err := t.eligible(models.RoleInputter, inputter); err != nil {
			return nil, err
		}
	}

	snap, rec, err := t.load(req.TaskID)
	if err != nil {
		return nil, err
	}

	next, err := t.Engine.EditActive(rec, req.Actor, req.Updates)
	if err != nil {
		return nil, err
	}

	return t.commit(snap, next, req.Actor, event.TypeTaskUpdated)
}

type ReceiveRequest struct {
	TaskID string     `json:"-"`
	Actor  role.Actor `json:"-"`
	Date   string     `json:"date"`
}

func (t *taskService) ReceiveOriginal(req *ReceiveRequest) (*models.TaskRecord, error) {
	snap, rec, err := t.load(req.TaskID)
	if err != nil {
		return nil, err
	}

	next, err := t.Engine.ReceiveOriginal(rec, req.Actor, req.Date)
	if err != nil {
		return nil, err
	}

	return t.commit(snap, next, req.Actor, event.TypeTaskUpdated)
}

func (t *taskService) commit(snap *snapshot.Snapshot, next *models.TaskRecord, actor role.Actor, typ event.Type) (*models.TaskRecord, error) {
	if err := snap.Put(next); err != nil {
		return nil, err
	}
	if err := t.save(snap); err != nil {
		return nil, err
	}

	saved, _ := snap.Find(next.TaskID)
	log.Info("task updated", "task_id", saved.TaskID, "actor", actor.User)
	t.publish(typ, saved, actor, saved)
	return saved, nil
}

// Delete removes a task permanently.
func (t *taskService) Delete(id string, actor role.Actor) error {
	if err := role.Check(actor, role.ActionDelete); err != nil {
		return err
	}

	snap, rec, err := t.load(id)
	if err != nil {
		return err
	}
	if err := snap.Remove(id); err != nil {
		return err
	}
	if err := t.save(snap); err != nil {
		return err
	}

	metrics.TasksDeletedTotal.Inc()
	log.Warn("task deleted", "task_id", id, "lg_number", rec.LGNumber, "actor", actor.User)
	t.publish(event.TypeTaskDeleted, rec, actor, nil)
	return nil
}

type HistoryResponse struct {
	history.Result
	Ledger []history.Step `json:"ledger"`
}

func (t *taskService) History(lgNumber string) (*HistoryResponse, error) {
	snap, err := t.Repo.Load(t.ctx)
	if err != nil {
		return nil, err
	}

	res := history.Resolve(snap.Records, lgNumber).Flag(snap.Coerced)
	if res.Coerced {
		log.Warn("history resolved from a coerced cell", "lg_number", res.LGNumber, "task_id", res.Last.TaskID)
	}

	return &HistoryResponse{
		Result: res,
		Ledger: history.Ledger(snap.Records, lgNumber),
	}, nil
}

func (t *taskService) Get(id string) (*models.TaskRecord, error) {
	_, rec, err := t.load(id)
	return rec, err
}

type ListRequest struct {
	Actor role.Actor
	Queue role.Queue
	// LGNumber narrows the queue to one guarantee.
	LGNumber string
}

func (t *taskService) List(req *ListRequest) (models.TaskRecords, error) {
	snap, err := t.Repo.Load(t.ctx)
	if err != nil {
		return nil, err
	}

	queue := req.Queue
	if queue == "" {
		queue = role.QueueMaster
	}

	records, err := role.List(snap.Records, req.Actor, queue)
	if err != nil {
		return nil, err
	}

	if req.LGNumber != "" {
		records = records.Filter(func(r *models.TaskRecord) bool { return r.LGNumber == req.LGNumber })
	}
	return records, nil
}

func (t *taskService) Dashboard(actor role.Actor) (*role.Dashboard, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	snap, err := t.Repo.Load(t.ctx)
	if err != nil {
		return nil, err
	}

	d := role.Summarize(snap.Records, actor, t.Engine.Today())
	return &d, nil
}

func (t *taskService) load(id string) (*snapshot.Snapshot, *models.TaskRecord, error) {
	snap, err := t.Repo.Load(t.ctx)
	if err != nil {
		return nil, nil, err
	}

	rec, err := snap.Find(id)
	if err != nil {
		return nil, nil, err
	}
	return snap, rec, nil
}

func (t *taskService) save(snap *snapshot.Snapshot) error {
	err := t.Repo.Save(t.ctx, snap)
	if err == nil {
		return nil
	}

	if lgerr.KindOf(err) == lgerr.ErrConflict {
		log.Warn("save rejected", "error", err)
		t.Bus.Publish(event.Event{Type: event.TypeSaveConflict, Payload: event.Payload(map[string]string{"error": err.Error()})})
	} else {
		log.Error("save failed, change not persisted", "error", err)
	}
	return err
}

// eligible checks a chosen user against the directory.
func (t *taskService) eligible(r models.Role, user string) error {
	if t.Directory == nil {
		return nil
	}

	ok, err := directory.Contains(t.ctx, t.Directory, r, user)
	if err != nil {
		log.Warn("user directory unavailable, skipping eligibility check", "role", r, "error", err)
		return nil
	}
	if !ok {
		return lgerr.Validationf("%s is not a known %s", user, r)
	}
	return nil
}

func (t *taskService) publish(typ event.Type, rec *models.TaskRecord, actor role.Actor, payload any) {
	e := event.Event{
		Type:     typ,
		TaskID:   rec.TaskID,
		LGNumber: rec.LGNumber,
		Actor:    actor.User,
	}
	if payload != nil {
		e.Payload = event.Payload(payload)
	}
	t.Bus.Publish(e)
}
