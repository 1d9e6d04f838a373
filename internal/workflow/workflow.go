// Package workflow implements the task lifecycle: creation by an
// authorizer, the role-gated transitions between Active, Ready for
// Auth, Pending and Completed, and the annotation edits allowed along
// the way. The engine is pure. It works on records handed to it and
// returns modified copies; loading and saving is the caller's job.
package workflow

import (
	"fmt"
	"strings"
	"time"

	"github.com/caesium-cloud/lgflow/internal/history"
	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/role"
	"github.com/caesium-cloud/lgflow/internal/taskid"
	"github.com/caesium-cloud/lgflow/pkg/lgdate"
)

type Decision string

const (
	DecisionSend                Decision = "send"
	DecisionMarkPending         Decision = "mark-pending"
	DecisionApprove             Decision = "approve"
	DecisionHold                Decision = "hold"
	DecisionReturn              Decision = "return"
	DecisionReleaseToInputter   Decision = "release-to-inputter"
	DecisionReleaseToAuthorizer Decision = "release-to-authorizer"
	DecisionResubmit            Decision = "resubmit"
)

// Owner says who among the actor's role may apply a transition.
type Owner string

const (
	// OwnerInputter requires the actor to be the record's inputter.
	OwnerInputter Owner = "inputter"
	// OwnerAuthorizer requires the actor to be the record's authorizer.
	OwnerAuthorizer Owner = "authorizer"
	// OwnerAny admits any actor holding the role.
	OwnerAny Owner = "any"
)

// reviewFields are the annotations an authorizer may touch while
// reviewing a task.
var reviewFields = []string{"md_ref", "comm_amount", "comm_status", "comm_chg_ref", "postage_number", "to_be_started_on"}

// Transition is one edge of the lifecycle.
type Transition struct {
	Decision Decision      `json:"decision"`
	Role     models.Role   `json:"role"`
	From     models.Status `json:"from"`
	To       models.Status `json:"to"`
	Owner    Owner         `json:"owner"`
	Action   role.Action   `json:"action"`
	// Fields lists the columns a request may update alongside.
	Fields []string `json:"fields"`
	// Reason marks transitions that record pending_reason.
	Reason bool `json:"reason"`
}

type key struct {
	role     models.Role
	from     models.Status
	decision Decision
}

var transitions = []Transition{
	{DecisionSend, models.RoleInputter, models.StatusActive, models.StatusReadyForAuth, OwnerInputter, role.ActionSend, nil, false},
	{DecisionMarkPending, models.RoleInputter, models.StatusActive, models.StatusPending, OwnerInputter, role.ActionMarkPending, nil, true},
	{DecisionApprove, models.RoleAuthorizer, models.StatusReadyForAuth, models.StatusCompleted, OwnerAuthorizer, role.ActionApprove, reviewFields, false},
	{DecisionHold, models.RoleAuthorizer, models.StatusReadyForAuth, models.StatusPending, OwnerAuthorizer, role.ActionHold, reviewFields, true},
	{DecisionReturn, models.RoleAuthorizer, models.StatusReadyForAuth, models.StatusActive, OwnerAuthorizer, role.ActionReturn, reviewFields, true},
	{DecisionReleaseToInputter, models.RoleAuthorizer, models.StatusPending, models.StatusActive, OwnerAny, role.ActionRelease,
		[]string{"md_ref", "cbe_serial", "comm_amount", "file_sent", "original_recvd"}, true},
	{DecisionReleaseToAuthorizer, models.RoleAuthorizer, models.StatusPending, models.StatusReadyForAuth, OwnerAny, role.ActionRelease,
		[]string{"md_ref", "cbe_serial", "comm_amount", "file_sent", "original_recvd"}, true},
	{DecisionResubmit, models.RoleInputter, models.StatusPending, models.StatusReadyForAuth, OwnerInputter, role.ActionResubmit,
		[]string{"md_ref", "comm_status", "comm_chg_ref"}, false},
}

var table = func() map[key]Transition {
	m := make(map[key]Transition, len(transitions))
	for _, t := range transitions {
		m[key{t.Role, t.From, t.Decision}] = t
	}
	return m
}()

// Transitions returns the lifecycle table.
func Transitions() []Transition {
	return append([]Transition(nil), transitions...)
}

// ParseDecision matches s against the known decisions, ignoring
// case and separators, so "ReleaseToInputter" and
// "release_to_inputter" both name DecisionReleaseToInputter.
func ParseDecision(s string) (Decision, error) {
	want := squash(s)
	for _, t := range transitions {
		if squash(string(t.Decision)) == want {
			return t.Decision, nil
		}
	}
	return "", lgerr.Validationf("unknown decision %q", s)
}

var separators = strings.NewReplacer("-", "", "_", "", " ", "")

func squash(s string) string {
	return separators.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Request carries a decision and the values that go with it.
type Request struct {
	Decision Decision `json:"decision"`
	// Authorizer is the reviewer chosen when sending a task.
	Authorizer string `json:"authorizer,omitempty"`
	// Reason becomes pending_reason on transitions that record one.
	Reason string `json:"reason,omitempty"`
	// FileSentConfirmed must be set to approve.
	FileSentConfirmed bool              `json:"file_sent_confirmed,omitempty"`
	Updates           map[string]string `json:"updates,omitempty"`
}

type Engine struct {
	Clock    lgdate.Clock
	Location *time.Location
	IDs      taskid.Generator
}

// New returns an engine stamping dates in loc.
func New(ids taskid.Generator, clock lgdate.Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{Clock: clock, Location: loc, IDs: ids}
}

// Today is the current date in the engine's timezone.
func (e *Engine) Today() string {
	return lgdate.Today(e.Clock, e.Location)
}

// Apply validates req against rec and returns the transitioned copy.
// rec itself is never modified, whether or not Apply succeeds.
func (e *Engine) Apply(rec *models.TaskRecord, actor role.Actor, req Request) (*models.TaskRecord, Transition, error) {
	if err := actor.Validate(); err != nil {
		return nil, Transition{}, err
	}

	t, err := lookup(rec, actor, req.Decision)
	if err != nil {
		return nil, Transition{}, err
	}
	if err := role.Check(actor, t.Action); err != nil {
		return nil, t, err
	}
	if err := owns(rec, actor, t.Owner); err != nil {
		return nil, t, err
	}

	if t.Decision == DecisionApprove && !req.FileSentConfirmed {
		return nil, t, lgerr.Validationf("approving %s requires file sent confirmation", rec.TaskID)
	}

	next := rec.Clone()
	if err := applyUpdates(next, req.Updates, t.Fields); err != nil {
		return nil, t, err
	}

	switch t.Decision {
	case DecisionSend:
		to := strings.TrimSpace(req.Authorizer)
		if to == "" {
			to = next.Authorizer
		}
		if to == "" {
			return nil, t, lgerr.Validationf("an authorizer must be chosen to send %s", rec.TaskID)
		}
		next.Authorizer = to
	case DecisionApprove:
		next.FileSent = true
	}

	if t.Reason {
		reason := strings.TrimSpace(req.Reason)
		// a release without a new reason keeps the recorded one
		if reason != "" || !t.Releases() {
			next.PendingReason = reason
		}
	}
	if next.OriginalRecvd && !rec.OriginalRecvd {
		e.markOriginal(next, "")
	}

	next.Status = t.To
	return next, t, nil
}

func lookup(rec *models.TaskRecord, actor role.Actor, d Decision) (Transition, error) {
	if t, ok := table[key{actor.Role, rec.Status, d}]; ok {
		return t, nil
	}

	var known bool
	for _, t := range transitions {
		if t.Decision != d {
			continue
		}
		known = true
		if t.Role == actor.Role {
			return Transition{}, lgerr.Validationf("cannot %s task %s in status %q", d, rec.TaskID, rec.Status)
		}
	}
	if !known {
		return Transition{}, lgerr.Validationf("unknown decision %q", d)
	}
	return Transition{}, lgerr.Forbiddenf("%s may not %s", actor.Role, d)
}

func owns(rec *models.TaskRecord, actor role.Actor, o Owner) error {
	switch o {
	case OwnerInputter:
		if rec.Inputter != actor.User {
			return lgerr.Forbiddenf("task %s is assigned to inputter %q", rec.TaskID, rec.Inputter)
		}
	case OwnerAuthorizer:
		if rec.Authorizer != actor.User {
			return lgerr.Forbiddenf("task %s is assigned to authorizer %q", rec.TaskID, rec.Authorizer)
		}
	}
	return nil
}

// NewTask holds the fields an authorizer supplies when assigning a task.
type NewTask struct {
	LGNumber    string          `json:"lg_number"`
	ReqType     string          `json:"req_type"`
	Amount      float64         `json:"amount"`
	Currency    string          `json:"currency"`
	Branch      string          `json:"branch"`
	CIF         string          `json:"cif"`
	Applicant   string          `json:"applicant"`
	Beneficiary string          `json:"beneficiary"`
	LGType      string          `json:"lg_type"`
	PostType    models.PostType `json:"post_type"`
	MDRef       string          `json:"md_ref"`
	CommChgRef  string          `json:"comm_chg_ref"`
	Inputter    string          `json:"inputter"`
}

// Create builds a new Active task from in. records must be a fresh
// read of the table: it seeds both the running total and the id.
func (e *Engine) Create(records models.TaskRecords, actor role.Actor, in NewTask) (*models.TaskRecord, history.Result, error) {
	if err := role.Check(actor, role.ActionCreate); err != nil {
		return nil, history.Result{}, err
	}

	in.LGNumber = strings.TrimSpace(in.LGNumber)
	if in.LGNumber == "" {
		return nil, history.Result{}, lgerr.Validationf("lg_number is required")
	}
	if in.Amount < 0 {
		return nil, history.Result{}, lgerr.Validationf("amount must not be negative")
	}

	switch in.PostType {
	case "":
		in.PostType = models.PostTypeOriginal
	case models.PostTypeOriginal, models.PostTypeCopy:
	default:
		return nil, history.Result{}, lgerr.Validationf("post_type %q must be %s or %s", in.PostType, models.PostTypeOriginal, models.PostTypeCopy)
	}

	hist := history.Resolve(records, in.LGNumber)

	rec := &models.TaskRecord{
		TaskID:       e.IDs.Next(records),
		AssignedDate: e.Today(),
		Branch:       strings.TrimSpace(in.Branch),
		PostType:     in.PostType,
		Inputter:     strings.TrimSpace(in.Inputter),
		ReqType:      strings.TrimSpace(in.ReqType),
		CIF:          strings.TrimSpace(in.CIF),
		Applicant:    strings.TrimSpace(in.Applicant),
		Beneficiary:  strings.TrimSpace(in.Beneficiary),
		Amount:       in.Amount,
		CurrentTotal: history.NextTotal(in.ReqType, hist.PrevTotal, in.Amount),
		Currency:     strings.TrimSpace(in.Currency),
		LGNumber:     in.LGNumber,
		LGType:       strings.TrimSpace(in.LGType),
		Authorizer:   actor.User,
		MDRef:        strings.TrimSpace(in.MDRef),
		CommChgRef:   strings.TrimSpace(in.CommChgRef),
		Status:       models.StatusActive,
	}

	if existing, _ := records.Find(rec.TaskID); existing != nil {
		return nil, hist, lgerr.Conflictf("task id %s already exists", rec.TaskID)
	}

	return rec, hist, nil
}

// editActiveFields are the columns an authorizer may change on an
// Active task without moving it.
var editActiveFields = []string{
	"inputter", "md_ref", "comm_chg_ref", "cbe_serial", "comm_amount",
	"file_sent", "comm_status", "postage_number",
}

// EditActive updates the annotations of an Active task and may hand
// it to another inputter. The status is unchanged.
func (e *Engine) EditActive(rec *models.TaskRecord, actor role.Actor, updates map[string]string) (*models.TaskRecord, error) {
	if err := role.Check(actor, role.ActionEditActive); err != nil {
		return nil, err
	}
	if rec.Status != models.StatusActive {
		return nil, lgerr.Validationf("task %s is %q, only Active tasks can be edited", rec.TaskID, rec.Status)
	}

	next := rec.Clone()
	if err := applyUpdates(next, updates, editActiveFields); err != nil {
		return nil, err
	}
	return next, nil
}

// ReceiveOriginal records the arrival of the physical original for a
// task posted as a copy. A blank date means today.
func (e *Engine) ReceiveOriginal(rec *models.TaskRecord, actor role.Actor, date string) (*models.TaskRecord, error) {
	if err := role.Check(actor, role.ActionReceiveOriginal); err != nil {
		return nil, err
	}
	if !rec.MissingOriginal() {
		return nil, lgerr.Validationf("task %s is not waiting for an original", rec.TaskID)
	}
	if strings.TrimSpace(date) != "" {
		if _, err := lgdate.Parse(date); err != nil {
			return nil, lgerr.Validationf("%v", err)
		}
	}

	next := rec.Clone()
	next.OriginalRecvd = true
	e.markOriginal(next, date)
	return next, nil
}

func (e *Engine) markOriginal(r *models.TaskRecord, date string) {
	r.PostType = models.PostTypeOriginal
	if date = lgdate.Normalize(date); date == "" {
		date = e.Today()
	}
	r.OriginalRecvDate = date
}

// String renders a transition for listings.
// Releases reports whether t takes a task out of Pending.
func (t Transition) Releases() bool {
	return t.Decision == DecisionReleaseToInputter || t.Decision == DecisionReleaseToAuthorizer
}

func (t Transition) String() string {
	return fmt.Sprintf("%s: %s %s -> %s (%s)", t.Decision, t.Role, t.From, t.To, t.Owner)
}
