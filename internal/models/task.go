package models

import "strings"

// Columns is the persisted column order of the task table. The
// version column backs optimistic concurrency and always comes last.
var Columns = []string{
	"task_id", "assigned_date", "branch", "post_type", "inputter",
	"req_type", "cif", "applicant", "beneficiary", "amount", "current_total", "currency",
	"lg_number", "lg_type", "cbe_serial", "authorizer", "md_ref",
	"postage_number", "comm_amount", "comm_status", "comm_chg_ref", "status",
	"pending_reason", "to_be_started_on", "file_sent", "original_recvd", "original_recv_date",
	"version",
}

// NumericColumns are coerced to numbers on load.
var NumericColumns = []string{"amount", "current_total", "file_sent", "original_recvd", "comm_amount"}

type Status string

const (
	StatusActive       Status = "Active"
	StatusReadyForAuth Status = "Ready for Auth"
	StatusPending      Status = "Pending"
	StatusCompleted    Status = "Completed"
)

// ParseStatus accepts the persisted display names as well as the
// compact ReadyForAuth spelling.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.Join(strings.Fields(s), "")) {
	case "active":
		return StatusActive, true
	case "readyforauth":
		return StatusReadyForAuth, true
	case "pending":
		return StatusPending, true
	case "completed":
		return StatusCompleted, true
	}
	return Status(s), false
}

// Terminal reports whether no further transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted
}

type PostType string

const (
	PostTypeOriginal PostType = "Original"
	PostTypeCopy     PostType = "Copy"
)

// TaskRecord is one row of the task table: a single event in the
// life of a letter of guarantee.
type TaskRecord struct {
	TaskID           string   `json:"task_id"`
	AssignedDate     string   `json:"assigned_date"`
	Branch           string   `json:"branch"`
	PostType         PostType `json:"post_type"`
	Inputter         string   `json:"inputter"`
	ReqType          string   `json:"req_type"`
	CIF              string   `json:"cif"`
	Applicant        string   `json:"applicant"`
	Beneficiary      string   `json:"beneficiary"`
	Amount           float64  `json:"amount"`
	CurrentTotal     float64  `json:"current_total"`
	Currency         string   `json:"currency"`
	LGNumber         string   `json:"lg_number"`
	LGType           string   `json:"lg_type"`
	CBESerial        string   `json:"cbe_serial"`
	Authorizer       string   `json:"authorizer"`
	MDRef            string   `json:"md_ref"`
	PostageNumber    string   `json:"postage_number"`
	CommAmount       float64  `json:"comm_amount"`
	CommStatus       string   `json:"comm_status"`
	CommChgRef       string   `json:"comm_chg_ref"`
	Status           Status   `json:"status"`
	PendingReason    string   `json:"pending_reason"`
	ToBeStartedOn    string   `json:"to_be_started_on"`
	FileSent         bool     `json:"file_sent"`
	OriginalRecvd    bool     `json:"original_recvd"`
	OriginalRecvDate string   `json:"original_recv_date"`
	Version          int64    `json:"version"`
}

// Clone returns a copy of r that can be mutated independently.
func (r *TaskRecord) Clone() *TaskRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// OwnerRole is the role currently responsible for the record.
// Pending work waits on the inputter's watchlist; completed work
// belongs to the authorizer who approved it.
func (r *TaskRecord) OwnerRole() Role {
	switch r.Status {
	case StatusReadyForAuth, StatusCompleted:
		return RoleAuthorizer
	default:
		return RoleInputter
	}
}

// Owner is the username of the current owner.
func (r *TaskRecord) Owner() string {
	if r.OwnerRole() == RoleAuthorizer {
		return r.Authorizer
	}
	return r.Inputter
}

// MissingOriginal reports whether the physical original is still
// outstanding for the record.
func (r *TaskRecord) MissingOriginal() bool {
	return r.PostType == PostTypeCopy && !r.OriginalRecvd
}

type TaskRecords []*TaskRecord

// Find returns the record with id and its index, or -1.
func (rs TaskRecords) Find(id string) (*TaskRecord, int) {
	for i, r := range rs {
		if r.TaskID == id {
			return r, i
		}
	}
	return nil, -1
}

// Filter returns the records matching keep, in table order.
func (rs TaskRecords) Filter(keep func(*TaskRecord) bool) TaskRecords {
	out := make(TaskRecords, 0, len(rs))
	for _, r := range rs {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
