package workflow

import (
	"slices"
	"strings"

	"github.com/caesium-cloud/lgflow/internal/lgerr"
	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/pkg/amount"
	"github.com/caesium-cloud/lgflow/pkg/lgdate"
)

// CommStatuses are the accepted values of comm_status.
var CommStatuses = []string{"", "Collected", "Pending", "Due Comm."}

type setter func(r *models.TaskRecord, v string) error

var setters = map[string]setter{
	"md_ref":           func(r *models.TaskRecord, v string) error { r.MDRef = v; return nil },
	"cbe_serial":       func(r *models.TaskRecord, v string) error { r.CBESerial = v; return nil },
	"postage_number":   func(r *models.TaskRecord, v string) error { r.PostageNumber = v; return nil },
	"comm_chg_ref":     func(r *models.TaskRecord, v string) error { r.CommChgRef = v; return nil },
	"to_be_started_on": func(r *models.TaskRecord, v string) error { r.ToBeStartedOn = lgdate.Normalize(v); return nil },
	"pending_reason":   func(r *models.TaskRecord, v string) error { r.PendingReason = v; return nil },
	"inputter":         func(r *models.TaskRecord, v string) error { r.Inputter = v; return nil },
	"comm_amount": func(r *models.TaskRecord, v string) error {
		if !amount.Valid(v) {
			return lgerr.Validationf("comm_amount %q is not a number", v)
		}
		r.CommAmount = amount.Coerce(v)
		return nil
	},
	"comm_status": func(r *models.TaskRecord, v string) error {
		if !slices.Contains(CommStatuses, v) {
			return lgerr.Validationf("comm_status %q is not one of %q", v, CommStatuses)
		}
		r.CommStatus = v
		return nil
	},
	"file_sent": func(r *models.TaskRecord, v string) error {
		b, err := flag("file_sent", v)
		if err != nil {
			return err
		}
		r.FileSent = b
		return nil
	},
	"original_recvd": func(r *models.TaskRecord, v string) error {
		b, err := flag("original_recvd", v)
		if err != nil {
			return err
		}
		r.OriginalRecvd = b
		return nil
	},
}

func flag(field, v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true":
		return true, nil
	case "0", "false", "":
		return false, nil
	}
	return false, lgerr.Validationf("%s %q is not a 0/1 flag", field, v)
}

// applyUpdates writes the whitelisted fields of updates onto r.
func applyUpdates(r *models.TaskRecord, updates map[string]string, allowed []string) error {
	keys := make([]string, 0, len(updates))
	for k := range updates {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		if !slices.Contains(allowed, k) {
			return lgerr.Validationf("field %s cannot be changed here", k)
		}
		if err := setters[k](r, strings.TrimSpace(updates[k])); err != nil {
			return err
		}
	}
	return nil
}
