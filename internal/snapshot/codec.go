package snapshot

import (
	"strconv"
	"strings"

	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/pkg/amount"
)

// Coercion records a numeric cell that did not parse and was read as 0.
type Coercion struct {
	TaskID string `json:"task_id"`
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Decode turns a raw table into records. Missing columns read as
// empty, numeric columns are coerced, unknown columns are dropped.
func Decode(t *tablestore.Table) (models.TaskRecords, []Coercion) {
	if t == nil {
		return models.TaskRecords{}, nil
	}

	var (
		idx       = t.Index()
		records   = make(models.TaskRecords, 0, len(t.Rows))
		coercions []Coercion
	)

	for _, row := range t.Rows {
		get := func(col string) string {
			if i, ok := idx[col]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}

		r := &models.TaskRecord{
			TaskID:           get("task_id"),
			AssignedDate:     get("assigned_date"),
			Branch:           get("branch"),
			PostType:         models.PostType(get("post_type")),
			Inputter:         get("inputter"),
			ReqType:          get("req_type"),
			CIF:              get("cif"),
			Applicant:        get("applicant"),
			Beneficiary:      get("beneficiary"),
			Currency:         get("currency"),
			LGNumber:         get("lg_number"),
			LGType:           get("lg_type"),
			CBESerial:        get("cbe_serial"),
			Authorizer:       get("authorizer"),
			MDRef:            get("md_ref"),
			PostageNumber:    get("postage_number"),
			CommStatus:       get("comm_status"),
			CommChgRef:       get("comm_chg_ref"),
			PendingReason:    get("pending_reason"),
			ToBeStartedOn:    get("to_be_started_on"),
			OriginalRecvDate: get("original_recv_date"),
		}

		status := get("status")
		if parsed, ok := models.ParseStatus(status); ok {
			r.Status = parsed
		} else {
			r.Status = models.Status(status)
		}

		numeric := func(col string) float64 {
			v := get(col)
			if !amount.Valid(v) {
				coercions = append(coercions, Coercion{TaskID: r.TaskID, Column: col, Value: v})
			}
			return amount.Coerce(v)
		}

		r.Amount = numeric("amount")
		r.CurrentTotal = numeric("current_total")
		r.CommAmount = numeric("comm_amount")
		flag := func(col string) bool {
			v := get(col)
			if !amount.Valid(v) && !amount.ValidFlag(v) {
				coercions = append(coercions, Coercion{TaskID: r.TaskID, Column: col, Value: v})
			}
			return amount.Flag(v)
		}

		r.FileSent = flag("file_sent")
		r.OriginalRecvd = flag("original_recvd")

		if v, err := strconv.ParseInt(strings.TrimSpace(get("version")), 10, 64); err == nil {
			r.Version = v
		}

		records = append(records, r)
	}

	return records, coercions
}

// Encode renders records in the canonical column order.
func Encode(records models.TaskRecords) *tablestore.Table {
	t := &tablestore.Table{
		Columns: append([]string(nil), models.Columns...),
		Rows:    make([][]string, 0, len(records)),
	}

	for _, r := range records {
		t.Rows = append(t.Rows, EncodeRecord(r))
	}

	return t
}

// EncodeRecord renders one record as a row in models.Columns order.
func EncodeRecord(r *models.TaskRecord) []string {
	return []string{
		r.TaskID,
		r.AssignedDate,
		r.Branch,
		string(r.PostType),
		r.Inputter,
		r.ReqType,
		r.CIF,
		r.Applicant,
		r.Beneficiary,
		amount.Format(r.Amount),
		amount.Format(r.CurrentTotal),
		r.Currency,
		r.LGNumber,
		r.LGType,
		r.CBESerial,
		r.Authorizer,
		r.MDRef,
		r.PostageNumber,
		amount.Format(r.CommAmount),
		r.CommStatus,
		r.CommChgRef,
		string(r.Status),
		r.PendingReason,
		r.ToBeStartedOn,
		amount.FlagString(r.FileSent),
		amount.FlagString(r.OriginalRecvd),
		r.OriginalRecvDate,
		strconv.FormatInt(r.Version, 10),
	}
}
