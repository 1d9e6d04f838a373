package schema

import (
	"github.com/caesium-cloud/lgflow/api/rest/service/task"
	"github.com/caesium-cloud/lgflow/internal/history"
	"github.com/caesium-cloud/lgflow/internal/models"
)

type historyStep struct {
	TaskID     string  `json:"task_id"`
	ReqType    string  `json:"req_type"`
	Amount     float64 `json:"amount"`
	Total      float64 `json:"current_total"`
	Expected   float64 `json:"expected_total"`
	Consistent bool    `json:"consistent"`
}

func stepView(s history.Step) historyStep {
	return historyStep{
		TaskID:     s.TaskID,
		ReqType:    s.ReqType,
		Amount:     s.Amount,
		Total:      s.Total,
		Expected:   s.Expected,
		Consistent: s.Consistent(),
	}
}

// historyResult flattens task.HistoryResponse so the default
// resolver finds every field by its json name without walking
// embedded structs.
type historyResult struct {
	LGNumber  string             `json:"lg_number"`
	PrevTotal float64            `json:"prev_total"`
	Found     bool               `json:"found"`
	Coerced   bool               `json:"coerced"`
	Last      *models.TaskRecord `json:"last"`
	Ledger    []historyStep      `json:"ledger"`
}

func historyView(resp *task.HistoryResponse) historyResult {
	out := historyResult{
		LGNumber:  resp.LGNumber,
		PrevTotal: resp.PrevTotal,
		Found:     resp.Found,
		Coerced:   resp.Coerced,
		Last:      resp.Last,
		Ledger:    make([]historyStep, 0, len(resp.Ledger)),
	}
	for _, s := range resp.Ledger {
		out.Ledger = append(out.Ledger, stepView(s))
	}
	return out
}
