// Package history reconstructs the running balance of a guarantee
// from the tasks recorded against its lg_number.
package history

import (
	"strings"

	"github.com/caesium-cloud/lgflow/internal/models"
	"github.com/caesium-cloud/lgflow/internal/snapshot"
	"github.com/caesium-cloud/lgflow/pkg/amount"
)

// Result is the carried-forward state of a guarantee.
type Result struct {
	LGNumber  string             `json:"lg_number"`
	PrevTotal float64            `json:"prev_total"`
	Last      *models.TaskRecord `json:"last,omitempty"`
	Found     bool               `json:"found"`
	// Coerced is set when the balance was read from a cell that did
	// not parse, so a zero PrevTotal is bad data rather than no history.
	Coerced bool `json:"coerced"`
}

// Resolve picks the most recently inserted record for lgNumber and
// derives the previous total from it. A zero current_total falls back
// to the record's amount.
func Resolve(records models.TaskRecords, lgNumber string) Result {
	lgNumber = strings.TrimSpace(lgNumber)
	res := Result{LGNumber: lgNumber}
	if lgNumber == "" {
		return res
	}

	for i := len(records) - 1; i >= 0; i-- {
		if strings.TrimSpace(records[i].LGNumber) != lgNumber {
			continue
		}
		last := records[i]
		res.Found = true
		res.Last = last.Clone()
		res.PrevTotal = last.CurrentTotal
		if res.PrevTotal == 0 {
			res.PrevTotal = last.Amount
		}
		break
	}

	return res
}

// Flag marks the result as coerced when the cell its balance came
// from was coerced on load.
func (r Result) Flag(coerced []snapshot.Coercion) Result {
	if r.Last == nil {
		return r
	}
	for _, c := range coerced {
		if c.TaskID != r.Last.TaskID {
			continue
		}
		if c.Column == "current_total" || (c.Column == "amount" && r.Last.CurrentTotal == 0) {
			r.Coerced = true
		}
	}
	return r
}

// Direction classifies a request type by its effect on the balance.
type Direction int

const (
	Replace Direction = iota
	Increase
	Decrease
)

// DirectionOf inspects reqType for the Increase and Decrease markers.
func DirectionOf(reqType string) Direction {
	switch {
	case strings.Contains(reqType, "Increase"):
		return Increase
	case strings.Contains(reqType, "Decrease"):
		return Decrease
	default:
		return Replace
	}
}

// NextTotal computes the balance after a task of reqType posting
// amt is applied to prev.
func NextTotal(reqType string, prev, amt float64) float64 {
	switch DirectionOf(reqType) {
	case Increase:
		return amount.Add(prev, amt)
	case Decrease:
		return amount.Sub(prev, amt)
	default:
		return amt
	}
}

// Step is one task in the life of a guarantee together with the
// balance it should carry.
type Step struct {
	TaskID   string  `json:"task_id"`
	ReqType  string  `json:"req_type"`
	Amount   float64 `json:"amount"`
	Total    float64 `json:"current_total"`
	Expected float64 `json:"expected_total"`
}

// Consistent reports whether the recorded total matches the one
// derived from the previous step.
func (s Step) Consistent() bool {
	return s.Total == s.Expected
}

// Ledger walks every record for lgNumber in insertion order and
// recomputes the running total.
func Ledger(records models.TaskRecords, lgNumber string) []Step {
	lgNumber = strings.TrimSpace(lgNumber)

	var (
		steps []Step
		prev  float64
	)
	for _, r := range records {
		if strings.TrimSpace(r.LGNumber) != lgNumber {
			continue
		}
		step := Step{
			TaskID:   r.TaskID,
			ReqType:  r.ReqType,
			Amount:   r.Amount,
			Total:    r.CurrentTotal,
			Expected: NextTotal(r.ReqType, prev, r.Amount),
		}
		steps = append(steps, step)

		prev = r.CurrentTotal
		if prev == 0 {
			prev = r.Amount
		}
	}
	return steps
}
