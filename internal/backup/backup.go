// Package backup exports the task table to a second store on a cron
// schedule.
package backup

import (
	"context"
	"strings"
	"time"

	"github.com/caesium-cloud/lgflow/internal/metrics"
	"github.com/caesium-cloud/lgflow/internal/tablestore"
	"github.com/caesium-cloud/lgflow/pkg/log"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
)

type Backup struct {
	expr     string
	schedule cron.Schedule
	location *time.Location
	src      tablestore.Store
	dst      tablestore.Store
	now      func() time.Time
}

// New parses a five field cron expression. Ticks are computed in loc
// when it is non-nil.
func New(expr string, loc *time.Location, src, dst tablestore.Store) (*Backup, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("backup schedule is empty")
	}

	parser := cron.NewParser(
		cron.Minute |
			cron.Hour |
			cron.Dom |
			cron.Month |
			cron.Dow,
	)

	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid backup schedule %q", expr)
	}

	return &Backup{
		expr:     expr,
		schedule: sched,
		location: loc,
		src:      src,
		dst:      dst,
		now:      time.Now,
	}, nil
}

// Listen fires the backup on every tick until ctx is done.
func (b *Backup) Listen(ctx context.Context) {
	log.Info("backup scheduled", "schedule", b.expr)

	for {
		select {
		case <-time.After(time.Until(b.nextTick())):
			if err := b.Fire(ctx); err != nil {
				log.Error("backup failure", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Fire copies the source table to the destination once.
func (b *Backup) Fire(ctx context.Context) error {
	start := b.now()

	rows, err := tablestore.Copy(ctx, b.dst, b.src)
	metrics.BackupsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return errors.Wrap(err, "failed to copy task table")
	}

	log.Info("backup complete", "rows", rows, "duration", b.now().Sub(start))
	return nil
}

func (b *Backup) nextTick() time.Time {
	base := b.now()
	if b.location != nil {
		base = base.In(b.location)
	}
	return b.schedule.Next(base)
}
