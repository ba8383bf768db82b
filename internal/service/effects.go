// Package service implements each user-facing write as one primary write
// followed by best-effort side writes. Only the primary write decides the
// result: side writes (history rows, usage logs, audit logs, outbox
// notifications) are attempted in order, a failure is logged and recorded in
// Outcome, and nothing already written is rolled back.
package service

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Outcome describes which side writes did not make it.
type Outcome struct {
	Skipped []string
}

// Complete reports whether every side write succeeded.
func (o Outcome) Complete() bool {
	return len(o.Skipped) == 0
}

type sideWrite struct {
	name string
	fn   func(context.Context) error
}

func side(name string, fn func(context.Context) error) sideWrite {
	return sideWrite{name: name, fn: fn}
}

func bestEffort(ctx context.Context, fields logrus.Fields, writes ...sideWrite) Outcome {
	var out Outcome
	for _, w := range writes {
		if err := w.fn(ctx); err != nil {
			logrus.WithFields(fields).WithFields(logrus.Fields{
				"side_write": w.name,
				"error":      err.Error(),
			}).Warn("Side write failed")
			out.Skipped = append(out.Skipped, w.name)
		}
	}
	return out
}
