package reconcile

import (
	"fmt"

	"github.com/shintoio/ama/internal/prompt"
	"github.com/shintoio/ama/pkg/logger"
)

// phase is a state of the extras-resolution loop.
type phase int

const (
	prompting phase = iota
	deciding
	terminated
)

func (p phase) String() string {
	switch p {
	case prompting:
		return "prompting"
	case deciding:
		return "deciding"
	case terminated:
		return "terminated"
	}
	return "unknown"
}

// resolveExtras asks the decider about each extra in order. Keep and Delete
// act on one file and move to the next; KeepAll and DeleteAll act on the
// current file and every later one, then stop asking.
func (r *Reconciler) resolveExtras(extras []string, report *Report) error {
	var (
		state    = prompting
		next     int
		decision prompt.Decision
	)
	for state != terminated {
		logger.Trace("Extras loop", logger.String("phase", state.String()), logger.Int("index", next))
		switch state {
		case prompting:
			if next >= len(extras) {
				state = terminated
				continue
			}
			d, err := r.decider.Decide(extras[next])
			if err != nil {
				return fmt.Errorf("deciding on %s: %w", extras[next], err)
			}
			if !d.Valid() {
				return fmt.Errorf("deciding on %s: unknown decision %v", extras[next], d)
			}
			decision = d
			state = deciding

		case deciding:
			batch := extras[next : next+1]
			if decision.Terminal() {
				batch = extras[next:]
			}
			for _, name := range batch {
				if err := r.apply(decision, name, report); err != nil {
					return err
				}
			}
			next += len(batch)
			if decision.Terminal() {
				state = terminated
			} else {
				state = prompting
			}
		}
	}
	return nil
}

func (r *Reconciler) apply(decision prompt.Decision, name string, report *Report) error {
	if !decision.Deletes() {
		logger.Debug("Keeping source file", logger.String("file", name))
		report.Kept = append(report.Kept, name)
		return nil
	}
	if err := r.fs.Remove(srcPath(name)); err != nil {
		return fmt.Errorf("deleting %s: %w", srcPath(name), err)
	}
	logger.Info("Deleted source file", logger.String("file", name))
	report.Deleted = append(report.Deleted, name)
	return nil
}
