package dag

import (
	"time"

	"github.com/kbukum/snapstudy/stage"
)

// Result holds one outcome per node, in graph declaration order.
type Result struct {
	Outcomes []stage.Outcome
	Duration time.Duration
}

// Get returns the outcome for name.
func (r *Result) Get(name string) (stage.Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == name {
			return o, true
		}
	}
	return stage.Outcome{}, false
}
