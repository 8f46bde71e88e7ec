package backoff

import (
	"time"
)

// Policy bounds a repeated wait: at most MaxAttempts iterations, pausing
// Initial between them, growing by Factor up to Max when Factor > 1.
// Sleep is swappable so tests can run on a virtual clock.
type Policy struct {
	MaxAttempts int
	Initial     time.Duration
	Max         time.Duration
	Factor      float64
	Sleep       func(time.Duration)
}

// Fixed returns a policy with a constant pause between attempts.
func Fixed(attempts int, pause time.Duration) Policy {
	return Policy{MaxAttempts: attempts, Initial: pause}
}

// Exponential returns a policy whose pause grows by factor, capped at max.
func Exponential(attempts int, initial, max time.Duration, factor float64) Policy {
	return Policy{MaxAttempts: attempts, Initial: initial, Max: max, Factor: factor}
}

func (p Policy) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// Run calls fn up to MaxAttempts times, pausing between calls. It stops
// early when fn reports no further work or returns an error. The loop is
// always bounded; exhausting MaxAttempts is not an error.
func (p Policy) Run(fn func(attempt int) (again bool, err error)) error {
	delay := p.Initial
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		again, err := fn(attempt)
		if err != nil {
			return err
		}
		if !again {
			return nil
		}
		p.sleep(delay)
		if p.Factor > 1 {
			delay = time.Duration(float64(delay) * p.Factor)
			if p.Max > 0 && delay > p.Max {
				delay = p.Max
			}
		}
	}
	return nil
}
