package worker

import "time"

// Outcome is the terminal state of a failed job attempt.
type Outcome int

const (
	// OutcomeFailedNoRetry drops the job without retrying (local environment).
	OutcomeFailedNoRetry Outcome = iota
	// OutcomeRetryScheduled reschedules the job after Decision.Delay.
	OutcomeRetryScheduled
	// OutcomeFailedTerminal drops the job because the attempt budget is spent.
	OutcomeFailedTerminal
)

// Decision is the result of applying the retry policy to a failed attempt.
type Decision struct {
	Outcome Outcome
	Delay   time.Duration
}

// RetryPolicy bounds job retries. Backoff is linear: the delay before the
// next attempt is the failed attempt number times the task's base delay.
// Outside retry-capable environments (local) failures are never retried.
type RetryPolicy struct {
	MaxTries    int
	BaseDelay   time.Duration // fallback when a task declares none
	Environment string
}

// OnFailure decides what happens after attempt (1-based) failed.
func (p RetryPolicy) OnFailure(attempt int, baseDelay time.Duration) Decision {
	if baseDelay <= 0 {
		baseDelay = p.BaseDelay
	}

	if attempt >= p.MaxTries {
		return Decision{Outcome: OutcomeFailedTerminal}
	}
	if p.Environment != "local" {
		return Decision{
			Outcome: OutcomeRetryScheduled,
			Delay:   time.Duration(attempt) * baseDelay,
		}
	}
	return Decision{Outcome: OutcomeFailedNoRetry}
}
