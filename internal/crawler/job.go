package crawler

import (
	"fmt"
	"sync"
	"time"
)

// State is a step of a job's lifecycle.
type State int

const (
	Pending State = iota
	Connecting
	Authenticated
	AuthFailed
	Enumerating
	Crawling
	Completed
	Failed
)

var stateNames = [...]string{
	Pending:       "pending",
	Connecting:    "connecting",
	Authenticated: "authenticated",
	AuthFailed:    "auth_failed",
	Enumerating:   "enumerating",
	Crawling:      "crawling",
	Completed:     "completed",
	Failed:        "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) Terminal() bool {
	return s == AuthFailed || s == Completed || s == Failed
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var transitions = map[State][]State{
	Pending:       {Connecting},
	Connecting:    {Authenticated, AuthFailed, Failed},
	Authenticated: {Enumerating, Crawling},
	Enumerating:   {Crawling},
	Crawling:      {Completed, Failed},
}

// Job tracks one configured switch through a cycle.
type Job struct {
	mu      sync.Mutex
	Switch  Switch
	state   State
	history []State
	err     error
	started time.Time
	ended   time.Time
}

func NewJob(sw Switch) *Job {
	return &Job{Switch: sw, state: Pending, history: []State{Pending}}
}

// Advance moves the job to next. Transitions the lifecycle does not allow
// are rejected.
func (j *Job) Advance(next State) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, allowed := range transitions[j.state] {
		if allowed == next {
			if j.state == Pending {
				j.started = time.Now()
			}
			j.state = next
			j.history = append(j.history, next)
			if next.Terminal() {
				j.ended = time.Now()
			}
			return nil
		}
	}
	return fmt.Errorf("job %s: illegal transition %s -> %s", j.Switch.IP, j.state, next)
}

// Fail records err and moves the job to the terminal state st.
func (j *Job) Fail(st State, err error) error {
	j.mu.Lock()
	j.err = err
	j.mu.Unlock()
	return j.Advance(st)
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Job) History() []State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]State(nil), j.history...)
}

func (j *Job) Duration() time.Duration {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.ended.IsZero() {
		return 0
	}
	return j.ended.Sub(j.started)
}
