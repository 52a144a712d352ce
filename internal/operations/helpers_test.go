package operations_test

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"agrocaged/internal/operations"
)

// fakeStep is a configurable step used to drive the manager
type fakeStep struct {
	operations.BaseStep

	mu          sync.Mutex
	executed    bool
	err         error
	validateErr error
	rows        int
	clock       *clockwork.FakeClock
	advance     time.Duration
	onExecute   func(ctx context.Context, run *operations.RunState) error
}

func newFakeStep(id string, deps ...string) *fakeStep {
	return &fakeStep{BaseStep: operations.NewBaseStep(id, "Step "+id, deps...)}
}

func (s *fakeStep) Validate(*operations.RunState) error {
	return s.validateErr
}

func (s *fakeStep) Execute(ctx context.Context, run *operations.RunState) error {
	s.mu.Lock()
	s.executed = true
	s.mu.Unlock()

	if s.clock != nil {
		s.clock.Advance(s.advance)
	}
	if s.rows > 0 {
		run.GetStep(s.ID()).SetMetadata(operations.MetaRows, s.rows)
	}
	if s.onExecute != nil {
		return s.onExecute(ctx, run)
	}
	return s.err
}

func (s *fakeStep) wasExecuted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executed
}

func registryOf(steps ...operations.Step) *operations.Registry {
	r := operations.NewRegistry()
	for _, s := range steps {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}
