package operations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocaged/internal/operations"
)

var epoch = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStepStateTransitions(t *testing.T) {
	s := operations.NewStepState("load", "Load")
	assert.Equal(t, operations.StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start(epoch)
	assert.Equal(t, operations.StepStatusActive, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Complete(epoch.Add(3 * time.Second))
	assert.Equal(t, operations.StepStatusCompleted, s.GetStatus())
	assert.Equal(t, 3*time.Second, s.Duration())
}

func TestStepStateFailAndSkip(t *testing.T) {
	failed := operations.NewStepState("enrich", "Enrich")
	failed.Start(epoch)
	failed.Fail(epoch.Add(time.Second), errors.New("boom"))
	assert.Equal(t, operations.StepStatusFailed, failed.GetStatus())
	assert.Equal(t, "boom", failed.Error)

	skipped := operations.NewStepState("export", "Export")
	skipped.Skip(epoch, "step enrich failed")
	assert.Equal(t, operations.StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "step enrich failed", skipped.Message)
}

func TestStepStateSnapshotIsIndependent(t *testing.T) {
	s := operations.NewStepState("scope", "Scope")
	s.SetMetadata(operations.MetaRows, 10)

	snap := s.Snapshot()
	s.SetMetadata(operations.MetaRows, 20)

	assert.Equal(t, 10, snap.Metadata[operations.MetaRows])
	assert.Equal(t, 20, s.Snapshot().Metadata[operations.MetaRows])
}

func TestRunStateLifecycle(t *testing.T) {
	run := operations.NewRunState("run-1", epoch)
	assert.Equal(t, operations.RunStatusPending, run.GetStatus())

	run.SetStep("a", operations.NewStepState("a", "A"))
	run.SetStep("b", operations.NewStepState("b", "B"))
	run.SetStep("a", operations.NewStepState("a", "A again"))

	steps := run.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "a", steps[0].ID)
	assert.Equal(t, "A again", steps[0].Name)
	assert.Equal(t, "b", steps[1].ID)

	run.Start(epoch)
	assert.Equal(t, operations.RunStatusRunning, run.GetStatus())
	assert.False(t, run.HasFailures())

	run.GetStep("b").Fail(epoch, errors.New("bad"))
	assert.True(t, run.HasFailures())

	run.Fail(epoch.Add(time.Minute), errors.New("bad"))
	assert.Equal(t, operations.RunStatusFailed, run.GetStatus())
	assert.Equal(t, time.Minute, run.Duration())
	assert.EqualError(t, run.Error, "bad")
}

func TestRunStateCancel(t *testing.T) {
	run := operations.NewRunState("run-2", epoch)
	run.Start(epoch)
	run.Cancel(epoch.Add(time.Second), errors.New("interrupted"))

	assert.Equal(t, operations.RunStatusCancelled, run.GetStatus())
	assert.Equal(t, time.Second, run.Duration())
}
