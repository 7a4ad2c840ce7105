package job

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/docflow/docflow/errors"
	"github.com/docflow/docflow/extract"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{"pending", "processing", "completed", "failed", "cancelled"} {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("paused"))
	assert.False(t, IsValidStatus(""))
}

func TestNewRecordDefaults(t *testing.T) {
	rec := NewRecord("contract.pdf")

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, StatusPending, rec.Status)
	assert.Equal(t, 0, rec.Progress)
	assert.Equal(t, "contract.pdf", rec.DocumentName)
	assert.Nil(t, rec.StartedAt)
	assert.Nil(t, rec.CompletedAt)
	assert.False(t, rec.CancelRequested)
}

func TestRecordIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		rec := NewRecord("doc.pdf")
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		seen[rec.ID] = true
	}
}

func TestRecordLifecycleMutators(t *testing.T) {
	rec := NewRecord("doc.pdf")

	rec.Start()
	assert.Equal(t, StatusProcessing, rec.Status)
	assert.NotNil(t, rec.StartedAt)

	result := &extract.Result{RawText: "text", Fields: extract.Fields{Number: "001/2024"}}
	rec.Complete(result)
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, 100, rec.Progress)
	assert.Same(t, result, rec.Result)
	assert.Empty(t, rec.Error)
	assert.NotNil(t, rec.CompletedAt)
}

func TestRecordFailSetsErrorOnly(t *testing.T) {
	rec := NewRecord("doc.pdf")
	rec.Start()
	rec.Fail(errors.New("engine exploded"))

	assert.Equal(t, StatusFailed, rec.Status)
	assert.Contains(t, rec.Error, "engine exploded")
	assert.Nil(t, rec.Result)
	assert.NotNil(t, rec.CompletedAt)
}

func TestRecordCancelKeepsReason(t *testing.T) {
	rec := NewRecord("doc.pdf")
	rec.Cancel("cancelled by user")

	assert.Equal(t, StatusCancelled, rec.Status)
	assert.Equal(t, "cancelled by user", rec.Message)
	assert.Nil(t, rec.Result)
	assert.Empty(t, rec.Error)
}

func TestProgressIsMonotone(t *testing.T) {
	rec := NewRecord("doc.pdf")
	rec.Start()

	rec.UpdateProgress(40, "OCR")
	assert.Equal(t, 40, rec.Progress)

	// Stale update must not move progress backwards
	rec.UpdateProgress(20, "late update")
	assert.Equal(t, 40, rec.Progress)
	assert.Equal(t, "late update", rec.Message)

	rec.UpdateProgress(250, "overshoot")
	assert.Equal(t, 100, rec.Progress)
}

func TestProgressUpdateTouchesTimestamp(t *testing.T) {
	rec := NewRecord("doc.pdf")
	before := rec.UpdatedAt

	time.Sleep(time.Millisecond)
	rec.UpdateProgress(5, "")
	assert.True(t, rec.UpdatedAt.After(before))
}
