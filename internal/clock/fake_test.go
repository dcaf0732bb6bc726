package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFake_AfterAdvancesAndRecords(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFake(start)

	got := <-f.After(time.Second)
	assert.Equal(t, start.Add(time.Second), got)
	assert.Equal(t, start.Add(time.Second), f.Now())

	<-f.After(2 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.Waits())
	assert.Equal(t, 3*time.Second, f.Waited())
}

func TestFake_AdvanceDoesNotRecord(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f := NewFake(start)
	f.Advance(time.Minute)

	assert.Equal(t, start.Add(time.Minute), f.Now())
	assert.Empty(t, f.Waits())
}

func TestReal_Now(t *testing.T) {
	before := time.Now()
	now := Real().Now()
	assert.False(t, now.Before(before))
}
