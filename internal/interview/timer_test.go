package interview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_CountsDownAndExpiresOnce(t *testing.T) {
	timer := NewTimer(3)
	assert.False(t, timer.Running())
	assert.Nil(t, timer.AdvanceOneSecond(), "stopped timer emits nothing")

	timer.Start()
	assert.Equal(t, []TimerEvent{{Kind: EventTick, Remaining: 2}}, timer.AdvanceOneSecond())
	assert.Equal(t, []TimerEvent{{Kind: EventTick, Remaining: 1}}, timer.AdvanceOneSecond())

	events := timer.AdvanceOneSecond()
	require.Len(t, events, 2)
	assert.Equal(t, TimerEvent{Kind: EventTick, Remaining: 0}, events[0])
	assert.Equal(t, TimerEvent{Kind: EventExpired, Remaining: 0}, events[1])
	assert.False(t, timer.Running())

	for range 5 {
		assert.Nil(t, timer.AdvanceOneSecond())
	}
	assert.Equal(t, 0, timer.Remaining())
}

func TestTimer_StopHaltsWithoutEvent(t *testing.T) {
	timer := NewTimer(10)
	timer.Start()
	timer.AdvanceOneSecond()
	timer.Stop()

	assert.Nil(t, timer.AdvanceOneSecond())
	assert.Equal(t, 9, timer.Remaining())

	timer.Start()
	assert.Equal(t, []TimerEvent{{Kind: EventTick, Remaining: 8}}, timer.AdvanceOneSecond())
}

func TestTimer_ResetRequiresExplicitStart(t *testing.T) {
	timer := NewTimer(20)
	timer.Start()
	timer.AdvanceOneSecond()

	timer.Reset(60)
	assert.False(t, timer.Running())
	assert.Equal(t, 60, timer.Remaining())
	assert.Equal(t, 60, timer.Limit())
	assert.Nil(t, timer.AdvanceOneSecond())
}

func TestTimer_StartWithNothingRemaining(t *testing.T) {
	timer := NewTimer(0)
	timer.Start()
	assert.False(t, timer.Running())
	assert.Nil(t, timer.AdvanceOneSecond())

	timer.Reset(-5)
	assert.Equal(t, 0, timer.Remaining())
}
