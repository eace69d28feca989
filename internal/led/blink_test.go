package led

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smazurov/tf96ctl/internal/protocol"
)

func TestHalfPeriodFromControl(t *testing.T) {
	tests := []struct {
		control int
		want    time.Duration
	}{
		{0, time.Second},
		{1, 900 * time.Millisecond},
		{5, 500 * time.Millisecond},
		{9, 100 * time.Millisecond},
		{10, 0},
	}
	for _, tt := range tests {
		got, err := HalfPeriodFromControl(tt.control)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "control %d", tt.control)
	}

	for _, bad := range []int{-1, 11} {
		_, err := HalfPeriodFromControl(bad)
		assert.True(t, protocol.IsRange(err), "control %d", bad)
	}
}

func TestNewBlinkState(t *testing.T) {
	b := NewBlinkState()
	assert.False(t, b.Enabled)
	assert.Equal(t, PhaseOff, b.Phase)
	assert.Equal(t, time.Second, b.HalfPeriod)
}

func TestTickDisabledDoesNothing(t *testing.T) {
	b := NewBlinkState()
	w := &writeRecorder{}

	toggled, err := b.Tick(time.Now(), w)
	require.NoError(t, err)
	assert.False(t, toggled)
	assert.Empty(t, w.writes)
}

func TestTickToggles(t *testing.T) {
	b := NewBlinkState()
	require.NoError(t, b.SetControl(5))
	b.SetEnabled(true)
	w := &writeRecorder{}
	start := time.Unix(1000, 0)

	// first tick after enabling switches immediately
	toggled, err := b.Tick(start, w)
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, PhaseOn, b.Phase)

	toggled, err = b.Tick(start.Add(500*time.Millisecond), w)
	require.NoError(t, err)
	assert.True(t, toggled)
	assert.Equal(t, PhaseOff, b.Phase)

	assert.Equal(t, []registerWrite{
		{RegBlinkControl, 0x43},
		{RegBlinkControl, 0x41},
	}, w.writes)
}

func TestTickIdempotentWithinHalfPeriod(t *testing.T) {
	b := NewBlinkState()
	require.NoError(t, b.SetControl(0))
	b.SetEnabled(true)
	w := &writeRecorder{}
	start := time.Unix(1000, 0)

	_, err := b.Tick(start, w)
	require.NoError(t, err)
	phase := b.Phase

	for ms := 0; ms < 1000; ms += 10 {
		toggled, err := b.Tick(start.Add(time.Duration(ms)*time.Millisecond), w)
		require.NoError(t, err)
		assert.False(t, toggled, "elapsed %dms", ms)
	}
	assert.Equal(t, phase, b.Phase)
	assert.Len(t, w.writes, 1)
}

func TestTickZeroHalfPeriodTogglesEveryTick(t *testing.T) {
	b := NewBlinkState()
	require.NoError(t, b.SetControl(10))
	b.SetEnabled(true)
	w := &writeRecorder{}
	now := time.Unix(1000, 0)

	for i := range 4 {
		toggled, err := b.Tick(now.Add(time.Duration(i)*10*time.Millisecond), w)
		require.NoError(t, err)
		assert.True(t, toggled)
	}
	assert.Len(t, w.writes, 4)
	assert.Equal(t, PhaseOff, b.Phase)
}

func TestTickFailedWriteKeepsState(t *testing.T) {
	b := NewBlinkState()
	b.SetEnabled(true)
	broken := errors.New("link down")
	w := &writeRecorder{err: broken}

	toggled, err := b.Tick(time.Unix(1000, 0), w)
	assert.ErrorIs(t, err, broken)
	assert.False(t, toggled)
	assert.Equal(t, PhaseOff, b.Phase)
	assert.True(t, b.LastToggle.IsZero())
}

func TestDisableLeavesPhase(t *testing.T) {
	b := NewBlinkState()
	b.SetEnabled(true)
	w := &writeRecorder{}

	_, err := b.Tick(time.Unix(1000, 0), w)
	require.NoError(t, err)
	b.SetEnabled(false)

	toggled, err := b.Tick(time.Unix(1010, 0), w)
	require.NoError(t, err)
	assert.False(t, toggled)
	assert.Equal(t, PhaseOn, b.Phase)
	assert.Len(t, w.writes, 1)
}

func TestSetControlRejectsOutOfRange(t *testing.T) {
	b := NewBlinkState()
	err := b.SetControl(11)
	assert.True(t, protocol.IsRange(err))
	assert.Equal(t, time.Second, b.HalfPeriod)
	assert.Equal(t, 0, b.Control)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "on", PhaseOn.String())
	assert.Equal(t, "off", PhaseOff.String())
	assert.Equal(t, PhaseOn, PhaseOff.Toggle())
	assert.Equal(t, PhaseOff, PhaseOn.Toggle())
}
