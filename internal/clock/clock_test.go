package clock

import (
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

func TestNewGate(t *testing.T) {
	tests := []struct {
		frequency  uint32
		wantPeriod uint32
		wantErr    bool
	}{
		{500, 2, false},
		{60, 16, false},
		{1000, 1, false},
		{1, 1000, false},
		{0, 0, true},
		{1001, 0, true},
	}

	for _, tt := range tests {
		gate, err := NewGate(tt.frequency)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.wantPeriod, gate.Period())
	}
}

func TestGate_Fire(t *testing.T) {
	gate, err := NewGate(60)
	assert.NoError(t, err)

	assert.False(t, gate.Fire(0))
	assert.False(t, gate.Fire(15))
	assert.True(t, gate.Fire(16))
	assert.False(t, gate.Fire(16))
	assert.False(t, gate.Fire(31))
	assert.True(t, gate.Fire(32))
}

func TestGate_NoCatchUp(t *testing.T) {
	gate, err := NewGate(500)
	assert.NoError(t, err)

	// a long stall fires only once
	assert.True(t, gate.Fire(1000))
	assert.False(t, gate.Fire(1000))
	assert.False(t, gate.Fire(1001))
	assert.True(t, gate.Fire(1002))
}

func TestGate_TickWrap(t *testing.T) {
	gate, err := NewGate(500)
	assert.NoError(t, err)

	assert.True(t, gate.Fire(0xFFFFFFFE))
	assert.True(t, gate.Fire(0))
	assert.False(t, gate.Fire(1))
}

func TestMonotonic(t *testing.T) {
	m := NewMonotonic(time.Millisecond)
	first := m.Ticks()
	m.Wait()
	assert.True(t, m.Ticks() >= first+1)
}
