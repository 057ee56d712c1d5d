package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	log, err := NewSeeded(1).Generate(p)

	require.NoError(t, err)
	assert.Equal(t, "RSP", log.Joint)
	assert.Equal(t, 1601, log.Len())
	assert.Len(t, log.Cmd, log.Len())
	assert.Len(t, log.Ref, log.Len())
	assert.Len(t, log.Pos, log.Len())
	assert.InDelta(t, 0, log.Cmd[0], 1e-12)
	for _, v := range log.Cmd {
		assert.LessOrEqual(t, v, p.Amplitude+1e-12)
		assert.GreaterOrEqual(t, v, -p.Amplitude-1e-12)
	}
}

func TestGenerate_Lags(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	p.Quantum = 0
	log, err := NewSeeded(1).Generate(p)
	require.NoError(t, err)

	for i := p.RefLag + p.PosLag; i < log.Len(); i++ {
		assert.Equal(t, log.Cmd[i-p.RefLag], log.Ref[i])
		assert.Equal(t, log.Ref[i-p.PosLag], log.Pos[i])
	}
}

func TestGenerate_JitterKeepsTimeIncreasing(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	p.Jitter = 0.9
	log, err := NewSeeded(7).Generate(p)
	require.NoError(t, err)

	for i := 1; i < log.Len(); i++ {
		assert.Greater(t, log.Time[i], log.Time[i-1])
	}
}

func TestGenerate_SeedIsDeterministic(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	p.Jitter = 0.2
	a, err := NewSeeded(42).Generate(p)
	require.NoError(t, err)
	b, err := NewSeeded(42).Generate(p)
	require.NoError(t, err)

	assert.Equal(t, a.Time, b.Time)
}

func TestGenerate_QuantizationRepeatsPositions(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	p.Quantum = 0.01
	log, err := NewSeeded(1).Generate(p)
	require.NoError(t, err)

	repeats := 0
	for i := 1; i < log.Len(); i++ {
		if log.Pos[i] == log.Pos[i-1] {
			repeats++
		}
	}
	assert.Positive(t, repeats)
}

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	p.Ramp = 5
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.Rate = 0
	assert.Error(t, p.Validate())

	p = DefaultProfile()
	p.Jitter = 1
	assert.Error(t, p.Validate())

	assert.NoError(t, DefaultProfile().Validate())
}
