package returns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeReturnWithInflow(t *testing.T) {
	// 1,050,000 today on a 1,000,000 base with a 40,000 subscription:
	// only 10,000 of the change is performance
	res := ComputeReturn(1050000, 1000000, 40000)
	assert.False(t, res.Undefined)
	assert.InDelta(t, 1.0, res.Pct, 1e-9)
}

func TestComputeReturnWithOutflow(t *testing.T) {
	// A 40,000 redemption makes the same asset change worth 9%
	res := ComputeReturn(1050000, 1000000, -40000)
	assert.False(t, res.Undefined)
	assert.InDelta(t, 9.0, res.Pct, 1e-9)
}

func TestComputeReturnNoFlow(t *testing.T) {
	res := ComputeReturn(1010000, 1000000, 0)
	assert.InDelta(t, 1.0, res.Pct, 1e-9)

	res = ComputeReturn(990000, 1000000, 0)
	assert.InDelta(t, -1.0, res.Pct, 1e-9)
}

func TestComputeReturnUndefined(t *testing.T) {
	assert.True(t, ComputeReturn(1000000, 0, 0).Undefined)
	assert.True(t, ComputeReturn(1000000, -5, 0).Undefined)

	// Undefined carries no percentage
	res := ComputeReturn(1000000, 0, 40000)
	assert.True(t, res.Undefined)
	assert.Zero(t, res.Pct)
}
