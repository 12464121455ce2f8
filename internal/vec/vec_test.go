package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChunkCoordsNegative(t *testing.T) {
	tests := []struct {
		in    Vec3
		chunk Vec3
		local Vec3
	}{
		{Vec3{0, 0, 0}, Vec3{0, 0, 0}, Vec3{0, 0, 0}},
		{Vec3{15, 16, 17}, Vec3{0, 1, 1}, Vec3{15, 0, 1}},
		{Vec3{-1, -16, -17}, Vec3{-1, -1, -2}, Vec3{15, 0, 15}},
	}

	for _, tt := range tests {
		chunk, local := tt.in.SplitChunk(16)
		assert.Equal(t, tt.chunk, chunk, "координаты чанка для %v", tt.in)
		assert.Equal(t, tt.local, local, "локальные координаты для %v", tt.in)
		assert.Equal(t, tt.chunk, tt.in.ToChunkCoords(16))
		assert.Equal(t, tt.local, tt.in.LocalInChunk(16))
	}
}

func TestFloorDivMod(t *testing.T) {
	assert.Equal(t, -1, FloorDiv(-1, 4))
	assert.Equal(t, -2, FloorDiv(-5, 4))
	assert.Equal(t, 1, FloorDiv(5, 4))
	assert.Equal(t, 3, FloorMod(-1, 4))
	assert.Equal(t, 0, FloorMod(-8, 4))
}

func TestVec3Ops(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{-1, 5, 0}

	assert.Equal(t, Vec3{0, 7, 3}, a.Add(b))
	assert.Equal(t, Vec3{2, -3, 3}, a.Sub(b))
	assert.Equal(t, Vec3{-1, -2, -3}, a.Neg())
	assert.Equal(t, Vec2{X: 1, Y: 3}, a.XZ())
	assert.True(t, a.Equals(Vec3{1, 2, 3}))
}
