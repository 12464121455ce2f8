package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestEmptyColliderDisabled(t *testing.T) {
	mc := NewMeshCollider(nil)
	assert.False(t, mc.Enabled, "пустой меш выключает коллайдер")
	assert.False(t, mc.Overlaps(AABB{Max: mgl32.Vec3{100, 100, 100}}))
}

func TestColliderBoundsAndOverlap(t *testing.T) {
	mc := NewMeshCollider([]mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
		{2, 2, 2}, {3, 2, 2}, {3, 3, 2},
	})

	assert.True(t, mc.Enabled)
	assert.Equal(t, 2, mc.TriangleCount())
	assert.Equal(t, AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{3, 3, 2}}, mc.Bounds)

	assert.True(t, mc.Overlaps(AABB{Min: mgl32.Vec3{0.5, 0.5, -0.5}, Max: mgl32.Vec3{0.6, 0.6, 0.5}}))
	// внутри общего AABB, но мимо обоих треугольников
	assert.False(t, mc.Overlaps(AABB{Min: mgl32.Vec3{1.5, 1.5, 1}, Max: mgl32.Vec3{1.8, 1.8, 1.2}}))

	mc.Rebuild(nil)
	assert.False(t, mc.Enabled)
}

func TestAABBHelpers(t *testing.T) {
	box := AABB{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	assert.True(t, box.Contains(mgl32.Vec3{0.5, 1, 0}))
	assert.False(t, box.Contains(mgl32.Vec3{1.5, 0, 0}))

	moved := box.Translate(mgl32.Vec3{2, 0, 0})
	assert.False(t, box.Intersects(moved))
	assert.Equal(t, mgl32.Vec3{3, 1, 1}, moved.Max)
}
