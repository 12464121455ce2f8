package physics

import (
	"github.com/go-gl/mathgl/mgl32"
)

// AABB выровненный по осям ограничивающий параллелепипед
type AABB struct {
	Min, Max mgl32.Vec3
}

// Intersects проверяет пересечение двух AABB
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X() <= b.Max.X() && a.Max.X() >= b.Min.X() &&
		a.Min.Y() <= b.Max.Y() && a.Max.Y() >= b.Min.Y() &&
		a.Min.Z() <= b.Max.Z() && a.Max.Z() >= b.Min.Z()
}

// Contains проверяет, находится ли точка внутри AABB
func (a AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Translate сдвигает AABB
func (a AABB) Translate(offset mgl32.Vec3) AABB {
	return AABB{Min: a.Min.Add(offset), Max: a.Max.Add(offset)}
}

// MeshCollider коллайдер чанка из треугольников его меша.
// Пустой меш выключает коллайдер.
type MeshCollider struct {
	Enabled   bool
	Triangles []mgl32.Vec3 // тройки вершин
	Bounds    AABB
}

// NewMeshCollider строит коллайдер из позиций вершин в порядке индексов
func NewMeshCollider(positions []mgl32.Vec3) *MeshCollider {
	mc := &MeshCollider{}
	mc.Rebuild(positions)
	return mc
}

// Rebuild заменяет геометрию коллайдера
func (mc *MeshCollider) Rebuild(positions []mgl32.Vec3) {
	n := len(positions) - len(positions)%3
	if n == 0 {
		mc.Enabled = false
		mc.Triangles = nil
		mc.Bounds = AABB{}
		return
	}

	mc.Triangles = positions[:n]
	mc.Bounds = AABB{Min: positions[0], Max: positions[0]}
	for _, p := range mc.Triangles[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < mc.Bounds.Min[k] {
				mc.Bounds.Min[k] = p[k]
			}
			if p[k] > mc.Bounds.Max[k] {
				mc.Bounds.Max[k] = p[k]
			}
		}
	}
	mc.Enabled = true
}

// TriangleCount возвращает количество треугольников
func (mc *MeshCollider) TriangleCount() int {
	return len(mc.Triangles) / 3
}

// Overlaps проверяет пересечение коллайдера с AABB (грубая фаза).
// Выключенный коллайдер ни с чем не пересекается.
func (mc *MeshCollider) Overlaps(box AABB) bool {
	if mc == nil || !mc.Enabled {
		return false
	}
	if !mc.Bounds.Intersects(box) {
		return false
	}
	for i := 0; i+2 < len(mc.Triangles); i += 3 {
		if triangleBounds(mc.Triangles[i], mc.Triangles[i+1], mc.Triangles[i+2]).Intersects(box) {
			return true
		}
	}
	return false
}

func triangleBounds(a, b, c mgl32.Vec3) AABB {
	box := AABB{Min: a, Max: a}
	for _, p := range [2]mgl32.Vec3{b, c} {
		for k := 0; k < 3; k++ {
			if p[k] < box.Min[k] {
				box.Min[k] = p[k]
			}
			if p[k] > box.Max[k] {
				box.Max[k] = p[k]
			}
		}
	}
	return box
}
