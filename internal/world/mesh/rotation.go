package mesh

import (
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
)

// Целочисленные повороты решётки на r четвертей оборота.
// Используются для нормалей и смещений к соседям.

// RotateZ поворачивает вектор вокруг оси Z
func RotateZ(v vec.Vec3, r uint8) vec.Vec3 {
	switch r & 3 {
	case 1:
		return vec.Vec3{X: -v.Y, Y: v.X, Z: v.Z}
	case 2:
		return vec.Vec3{X: -v.X, Y: -v.Y, Z: v.Z}
	case 3:
		return vec.Vec3{X: v.Y, Y: -v.X, Z: v.Z}
	}
	return v
}

// RotateY поворачивает вектор вокруг оси Y
func RotateY(v vec.Vec3, r uint8) vec.Vec3 {
	switch r & 3 {
	case 1:
		return vec.Vec3{X: v.Z, Y: v.Y, Z: -v.X}
	case 2:
		return vec.Vec3{X: -v.X, Y: v.Y, Z: -v.Z}
	case 3:
		return vec.Vec3{X: -v.Z, Y: v.Y, Z: v.X}
	}
	return v
}

// RotateX поворачивает вектор вокруг оси X
func RotateX(v vec.Vec3, r uint8) vec.Vec3 {
	switch r & 3 {
	case 1:
		return vec.Vec3{X: v.X, Y: -v.Z, Z: v.Y}
	case 2:
		return vec.Vec3{X: v.X, Y: -v.Y, Z: -v.Z}
	case 3:
		return vec.Vec3{X: v.X, Y: v.Z, Z: -v.Y}
	}
	return v
}

// inverse число четвертей, отменяющее поворот r
func inverse(r uint8) uint8 {
	return (4 - r&3) & 3
}

// RotateNormal применяет поворот тайла к нормали: Z, затем X, затем Y
func RotateNormal(n vec.Vec3, rot tile.Rotation) vec.Vec3 {
	return RotateY(RotateX(RotateZ(n, rot.Z()), rot.X()), rot.Y())
}

// InverseRotateNormal отменяет RotateNormal: Y, затем X, затем Z в обратную сторону
func InverseRotateNormal(n vec.Vec3, rot tile.Rotation) vec.Vec3 {
	return RotateZ(RotateX(RotateY(n, inverse(rot.Y())), inverse(rot.X())), inverse(rot.Z()))
}

// Повороты вершин вокруг центра вокселя (0.5, 0.5, 0.5).
// Это те же повороты, что и целочисленные, перенесённые в центр куба.

// RotateVertZ поворачивает вершину вокруг оси Z через центр вокселя
func RotateVertZ(v mgl32.Vec3, r uint8) mgl32.Vec3 {
	switch r & 3 {
	case 1:
		return mgl32.Vec3{1 - v[1], v[0], v[2]}
	case 2:
		return mgl32.Vec3{1 - v[0], 1 - v[1], v[2]}
	case 3:
		return mgl32.Vec3{v[1], 1 - v[0], v[2]}
	}
	return v
}

// RotateVertY поворачивает вершину вокруг оси Y через центр вокселя
func RotateVertY(v mgl32.Vec3, r uint8) mgl32.Vec3 {
	switch r & 3 {
	case 1:
		return mgl32.Vec3{v[2], v[1], 1 - v[0]}
	case 2:
		return mgl32.Vec3{1 - v[0], v[1], 1 - v[2]}
	case 3:
		return mgl32.Vec3{1 - v[2], v[1], v[0]}
	}
	return v
}

// RotateVertX поворачивает вершину вокруг оси X через центр вокселя
func RotateVertX(v mgl32.Vec3, r uint8) mgl32.Vec3 {
	switch r & 3 {
	case 1:
		return mgl32.Vec3{v[0], 1 - v[2], v[1]}
	case 2:
		return mgl32.Vec3{v[0], 1 - v[1], 1 - v[2]}
	case 3:
		return mgl32.Vec3{v[0], v[2], 1 - v[1]}
	}
	return v
}

// RotateVertex применяет поворот тайла к вершине: Z, затем X, затем Y
func RotateVertex(v mgl32.Vec3, rot tile.Rotation) mgl32.Vec3 {
	return RotateVertY(RotateVertX(RotateVertZ(v, rot.Z()), rot.X()), rot.Y())
}
