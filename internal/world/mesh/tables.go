package mesh

import (
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/go-gl/mathgl/mgl32"
)

// Индексы канонических граней
const (
	FaceFront  = iota // +Z
	FaceBack          // -Z
	FaceTop           // +Y
	FaceBottom        // -Y
	FaceRight         // +X
	FaceLeft          // -X

	FaceCount
)

// FaceNormals нормали канонических граней
var FaceNormals = [FaceCount]vec.Vec3{
	{X: 0, Y: 0, Z: 1},
	{X: 0, Y: 0, Z: -1},
	{X: 0, Y: 1, Z: 0},
	{X: 0, Y: -1, Z: 0},
	{X: 1, Y: 0, Z: 0},
	{X: -1, Y: 0, Z: 0},
}

// FaceIndex возвращает индекс грани по единичной нормали
func FaceIndex(n vec.Vec3) int {
	switch {
	case n.Z == 1:
		return FaceFront
	case n.Z == -1:
		return FaceBack
	case n.Y == 1:
		return FaceTop
	case n.Y == -1:
		return FaceBottom
	case n.X == 1:
		return FaceRight
	default:
		return FaceLeft
	}
}

// Вершины моделей в локальном пространстве вокселя [0,1]³
var (
	cubeVerts = []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
		{0, 1, 1}, {1, 1, 1}, {1, 0, 1}, {0, 0, 1},
	}
	slabVerts = []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 0.5, 0}, {0, 0.5, 0},
		{0, 0.5, 1}, {1, 0.5, 1}, {1, 0, 1}, {0, 0, 1},
	}
	quarterVerts = []mgl32.Vec3{
		{0, 0, 0}, {0.5, 0, 0}, {0.5, 0.5, 0}, {0, 0.5, 0},
		{0, 0.5, 1}, {0.5, 0.5, 1}, {0.5, 0, 1}, {0, 0, 1},
	}
	eighthVerts = []mgl32.Vec3{
		{0, 0, 0}, {0.5, 0, 0}, {0.5, 0.5, 0}, {0, 0.5, 0},
		{0, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0, 0.5}, {0, 0, 0.5},
	}
	// Нижняя плита (0..7) и верхняя ступень (8..15)
	stairsVerts = []mgl32.Vec3{
		{0, 0, 0}, {1, 0, 0}, {1, 0.5, 0}, {0, 0.5, 0},
		{0, 0.5, 1}, {1, 0.5, 1}, {1, 0, 1}, {0, 0, 1},
		{0, 0.5, 0}, {0.5, 0.5, 0}, {0.5, 1, 0}, {0, 1, 0},
		{0, 1, 1}, {0.5, 1, 1}, {0.5, 0.5, 1}, {0, 0.5, 1},
	}
)

// ModelVerts вершины каждой модели
var ModelVerts = [tile.ModelCount][]mgl32.Vec3{
	tile.ModelCube:         cubeVerts,
	tile.ModelHalfCube:     slabVerts,
	tile.ModelQuarterCube:  quarterVerts,
	tile.ModelEighthCube:   eighthVerts,
	tile.ModelStairTwoStep: stairsVerts,
}

// squarePrismFaces треугольники граней прямоугольной призмы, 6 индексов на грань
var squarePrismFaces = []int{
	5, 4, 7, 5, 7, 6,
	0, 2, 1, 0, 3, 2,
	2, 3, 4, 2, 4, 5,
	0, 6, 7, 0, 1, 6,
	1, 2, 5, 1, 5, 6,
	0, 7, 4, 0, 4, 3,
}

// stairsFaces треугольники граней ступеньки, 12 индексов на грань, -1 обрывает грань
var stairsFaces = []int{
	5, 4, 7, 5, 7, 6, 13, 12, 15, 13, 15, 14,
	0, 2, 1, 0, 3, 2, 8, 10, 9, 8, 11, 10,
	2, 3, 4, 2, 4, 5, 10, 11, 12, 10, 12, 13,
	0, 6, 7, 0, 1, 6, -1, -1, -1, -1, -1, -1,
	1, 2, 5, 1, 5, 6, 9, 10, 13, 9, 13, 14,
	0, 7, 4, 0, 4, 3, 8, 15, 12, 8, 12, 11,
}

// ModelFaces таблица треугольников граней для каждой модели
var ModelFaces = [tile.ModelCount][]int{
	tile.ModelCube:         squarePrismFaces,
	tile.ModelHalfCube:     squarePrismFaces,
	tile.ModelQuarterCube:  squarePrismFaces,
	tile.ModelEighthCube:   squarePrismFaces,
	tile.ModelStairTwoStep: stairsFaces,
}

// TrisPerFace максимальное число треугольников на грань
var TrisPerFace = [tile.ModelCount]int{2, 2, 2, 2, 4}

// ConnectsToFullFace грань модели прилегает к границе вокселя целиком
// и может быть скрыта полной гранью соседа
var ConnectsToFullFace = [tile.ModelCount][FaceCount]bool{
	tile.ModelCube:         {true, true, true, true, true, true},
	tile.ModelHalfCube:     {true, true, false, true, true, true},
	tile.ModelQuarterCube:  {true, true, false, true, false, true},
	tile.ModelEighthCube:   {false, true, false, true, false, true},
	tile.ModelStairTwoStep: {true, true, false, true, false, true},
}

// IsFullFace грань модели полностью закрывает соседний воксель
var IsFullFace = [tile.ModelCount][FaceCount]bool{
	tile.ModelCube:         {true, true, true, true, true, true},
	tile.ModelHalfCube:     {false, false, false, true, false, false},
	tile.ModelQuarterCube:  {},
	tile.ModelEighthCube:   {},
	tile.ModelStairTwoStep: {false, false, false, true, false, true},
}

// UVAxes оси проекции UV для каждой грани: (ось U, ось V)
var UVAxes = [FaceCount][2]int{
	{0, 1},
	{0, 1},
	{0, 2},
	{0, 2},
	{2, 1},
	{2, 1},
}

// FlipU грани, у которых U отражается
var FlipU = [FaceCount]bool{true, false, false, false, false, true}
