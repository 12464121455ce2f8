package vec

import "github.com/go-gl/mathgl/mgl32"

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Используется для мировых координат вокселей, координат чанков и
// локальных координат внутри чанка.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Zero3 нулевой вектор
var Zero3 = Vec3{}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Neg возвращает противоположный вектор
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// Scale умножает вектор на целое число
func (v Vec3) Scale(k int) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// XZ возвращает проекцию на горизонтальную плоскость
func (v Vec3) XZ() Vec2 {
	return Vec2{X: v.X, Y: v.Z}
}

// ToFloat преобразует вектор в mgl32.Vec3
func (v Vec3) ToFloat() mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// ToChunkCoords возвращает координаты чанка, содержащего воксель.
// Деление с округлением вниз, поэтому отрицательные координаты
// попадают в правильный чанк.
func (v Vec3) ToChunkCoords(chunkSize int) Vec3 {
	return Vec3{
		X: FloorDiv(v.X, chunkSize),
		Y: FloorDiv(v.Y, chunkSize),
		Z: FloorDiv(v.Z, chunkSize),
	}
}

// LocalInChunk возвращает локальные координаты внутри чанка (0..chunkSize-1)
func (v Vec3) LocalInChunk(chunkSize int) Vec3 {
	return Vec3{
		X: FloorMod(v.X, chunkSize),
		Y: FloorMod(v.Y, chunkSize),
		Z: FloorMod(v.Z, chunkSize),
	}
}

// SplitChunk возвращает координаты чанка и локальные координаты за один вызов
func (v Vec3) SplitChunk(chunkSize int) (chunk Vec3, local Vec3) {
	chunk = v.ToChunkCoords(chunkSize)
	local = v.Sub(chunk.Scale(chunkSize))
	return chunk, local
}

// ChunkOrigin возвращает мировые координаты нулевого вокселя чанка
func (v Vec3) ChunkOrigin(chunkSize int) Vec3 {
	return v.Scale(chunkSize)
}

// FloorDiv целочисленное деление с округлением к минус бесконечности
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod остаток, согласованный с FloorDiv (всегда в [0, b) при b > 0)
func FloorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
