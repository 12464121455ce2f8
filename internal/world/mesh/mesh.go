package mesh

import "github.com/go-gl/mathgl/mgl32"

// Vertex вершина меша чанка
type Vertex struct {
	Position mgl32.Vec3 // Позиция в локальных координатах чанка
	Normal   mgl32.Vec3
	UV       mgl32.Vec4 // u, v, индекс текстуры в атласе, 0
}

// Mesh результат генерации: вершины без склейки и последовательные индексы
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// VertexCount возвращает количество вершин
func (m *Mesh) VertexCount() int {
	if m == nil {
		return 0
	}
	return len(m.Vertices)
}

// TriangleCount возвращает количество треугольников
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// IsEmpty проверяет, что меш не содержит геометрии
func (m *Mesh) IsEmpty() bool {
	return m.VertexCount() == 0
}

// Positions возвращает позиции вершин в порядке индексов
func (m *Mesh) Positions() []mgl32.Vec3 {
	if m == nil {
		return nil
	}
	out := make([]mgl32.Vec3, len(m.Indices))
	for i, idx := range m.Indices {
		out[i] = m.Vertices[idx].Position
	}
	return out
}
