package pathfinding

import (
	"container/heap"

	"github.com/annel0/voxel-engine/internal/vec"
)

// NodeCost узел поиска: клетка, откуда в неё пришли, и стоимости
type NodeCost struct {
	Idx    vec.Vec3 // Координаты клетки
	Origin vec.Vec3 // Клетка-родитель; у стартовой клетки совпадает с Idx
	G      int      // Накопленная стоимость от старта
	H      int      // Эвристика до цели
}

// F полная оценка стоимости пути через узел
func (n NodeCost) F() int {
	return n.G + n.H
}

// Octile расстояние на плоскости: 10 за шаг по оси, 14 по диагонали
func Octile(a, b vec.Vec2) int {
	d := a.Sub(b).Abs()
	if d.X > d.Y {
		return 14*d.Y + 10*(d.X-d.Y)
	}
	return 14*d.X + 10*(d.Y-d.X)
}

// openSet ограниченная по размеру двоичная куча с поиском по координатам.
// Порядок: меньшая F, при равенстве меньшая H.
type openSet struct {
	items    []NodeCost
	index    map[vec.Vec3]int
	capacity int
}

func newOpenSet(capacity int) *openSet {
	return &openSet{
		items:    make([]NodeCost, 0, capacity),
		index:    make(map[vec.Vec3]int, capacity),
		capacity: capacity,
	}
}

func (o *openSet) Len() int { return len(o.items) }

func (o *openSet) Less(i, j int) bool {
	fi, fj := o.items[i].F(), o.items[j].F()
	if fi != fj {
		return fi < fj
	}
	return o.items[i].H < o.items[j].H
}

func (o *openSet) Swap(i, j int) {
	o.items[i], o.items[j] = o.items[j], o.items[i]
	o.index[o.items[i].Idx] = i
	o.index[o.items[j].Idx] = j
}

func (o *openSet) Push(x any) {
	n := x.(NodeCost)
	o.index[n.Idx] = len(o.items)
	o.items = append(o.items, n)
}

func (o *openSet) Pop() any {
	last := len(o.items) - 1
	n := o.items[last]
	o.items = o.items[:last]
	delete(o.index, n.Idx)
	return n
}

// Full сообщает, что куча заполнена
func (o *openSet) Full() bool {
	return len(o.items) >= o.capacity
}

// Add добавляет узел; false, если куча заполнена
func (o *openSet) Add(n NodeCost) bool {
	if o.Full() {
		return false
	}
	heap.Push(o, n)
	return true
}

// PopMin извлекает узел с наименьшей оценкой
func (o *openSet) PopMin() NodeCost {
	return heap.Pop(o).(NodeCost)
}

// Find возвращает узел с указанными координатами
func (o *openSet) Find(idx vec.Vec3) (NodeCost, bool) {
	i, ok := o.index[idx]
	if !ok {
		return NodeCost{}, false
	}
	return o.items[i], true
}

// Replace заменяет узел с теми же координатами и восстанавливает порядок
func (o *openSet) Replace(n NodeCost) {
	i, ok := o.index[n.Idx]
	if !ok {
		return
	}
	o.items[i] = n
	heap.Fix(o, i)
}

// closedSet ограниченное множество окончательно обработанных узлов
type closedSet struct {
	nodes    map[vec.Vec3]NodeCost
	capacity int
}

func newClosedSet(capacity int) *closedSet {
	return &closedSet{
		nodes:    make(map[vec.Vec3]NodeCost, capacity),
		capacity: capacity,
	}
}

// Full сообщает, что множество заполнено
func (c *closedSet) Full() bool {
	return len(c.nodes) >= c.capacity
}

// Add добавляет узел; false, если множество заполнено
func (c *closedSet) Add(n NodeCost) bool {
	if c.Full() {
		return false
	}
	c.nodes[n.Idx] = n
	return true
}

// Get возвращает узел по координатам
func (c *closedSet) Get(idx vec.Vec3) (NodeCost, bool) {
	n, ok := c.nodes[idx]
	return n, ok
}

// Contains проверяет наличие узла
func (c *closedSet) Contains(idx vec.Vec3) bool {
	_, ok := c.nodes[idx]
	return ok
}
