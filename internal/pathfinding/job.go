package pathfinding

import (
	"math"

	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/go-gl/mathgl/mgl32"
)

// Options ограничения одного запроса
type Options struct {
	MaxPathLength int // Ёмкость буфера пути
	MaxOpened     int // Ёмкость открытого множества
	MaxClosed     int // Ёмкость закрытого множества
}

// DefaultOptions возвращает ограничения по умолчанию
func DefaultOptions() Options {
	return Options{
		MaxPathLength: 256,
		MaxOpened:     1024,
		MaxClosed:     256,
	}
}

// Result результат поиска. Path упорядочен от цели к старту
// и содержит центры клеток (x+0.5, y, z+0.5). Буфер пути принадлежит
// запросу: получатель копирует его, если хранит после колбэка.
type Result struct {
	Valid     bool
	Path      []mgl32.Vec3
	NodeCount int
}

// Job один поиск пути со своей памятью и снимком сетки
type Job struct {
	Start, End vec.Vec3

	grid   *Grid
	opts   Options
	open   *openSet
	closed *closedSet
	path   []mgl32.Vec3
}

// NewJob создаёт задачу поиска
func NewJob(grid *Grid, start, end vec.Vec3, opts Options) *Job {
	if opts.MaxPathLength < 2 {
		opts.MaxPathLength = 2
	}
	return &Job{
		Start:  start,
		End:    end,
		grid:   grid,
		opts:   opts,
		open:   newOpenSet(opts.MaxOpened),
		closed: newClosedSet(opts.MaxClosed),
		path:   make([]mgl32.Vec3, opts.MaxPathLength),
	}
}

// cellCenter центр клетки на уровне её пола
func cellCenter(p vec.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(p.X) + 0.5, float32(p.Y), float32(p.Z) + 0.5}
}

var neighborOffsets = []vec.Vec3{
	{X: -1, Z: -1}, {X: -1, Z: 0}, {X: -1, Z: 1},
	{X: 0, Z: -1}, {X: 0, Z: 1},
	{X: 1, Z: -1}, {X: 1, Z: 0}, {X: 1, Z: 1},
}

// Execute выполняет поиск. Исчерпание ёмкостей не ошибка: результатом
// становится путь к закрытому узлу с наименьшей эвристикой.
func (j *Job) Execute() Result {
	if j.Start.Equals(j.End) {
		j.path[0] = cellCenter(j.Start)
		j.path[1] = cellCenter(j.End)
		return Result{Valid: true, Path: j.path[:2], NodeCount: 2}
	}

	end := j.End.XZ()
	current := NodeCost{Idx: j.Start, Origin: j.Start, H: Octile(j.Start.XZ(), end)}
	j.open.Add(current)

	reached := false
	bestH := math.MaxInt
	var bestIdx vec.Vec3

	for j.open.Len() > 0 {
		current = j.open.PopMin()

		if j.closed.Contains(current.Idx) {
			continue
		}
		if !j.closed.Add(current) {
			break
		}
		if current.H < bestH {
			bestH = current.H
			bestIdx = current.Idx
		}
		if current.Idx.Equals(j.End) {
			reached = true
			break
		}

		j.expand(current, end)
	}

	if !reached {
		best, ok := j.closed.Get(bestIdx)
		if !ok {
			return Result{}
		}
		current = best
	}

	return j.retrace(current)
}

// expand добавляет в открытое множество доступных соседей узла
func (j *Job) expand(current NodeCost, end vec.Vec2) {
	for _, off := range neighborOffsets {
		next := current.Idx.Add(off)

		if off.X != 0 && off.Z != 0 {
			// По диагонали только если свободны обе боковые клетки
			if !j.grid.AreaClear(next) ||
				!j.grid.AreaClear(current.Idx.Add(vec.Vec3{X: off.X})) ||
				!j.grid.AreaClear(current.Idx.Add(vec.Vec3{Z: off.Z})) {
				continue
			}
		} else {
			mainClear := j.grid.AreaClear(next)
			downClear := j.grid.ClearDown(next)
			upClear := j.grid.ClearUp(next) && j.grid.ClearToGoUp(current.Idx)

			switch {
			case !mainClear && !downClear && !upClear:
				continue
			case !mainClear && upClear:
				next.Y++
			case !mainClear && downClear:
				next.Y--
			}
		}

		if j.closed.Contains(next) {
			continue
		}

		candidate := NodeCost{
			Idx:    next,
			Origin: current.Idx,
			G:      current.G + Octile(current.Idx.XZ(), next.XZ()),
			H:      Octile(next.XZ(), end),
		}

		if old, ok := j.open.Find(next); ok {
			if candidate.G < old.G {
				j.open.Replace(candidate)
			}
			continue
		}
		// Заполненное открытое множество отбрасывает кандидата
		j.open.Add(candidate)
	}
}

// retrace восстанавливает путь от узла к старту. Переполнение буфера
// молча обрезает путь, результат остаётся валидным.
func (j *Job) retrace(node NodeCost) Result {
	count := 0
	for !node.Idx.Equals(node.Origin) && count < len(j.path) {
		j.path[count] = cellCenter(node.Idx)
		count++

		next, ok := j.closed.Get(node.Origin)
		if !ok {
			break
		}
		node = next
	}
	return Result{Valid: true, Path: j.path[:count], NodeCount: count}
}

// release освобождает память задачи
func (j *Job) release() {
	j.open = nil
	j.closed = nil
	j.path = nil
	j.grid = nil
}

// ReversePath возвращает копию пути в порядке от старта к цели
func ReversePath(path []mgl32.Vec3) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(path))
	for i, p := range path {
		out[len(path)-1-i] = p
	}
	return out
}
