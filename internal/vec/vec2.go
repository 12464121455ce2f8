package vec

// Vec2 представляет 2D координаты.
// Для вокселей это проекция на плоскость XZ (Y хранит Z).
type Vec2 struct {
	X, Y int
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Abs возвращает покомпонентный модуль
func (v Vec2) Abs() Vec2 {
	if v.X < 0 {
		v.X = -v.X
	}
	if v.Y < 0 {
		v.Y = -v.Y
	}
	return v
}
