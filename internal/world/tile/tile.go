package tile

import (
	"fmt"
	"math"
)

// AirAssetID значение assetID, обозначающее пустой воксель (воздух)
const AirAssetID uint16 = 0xFFFF

// ModelType выбирает геометрию вокселя
type ModelType uint8

const (
	ModelCube         ModelType = iota // Полный куб
	ModelHalfCube                      // Плита (половина по высоте)
	ModelQuarterCube                   // Четверть куба
	ModelEighthCube                    // Восьмая часть куба
	ModelStairTwoStep                  // Ступенька из двух уровней

	ModelCount // всегда последний: количество моделей
)

// Valid проверяет, что модель известна
func (m ModelType) Valid() bool {
	return m < ModelCount
}

// String возвращает строковое представление модели
func (m ModelType) String() string {
	switch m {
	case ModelCube:
		return "Cube"
	case ModelHalfCube:
		return "HalfCube"
	case ModelQuarterCube:
		return "QuarterCube"
	case ModelEighthCube:
		return "EighthCube"
	case ModelStairTwoStep:
		return "StairTwoStep"
	default:
		return fmt.Sprintf("Model(%d)", uint8(m))
	}
}

// modelVertexEstimate верхняя оценка числа вершин на воксель для каждой модели
var modelVertexEstimate = [ModelCount]int{36, 36, 36, 36, 72}

// VertexEstimate возвращает верхнюю оценку количества вершин для модели
func (m ModelType) VertexEstimate() int {
	if !m.Valid() {
		return 0
	}
	return modelVertexEstimate[m]
}

// Rotation упакованный поворот: три 2-битных поля (X | Y<<2 | Z<<4),
// каждое хранит число четвертей оборота вокруг своей оси.
type Rotation uint8

// PackRotation упаковывает повороты по осям в один байт
func PackRotation(x, y, z uint8) Rotation {
	return Rotation(x&3 | (y&3)<<2 | (z&3)<<4)
}

// Unpack распаковывает байт поворота
func (r Rotation) Unpack() (x, y, z uint8) {
	return r.X(), r.Y(), r.Z()
}

// X число четвертей оборота вокруг оси X
func (r Rotation) X() uint8 { return uint8(r) & 3 }

// Y число четвертей оборота вокруг оси Y
func (r Rotation) Y() uint8 { return (uint8(r) >> 2) & 3 }

// Z число четвертей оборота вокруг оси Z
func (r Rotation) Z() uint8 { return (uint8(r) >> 4) & 3 }

// RotationFromEuler переводит углы Эйлера в градусах в упакованный поворот.
// Каждый угол округляется до ближайшей четверти оборота.
func RotationFromEuler(x, y, z float32) Rotation {
	return PackRotation(quarterTurns(x), quarterTurns(y), quarterTurns(z))
}

func quarterTurns(deg float32) uint8 {
	q := int(math.Round(float64(deg) / 90))
	q %= 4
	if q < 0 {
		q += 4
	}
	return uint8(q)
}

// TileData содержимое одного вокселя
type TileData struct {
	AssetID  uint16    // ID ассета, AirAssetID для воздуха
	Model    ModelType // Геометрия
	Rotation Rotation  // Упакованный поворот
}

// Air пустой воксель
var Air = TileData{AssetID: AirAssetID}

// New создаёт тайл. Для воздуха модель и поворот сбрасываются.
func New(assetID uint16, model ModelType, rotation Rotation) TileData {
	if assetID == AirAssetID {
		return Air
	}
	return TileData{AssetID: assetID, Model: model, Rotation: rotation}
}

// IsAir проверяет, является ли тайл воздухом
func (t TileData) IsAir() bool {
	return t.AssetID == AirAssetID
}

// String возвращает строковое представление тайла
func (t TileData) String() string {
	if t.IsAir() {
		return "Air"
	}
	x, y, z := t.Rotation.Unpack()
	return fmt.Sprintf("Tile(%d %s rot=%d,%d,%d)", t.AssetID, t.Model, x, y, z)
}
