package asset

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TexturingType схема раскладки текстур по граням тайла
type TexturingType uint8

const (
	AllSame             TexturingType = iota // Одна текстура на все грани
	TopAndSideAndBottom                      // t0 верх, t1 бока, t2 низ
	TopBottomAndSide                         // t0 бока, t1 верх и низ
	AllSeparatedXYZ                          // Своя текстура на каждую грань
)

var texturingNames = map[string]TexturingType{
	"all_same":                AllSame,
	"top_and_side_and_bottom": TopAndSideAndBottom,
	"top_bottom_and_side":     TopBottomAndSide,
	"all_separated_xyz":       AllSeparatedXYZ,
}

// String возвращает имя схемы в формате конфигурации
func (t TexturingType) String() string {
	for name, v := range texturingNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("texturing(%d)", uint8(t))
}

// RequiredTextures возвращает количество текстур, нужных схеме
func (t TexturingType) RequiredTextures() int {
	switch t {
	case AllSame:
		return 1
	case TopBottomAndSide:
		return 2
	case TopAndSideAndBottom:
		return 3
	case AllSeparatedXYZ:
		return 6
	default:
		return 0
	}
}

// UnmarshalYAML разбирает схему по имени
func (t *TexturingType) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	v, ok := texturingNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return fmt.Errorf("неизвестная схема текстурирования %q", name)
	}
	*t = v
	return nil
}

// faceSlots возвращает номер текстуры из списка ассета для каждой грани
// (порядок граней: +Z, -Z, +Y, -Y, +X, -X)
func (t TexturingType) faceSlots() [6]int {
	switch t {
	case TopAndSideAndBottom:
		return [6]int{1, 1, 0, 2, 1, 1}
	case TopBottomAndSide:
		return [6]int{0, 0, 1, 1, 0, 0}
	case AllSeparatedXYZ:
		return [6]int{0, 1, 2, 3, 4, 5}
	default:
		return [6]int{}
	}
}
