package asset

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/annel0/voxel-engine/internal/world/tile"
	"gopkg.in/yaml.v3"
)

// ErrCatalogFull возвращается, когда исчерпаны ID ассетов
var ErrCatalogFull = errors.New("каталог ассетов заполнен")

// TileAsset описание тайла: имя и текстуры граней
type TileAsset struct {
	Name      string        `yaml:"name"`
	Texturing TexturingType `yaml:"texturing"`
	Textures  []string      `yaml:"textures"`

	faces [6]int // индексы в атласе по граням
}

// FaceTexture возвращает индекс текстуры в атласе для грани
func (a *TileAsset) FaceTexture(face int) int {
	if face < 0 || face >= len(a.faces) {
		return 0
	}
	return a.faces[face]
}

// PrefabAsset описание префаба, размещаемого вне сетки тайлов
type PrefabAsset struct {
	Name string `yaml:"name"`
	Mesh string `yaml:"mesh"`
}

// Catalog реестр тайлов, атласа текстур и префабов.
// ID тайла и ID префаба равны порядку регистрации.
type Catalog struct {
	mu         sync.RWMutex
	tiles      []*TileAsset
	byName     map[string]uint16
	atlas      []string
	atlasIndex map[string]int
	prefabs    []PrefabAsset
}

// NewCatalog создаёт пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{
		byName:     make(map[string]uint16),
		atlasIndex: make(map[string]int),
	}
}

// RegisterTile добавляет тайл и возвращает его ID.
// Одинаковые текстуры разных тайлов получают один индекс в атласе.
func (c *Catalog) RegisterTile(a TileAsset) (uint16, error) {
	if need := a.Texturing.RequiredTextures(); len(a.Textures) < need {
		return 0, fmt.Errorf("тайл %q: схема %s требует %d текстур, задано %d",
			a.Name, a.Texturing, need, len(a.Textures))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.byName[a.Name]; exists && a.Name != "" {
		return 0, fmt.Errorf("тайл %q уже зарегистрирован", a.Name)
	}
	if len(c.tiles) >= int(tile.AirAssetID) {
		return 0, ErrCatalogFull
	}

	// индексы атласа выдаются в порядке списка текстур тайла
	atlas := make([]int, len(a.Textures))
	for i, texture := range a.Textures {
		atlas[i] = c.atlasSlot(texture)
	}
	for face, slot := range a.Texturing.faceSlots() {
		a.faces[face] = atlas[slot]
	}

	id := uint16(len(c.tiles))
	stored := a
	c.tiles = append(c.tiles, &stored)
	if a.Name != "" {
		c.byName[a.Name] = id
	}
	return id, nil
}

// atlasSlot возвращает индекс текстуры в атласе, добавляя её при необходимости
func (c *Catalog) atlasSlot(texture string) int {
	if idx, ok := c.atlasIndex[texture]; ok {
		return idx
	}
	idx := len(c.atlas)
	c.atlas = append(c.atlas, texture)
	c.atlasIndex[texture] = idx
	return idx
}

// TextureIndex возвращает индекс текстуры в атласе для грани тайла.
// Для неизвестного ассета возвращается 0.
func (c *Catalog) TextureIndex(assetID uint16, face int) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if int(assetID) >= len(c.tiles) {
		return 0
	}
	return c.tiles[assetID].FaceTexture(face)
}

// Tile возвращает описание тайла по ID
func (c *Catalog) Tile(id uint16) (*TileAsset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if int(id) >= len(c.tiles) {
		return nil, false
	}
	return c.tiles[id], true
}

// TileID возвращает ID тайла по имени
func (c *Catalog) TileID(name string) (uint16, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.byName[name]
	return id, ok
}

// TileCount возвращает количество зарегистрированных тайлов
func (c *Catalog) TileCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tiles)
}

// Atlas возвращает список текстур атласа в порядке индексов
func (c *Catalog) Atlas() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.atlas...)
}

// RegisterPrefab добавляет префаб и возвращает его ID
func (c *Catalog) RegisterPrefab(p PrefabAsset) uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefabs = append(c.prefabs, p)
	return uint16(len(c.prefabs) - 1)
}

// Prefab возвращает описание префаба по ID
func (c *Catalog) Prefab(id uint16) (PrefabAsset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if int(id) >= len(c.prefabs) {
		return PrefabAsset{}, false
	}
	return c.prefabs[id], true
}

// catalogFile формат YAML-файла каталога
type catalogFile struct {
	Tiles   []TileAsset   `yaml:"tiles"`
	Prefabs []PrefabAsset `yaml:"prefabs"`
}

// ParseCatalog разбирает каталог из YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("ошибка разбора каталога ассетов: %w", err)
	}

	c := NewCatalog()
	for _, t := range file.Tiles {
		if _, err := c.RegisterTile(t); err != nil {
			return nil, err
		}
	}
	for _, p := range file.Prefabs {
		c.RegisterPrefab(p)
	}
	return c, nil
}

// LoadCatalog читает каталог из YAML-файла
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать каталог ассетов %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// DefaultCatalog небольшой встроенный набор тайлов для генератора и демо-мира
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	defaults := []TileAsset{
		{Name: "stone", Texturing: AllSame, Textures: []string{"stone"}},
		{Name: "grass", Texturing: TopAndSideAndBottom, Textures: []string{"grass_top", "grass_side", "dirt"}},
		{Name: "dirt", Texturing: AllSame, Textures: []string{"dirt"}},
		{Name: "log", Texturing: TopBottomAndSide, Textures: []string{"log_side", "log_top"}},
		{Name: "sand", Texturing: AllSame, Textures: []string{"sand"}},
	}
	for _, a := range defaults {
		if _, err := c.RegisterTile(a); err != nil {
			panic(err)
		}
	}
	return c
}
