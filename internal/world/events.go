package world

import (
	"time"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
)

// EventType определяет тип события мира
type EventType uint8

const (
	EventChunkCreated EventType = iota // Чанк создан
	EventChunkDeleted                  // Чанк удалён
	EventChunkMeshed                   // Меш чанка перестроен
)

// String возвращает строковое представление типа события
func (t EventType) String() string {
	switch t {
	case EventChunkCreated:
		return "chunk_created"
	case EventChunkDeleted:
		return "chunk_deleted"
	case EventChunkMeshed:
		return "chunk_meshed"
	default:
		return "unknown"
	}
}

// ChunkEvent событие, связанное с чанком
type ChunkEvent struct {
	Type        EventType
	Coords      vec.Vec3      // Координаты чанка
	VertexCount int           // Для EventChunkMeshed: число вершин меша
	Duration    time.Duration // Для EventChunkMeshed: время построения меша
}

// Listener получает события мира синхронно, в потоке мутаций мира
type Listener func(ChunkEvent)

// LogEvents возвращает слушателя, пишущего события мира в лог на уровне TRACE
func LogEvents(logger *logging.Logger) Listener {
	return func(e ChunkEvent) {
		if e.Type == EventChunkMeshed {
			logger.Trace("[World] %s %v вершин=%d за %s", e.Type, e.Coords, e.VertexCount, e.Duration)
			return
		}
		logger.Trace("[World] %s %v", e.Type, e.Coords)
	}
}
