package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/tile"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ErrStoreClosed возвращается при обращении к закрытому хранилищу
var ErrStoreClosed = errors.New("хранилище чанков закрыто")

const chunkKeyPrefix = "chunk:"

// ChunkStore хранит чанки в BadgerDB, по одному ключу на чанк.
// Значение: данные чанка в формате tile.ChunkData, сжатые zstd.
type ChunkStore struct {
	db        *badger.DB
	dbPath    string
	chunkSize int
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	mutex     sync.RWMutex
	isReady   bool
	logger    *logging.Logger
}

// NewChunkStore открывает хранилище в каталоге dbPath.
// Пустой путь открывает хранилище в памяти.
func NewChunkStore(dbPath string, chunkSize int) (*ChunkStore, error) {
	opts := badger.DefaultOptions(dbPath)
	if dbPath == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		db.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	return &ChunkStore{
		db:        db,
		dbPath:    dbPath,
		chunkSize: chunkSize,
		encoder:   encoder,
		decoder:   decoder,
		isReady:   true,
		logger:    logging.GetStorageLogger(),
	}, nil
}

// Close закрывает хранилище
func (s *ChunkStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isReady {
		return nil
	}
	s.isReady = false
	s.encoder.Close()
	s.decoder.Close()
	return s.db.Close()
}

func chunkKey(coords vec.Vec3) []byte {
	return []byte(fmt.Sprintf("%s%d:%d:%d", chunkKeyPrefix, coords.X, coords.Y, coords.Z))
}

func parseChunkKey(key []byte) (vec.Vec3, error) {
	var c vec.Vec3
	if _, err := fmt.Sscanf(string(key), chunkKeyPrefix+"%d:%d:%d", &c.X, &c.Y, &c.Z); err != nil {
		return vec.Vec3{}, fmt.Errorf("некорректный ключ чанка %q: %w", key, err)
	}
	return c, nil
}

func (s *ChunkStore) encode(data *tile.ChunkData) ([]byte, error) {
	raw, err := data.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return s.encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

func (s *ChunkStore) decode(val []byte) (*tile.ChunkData, error) {
	raw, err := s.decoder.DecodeAll(val, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки чанка: %w", err)
	}
	data := tile.NewChunkData(s.chunkSize)
	if err := data.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return data, nil
}

// SaveChunk сохраняет данные одного чанка
func (s *ChunkStore) SaveChunk(coords vec.Vec3, data *tile.ChunkData) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return ErrStoreClosed
	}

	val, err := s.encode(data)
	if err != nil {
		return fmt.Errorf("ошибка сериализации чанка %v: %w", coords, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(coords), val)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	return nil
}

// SaveWorld сохраняет чанки мира одним пакетом. Если onlyChanged,
// пропускаются чанки без несохранённых изменений. Возвращает число записанных чанков.
func (s *ChunkStore) SaveWorld(wld *world.World, onlyChanged bool) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return 0, ErrStoreClosed
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	var saved []*world.Chunk
	for _, coords := range wld.ChunkCoords() {
		chunk, ok := wld.GetChunk(coords)
		if !ok || (onlyChanged && !chunk.HasChanges()) {
			continue
		}

		chunk.Mu.RLock()
		val, err := s.encode(chunk.Data())
		chunk.Mu.RUnlock()
		if err != nil {
			return 0, fmt.Errorf("ошибка сериализации чанка %v: %w", coords, err)
		}

		if err := batch.Set(chunkKey(coords), val); err != nil {
			return 0, fmt.Errorf("ошибка записи чанка %v: %w", coords, err)
		}
		saved = append(saved, chunk)
	}

	if err := batch.Flush(); err != nil {
		return 0, fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}
	for _, chunk := range saved {
		chunk.ClearChanges()
	}
	return len(saved), nil
}

// LoadChunk загружает чанк. Отсутствие чанка не ошибка: возвращается false.
func (s *ChunkStore) LoadChunk(coords vec.Vec3) (*tile.ChunkData, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return nil, false, ErrStoreClosed
	}

	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coords))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := s.decode(val)
	if err != nil {
		return nil, false, fmt.Errorf("чанк %v: %w", coords, err)
	}
	return data, true, nil
}

// LoadAll загружает все сохранённые чанки в мир и помечает их грязными.
// Уже существующие в мире чанки не перезаписываются.
func (s *ChunkStore) LoadAll(wld *world.World) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return 0, ErrStoreClosed
	}

	loaded := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			coords, err := parseChunkKey(item.Key())
			if err != nil {
				s.logger.Warn("Пропуск записи: %v", err)
				continue
			}

			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			data, err := s.decode(val)
			if err != nil {
				return fmt.Errorf("чанк %v: %w", coords, err)
			}

			chunk, err := wld.CreateChunk(coords, data)
			if errors.Is(err, world.ErrChunkExists) {
				s.logger.Warn("Чанк %v уже загружен, пропуск", coords)
				continue
			}
			if err != nil {
				return err
			}
			chunk.ClearChanges()
			loaded++
		}
		return nil
	})
	if err != nil {
		return loaded, fmt.Errorf("ошибка загрузки чанков: %w", err)
	}

	wld.MarkAllDirty()
	return loaded, nil
}

// DeleteChunk удаляет чанк из хранилища
func (s *ChunkStore) DeleteChunk(coords vec.Vec3) error {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if !s.isReady {
		return ErrStoreClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(chunkKey(coords))
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления из BadgerDB: %w", err)
	}
	return nil
}

// HandleEvent удаляет из хранилища чанки, удалённые из мира
func (s *ChunkStore) HandleEvent(e world.ChunkEvent) {
	if e.Type != world.EventChunkDeleted {
		return
	}
	if err := s.DeleteChunk(e.Coords); err != nil && !errors.Is(err, ErrStoreClosed) {
		s.logger.Error("Не удалось удалить чанк %v: %v", e.Coords, err)
	}
}
