package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/tile"
)

// Формат файла мира (little-endian, без заголовка):
//
//	int32 количество чанков
//	для каждого чанка: int32 x, y, z и данные чанка (см. tile.ChunkData.Encode)

type savedChunk struct {
	coords vec.Vec3
	chunk  *world.Chunk
}

// WriteWorld записывает все чанки мира в поток
func WriteWorld(w io.Writer, wld *world.World) error {
	var chunks []savedChunk
	for _, coords := range wld.ChunkCoords() {
		if chunk, ok := wld.GetChunk(coords); ok {
			chunks = append(chunks, savedChunk{coords: coords, chunk: chunk})
		}
	}

	bw := bufio.NewWriter(w)
	var buf [12]byte

	binary.LittleEndian.PutUint32(buf[:4], uint32(int32(len(chunks))))
	if _, err := bw.Write(buf[:4]); err != nil {
		return fmt.Errorf("ошибка записи количества чанков: %w", err)
	}

	for _, sc := range chunks {
		binary.LittleEndian.PutUint32(buf[0:], uint32(int32(sc.coords.X)))
		binary.LittleEndian.PutUint32(buf[4:], uint32(int32(sc.coords.Y)))
		binary.LittleEndian.PutUint32(buf[8:], uint32(int32(sc.coords.Z)))
		if _, err := bw.Write(buf[:]); err != nil {
			return fmt.Errorf("ошибка записи координат чанка %v: %w", sc.coords, err)
		}

		sc.chunk.Mu.RLock()
		err := sc.chunk.Data().Encode(bw)
		sc.chunk.Mu.RUnlock()
		if err != nil {
			return fmt.Errorf("ошибка записи чанка %v: %w", sc.coords, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("ошибка сброса буфера: %w", err)
	}
	for _, sc := range chunks {
		sc.chunk.ClearChanges()
	}
	return nil
}

// ReadWorld читает чанки из потока и добавляет их в мир.
// Все прочитанные чанки помечаются грязными. Возвращает число чанков.
func ReadWorld(r io.Reader, wld *world.World) (int, error) {
	br := bufio.NewReader(r)
	var buf [12]byte

	if _, err := io.ReadFull(br, buf[:4]); err != nil {
		return 0, fmt.Errorf("ошибка чтения количества чанков: %w", unexpected(err))
	}
	count := int32(binary.LittleEndian.Uint32(buf[:4]))
	if count < 0 {
		return 0, fmt.Errorf("отрицательное количество чанков: %d", count)
	}

	loaded := 0
	for i := int32(0); i < count; i++ {
		if _, err := io.ReadFull(br, buf[:]); err != nil {
			return loaded, fmt.Errorf("ошибка чтения координат чанка %d: %w", i, unexpected(err))
		}
		coords := vec.Vec3{
			X: int(int32(binary.LittleEndian.Uint32(buf[0:]))),
			Y: int(int32(binary.LittleEndian.Uint32(buf[4:]))),
			Z: int(int32(binary.LittleEndian.Uint32(buf[8:]))),
		}

		data := tile.NewChunkData(wld.ChunkSize())
		if err := data.Decode(br); err != nil {
			return loaded, fmt.Errorf("ошибка чтения чанка %v: %w", coords, err)
		}

		if wld.DeleteChunk(coords) {
			logging.GetStorageLogger().Warn("Чанк %v уже существует, заменяем", coords)
		}
		chunk, err := wld.CreateChunk(coords, data)
		if err != nil {
			return loaded, err
		}
		chunk.ClearChanges()
		loaded++
	}

	wld.MarkAllDirty()
	return loaded, nil
}

// SaveFile атомарно сохраняет мир в файл через временный файл
func SaveFile(path string, wld *world.World) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("ошибка создания файла %s: %w", tmp, err)
	}

	if err := WriteWorld(f, wld); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("ошибка закрытия файла %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("ошибка переименования %s: %w", tmp, err)
	}
	return nil
}

// LoadFile загружает мир из файла. Отсутствующий файл не ошибка:
// мир остаётся без чанков.
func LoadFile(path string, wld *world.World) (int, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		logging.GetStorageLogger().Info("Файл мира %s не найден, начинаем с пустого мира", path)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}
	defer f.Close()

	return ReadWorld(f, wld)
}

// unexpected превращает io.EOF посреди записи в io.ErrUnexpectedEOF
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
