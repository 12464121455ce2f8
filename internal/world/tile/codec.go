package tile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// ErrUnknownModel возвращается при чтении тайла с неизвестной моделью
var ErrUnknownModel = errors.New("неизвестная модель тайла")

// Формат тайла (little-endian):
//
//	uint16 assetID
//	uint8  model     – только если assetID != AirAssetID
//	uint8  rotation  – только если model != ModelCube
//
// После тайлов: int32 количество префабов, затем для каждого
// uint16 assetID, float32×3 позиция, float32×3 поворот.

// Encode записывает тайлы и префабы чанка в поток
func (c *ChunkData) Encode(w io.Writer) error {
	bw, ok := w.(*bufio.Writer)
	if !ok {
		bw = bufio.NewWriter(w)
	}

	var buf [4]byte
	for i, t := range c.tiles {
		binary.LittleEndian.PutUint16(buf[:2], t.AssetID)
		n := 2
		if !t.IsAir() {
			buf[n] = byte(t.Model)
			n++
			if t.Model != ModelCube {
				buf[n] = byte(t.Rotation)
				n++
			}
		}
		if _, err := bw.Write(buf[:n]); err != nil {
			return fmt.Errorf("ошибка записи тайла %d: %w", i, err)
		}
	}

	binary.LittleEndian.PutUint32(buf[:], uint32(int32(len(c.prefabs))))
	if _, err := bw.Write(buf[:4]); err != nil {
		return fmt.Errorf("ошибка записи количества префабов: %w", err)
	}

	var pbuf [26]byte
	for i, p := range c.prefabs {
		binary.LittleEndian.PutUint16(pbuf[0:], p.AssetID)
		for k := 0; k < 3; k++ {
			binary.LittleEndian.PutUint32(pbuf[2+k*4:], math.Float32bits(p.Position[k]))
			binary.LittleEndian.PutUint32(pbuf[14+k*4:], math.Float32bits(p.Rotation[k]))
		}
		if _, err := bw.Write(pbuf[:]); err != nil {
			return fmt.Errorf("ошибка записи префаба %d: %w", i, err)
		}
	}

	if !ok {
		return bw.Flush()
	}
	return nil
}

// Decode читает тайлы и префабы из потока, перезаписывая содержимое чанка.
// Обрезанный поток возвращает ошибку, оборачивающую io.ErrUnexpectedEOF.
func (c *ChunkData) Decode(r io.Reader) error {
	br, ok := r.(io.ByteReader)
	if !ok {
		buffered := bufio.NewReader(r)
		r, br = buffered, buffered
	}

	var buf [26]byte
	for i := range c.tiles {
		if _, err := io.ReadFull(r, buf[:2]); err != nil {
			return fmt.Errorf("ошибка чтения тайла %d: %w", i, unexpected(err))
		}
		assetID := binary.LittleEndian.Uint16(buf[:2])
		if assetID == AirAssetID {
			c.tiles[i] = Air
			continue
		}

		m, err := br.ReadByte()
		if err != nil {
			return fmt.Errorf("ошибка чтения модели тайла %d: %w", i, unexpected(err))
		}
		model := ModelType(m)
		if !model.Valid() {
			return fmt.Errorf("тайл %d: %w: %d", i, ErrUnknownModel, m)
		}

		var rotation Rotation
		if model != ModelCube {
			rb, err := br.ReadByte()
			if err != nil {
				return fmt.Errorf("ошибка чтения поворота тайла %d: %w", i, unexpected(err))
			}
			rotation = Rotation(rb)
		}
		c.tiles[i] = TileData{AssetID: assetID, Model: model, Rotation: rotation}
	}

	if _, err := io.ReadFull(r, buf[:4]); err != nil {
		return fmt.Errorf("ошибка чтения количества префабов: %w", unexpected(err))
	}
	count := int32(binary.LittleEndian.Uint32(buf[:4]))
	if count < 0 {
		return fmt.Errorf("отрицательное количество префабов: %d", count)
	}

	c.ClearPrefabs()
	for i := int32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return fmt.Errorf("ошибка чтения префаба %d: %w", i, unexpected(err))
		}
		p := TilePrefabData{AssetID: binary.LittleEndian.Uint16(buf[0:])}
		for k := 0; k < 3; k++ {
			p.Position[k] = math.Float32frombits(binary.LittleEndian.Uint32(buf[2+k*4:]))
			p.Rotation[k] = math.Float32frombits(binary.LittleEndian.Uint32(buf[14+k*4:]))
		}
		c.prefabs = append(c.prefabs, p)
	}
	return nil
}

// MarshalBinary кодирует чанк в срез байт
func (c *ChunkData) MarshalBinary() ([]byte, error) {
	var b bytes.Buffer
	b.Grow(len(c.tiles) * 3)
	if err := c.Encode(&b); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// UnmarshalBinary декодирует чанк из среза байт.
// Размер чанка должен быть задан заранее через NewChunkData.
func (c *ChunkData) UnmarshalBinary(data []byte) error {
	return c.Decode(bytes.NewReader(data))
}

// unexpected превращает io.EOF посреди записи в io.ErrUnexpectedEOF
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
