package main

import (
	"flag"
	"log"
	"time"

	"github.com/annel0/voxel-engine/internal/storage"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
)

func main() {
	var (
		seed      = flag.Int64("seed", 1, "Сид генератора")
		size      = flag.Int("size", 8, "Сторона квадрата генерации в чанках")
		height    = flag.Int("height", 2, "Высота генерации в чанках")
		chunkSize = flag.Int("chunk-size", 16, "Длина стороны чанка")
		scale     = flag.Float64("scale", 0.05, "Масштаб шума")
		amplitude = flag.Int("amplitude", 10, "Разброс высот")
		out       = flag.String("out", "data/world.bin", "Файл мира")
		badgerDir = flag.String("badger", "", "Каталог BadgerDB (вместо файла)")
	)
	flag.Parse()

	started := time.Now()

	w := world.NewWorld(*chunkSize, nil)
	gen := world.NewGenerator(*seed)
	gen.NoiseScale = *scale
	gen.Amplitude = *amplitude

	half := *size / 2
	from := vec.Vec3{X: -half, Y: 0, Z: -half}
	to := vec.Vec3{X: *size - half - 1, Y: *height - 1, Z: *size - half - 1}

	n, err := gen.Generate(w, from, to)
	if err != nil {
		log.Fatalf("❌ Ошибка генерации: %v", err)
	}
	log.Printf("🌍 Сгенерировано %d чанков (seed=%d) за %s", n, *seed, time.Since(started))

	if *badgerDir != "" {
		store, err := storage.NewChunkStore(*badgerDir, *chunkSize)
		if err != nil {
			log.Fatalf("❌ Ошибка открытия хранилища: %v", err)
		}
		saved, err := store.SaveWorld(w, false)
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if err != nil {
			log.Fatalf("❌ Ошибка сохранения: %v", err)
		}
		log.Printf("💾 Записано %d чанков в %s", saved, *badgerDir)
		return
	}

	if err := storage.SaveFile(*out, w); err != nil {
		log.Fatalf("❌ Ошибка сохранения: %v", err)
	}
	log.Printf("💾 Мир записан в %s", *out)
}
