package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/metrics"
	"github.com/annel0/voxel-engine/internal/pathfinding"
	"github.com/annel0/voxel-engine/internal/storage"
	"github.com/annel0/voxel-engine/internal/vec"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/annel0/voxel-engine/internal/world/asset"
	"github.com/annel0/voxel-engine/internal/world/mesh"
)

// Engine корень приложения: владеет миром, мешером, менеджером поиска пути,
// хранилищем и метриками, и продвигает их по тикам.
type Engine struct {
	cfg      *config.Config
	catalog  *asset.Catalog
	mesher   *mesh.Mesher
	world    *world.World
	paths    *pathfinding.Manager
	store    *storage.ChunkStore // nil для файлового хранилища
	metrics  *metrics.Exporter
	logger   *logging.Logger
	saveMu   sync.Mutex
	lastSave time.Time
	closed   bool
}

// NewEngine собирает движок по конфигурации. Мир создаётся пустым,
// загрузка выполняется отдельно через Load.
func NewEngine(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetComponentLogger("engine")

	catalog := asset.DefaultCatalog()
	if cfg.World.AssetsPath != "" {
		loaded, err := asset.LoadCatalog(cfg.World.AssetsPath)
		if err != nil {
			return nil, err
		}
		catalog = loaded
	}
	logger.Debug("Каталог ассетов: %d тайлов, %d текстур", catalog.TileCount(), len(catalog.Atlas()))

	mesher := mesh.NewMesher(cfg.Mesher.Workers, catalog)
	w := world.NewWorld(cfg.World.ChunkSize, mesher)

	w.Subscribe(world.LogEvents(logger))

	exporter := metrics.NewExporter(w)
	w.Subscribe(exporter.HandleEvent)

	var store *storage.ChunkStore
	if cfg.World.Storage == config.StorageBadger {
		var err error
		store, err = storage.NewChunkStore(cfg.World.BadgerPath, cfg.World.ChunkSize)
		if err != nil {
			mesher.Close()
			return nil, err
		}
		w.Subscribe(store.HandleEvent)
	}

	paths := pathfinding.NewManager(w, pathfinding.ManagerConfig{
		Options: pathfinding.Options{
			MaxPathLength: cfg.Pathfinding.MaxPathLength,
			MaxOpened:     cfg.Pathfinding.MaxOpened,
			MaxClosed:     cfg.Pathfinding.MaxClosed,
		},
		Workers:        cfg.Pathfinding.Workers,
		SnapshotMargin: cfg.Pathfinding.SnapshotMargin,
		Observer:       exporter,
	})

	return &Engine{
		cfg:      cfg,
		catalog:  catalog,
		mesher:   mesher,
		world:    w,
		paths:    paths,
		store:    store,
		metrics:  exporter,
		logger:   logger,
		lastSave: time.Now(),
	}, nil
}

// World возвращает мир движка
func (e *Engine) World() *world.World { return e.world }

// Paths возвращает менеджер поиска пути
func (e *Engine) Paths() *pathfinding.Manager { return e.paths }

// Metrics возвращает экспортер метрик
func (e *Engine) Metrics() *metrics.Exporter { return e.metrics }

// Catalog возвращает каталог ассетов
func (e *Engine) Catalog() *asset.Catalog { return e.catalog }

// Load загружает мир из настроенного хранилища. Все загруженные чанки
// будут перестроены на ближайшем тике.
func (e *Engine) Load() (int, error) {
	var (
		n   int
		err error
	)
	if e.store != nil {
		n, err = e.store.LoadAll(e.world)
	} else {
		n, err = storage.LoadFile(e.cfg.World.SavePath, e.world)
	}
	if err != nil {
		return n, fmt.Errorf("ошибка загрузки мира: %w", err)
	}
	e.logger.Info("Загружено %d чанков", n)
	return n, nil
}

// Generate заполняет мир рельефом по настройкам генератора, если мир пуст
func (e *Engine) Generate() (int, error) {
	if e.world.ChunkCount() > 0 {
		return 0, nil
	}
	gc := e.cfg.Generator
	gen := world.NewGenerator(gc.Seed)
	if gc.NoiseScale > 0 {
		gen.NoiseScale = gc.NoiseScale
	}
	half := gc.SizeChunks / 2
	from := vec.Vec3{X: -half, Y: 0, Z: -half}
	to := vec.Vec3{X: gc.SizeChunks - half - 1, Y: gc.HeightChunks - 1, Z: gc.SizeChunks - half - 1}

	n, err := gen.Generate(e.world, from, to)
	if err != nil {
		return n, err
	}
	e.logger.Info("Сгенерировано %d чанков (seed=%d)", n, gc.Seed)
	return n, nil
}

// Save сохраняет мир. Для Badger пишутся только изменённые чанки.
func (e *Engine) Save() error {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()

	started := time.Now()
	if e.store != nil {
		n, err := e.store.SaveWorld(e.world, true)
		if err != nil {
			return fmt.Errorf("ошибка сохранения мира: %w", err)
		}
		e.logger.Debug("Сохранено %d изменённых чанков за %s", n, time.Since(started))
	} else {
		if err := storage.SaveFile(e.cfg.World.SavePath, e.world); err != nil {
			return fmt.Errorf("ошибка сохранения мира: %w", err)
		}
		e.logger.Debug("Мир сохранён в %s за %s", e.cfg.World.SavePath, time.Since(started))
	}
	e.lastSave = time.Now()
	return nil
}

// Tick один шаг движка: перестроение грязных чанков и доставка
// готовых путей. Колбэки путей вызываются в текущей горутине.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) (meshed, delivered int) {
	meshed = e.world.Tick(ctx, dt)
	delivered = e.paths.Tick()
	return meshed, delivered
}

// Run крутит игровой цикл с частотой engine.tick_rate до отмены контекста
func (e *Engine) Run(ctx context.Context) error {
	interval := e.cfg.Engine.TickInterval()
	autosave := e.cfg.Engine.AutosaveInterval()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.logger.Info("Игровой цикл запущен: тик %s, автосохранение %s", interval, autosave)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Игровой цикл остановлен")
			return nil
		case now := <-ticker.C:
			e.Tick(ctx, now.Sub(last))
			last = now

			if autosave > 0 && now.Sub(e.lastSaveTime()) >= autosave {
				if err := e.Save(); err != nil {
					e.logger.Error("Автосохранение не удалось: %v", err)
				}
			}
		}
	}
}

func (e *Engine) lastSaveTime() time.Time {
	e.saveMu.Lock()
	defer e.saveMu.Unlock()
	return e.lastSave
}

// Shutdown дожидается всех запросов пути, сохраняет мир и освобождает ресурсы.
// Повторный вызов ничего не делает.
func (e *Engine) Shutdown() error {
	if e.closed {
		return nil
	}
	e.closed = true

	e.paths.Shutdown()

	var errs []error
	if err := e.Save(); err != nil {
		errs = append(errs, err)
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("ошибка закрытия хранилища: %w", err))
		}
	}
	e.mesher.Close()
	e.metrics.Stop()

	return errors.Join(errs...)
}
