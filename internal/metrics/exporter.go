package metrics

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

// WorldStats источник текущего состояния мира для gauge-метрик
type WorldStats interface {
	ChunkCount() int
	DirtyCount() int
}

// Exporter собирает метрики мешинга, поиска пути и процесса.
// Реализует world.Listener (через HandleEvent) и pathfinding.Observer.
type Exporter struct {
	registry *prometheus.Registry
	stats    WorldStats
	server   *http.Server
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	meshDuration  prometheus.Histogram
	meshVertices  prometheus.Histogram
	chunksMeshed  prometheus.Counter
	chunkEvents   *prometheus.CounterVec
	chunks        prometheus.Gauge
	dirtyChunks   prometheus.Gauge
	pathRequests  *prometheus.CounterVec
	pathInflight  prometheus.Gauge
	pathDuration  prometheus.Histogram
	pathNodes     prometheus.Histogram
	processCPU    prometheus.Gauge
	processMemory prometheus.Gauge
}

// NewExporter создаёт экспортер с собственным регистром.
// stats может быть nil, тогда gauge мира не обновляются.
func NewExporter(stats WorldStats) *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		stats:    stats,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
		meshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "mesh_duration_seconds",
			Help:      "Длительность построения меша одного чанка.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		meshVertices: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "mesh_vertices",
			Help:      "Число вершин в построенном меше чанка.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
		chunksMeshed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_meshed_total",
			Help:      "Общее число перестроенных мешей.",
		}),
		chunkEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_events_total",
			Help:      "События чанков по типу.",
		}, []string{"type"}),
		chunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "chunks",
			Help:      "Количество загруженных чанков.",
		}),
		dirtyChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "dirty_chunks",
			Help:      "Количество чанков, ожидающих перестроения меша.",
		}),
		pathRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pathfinding",
			Name:      "requests_total",
			Help:      "Завершённые запросы поиска пути по результату.",
		}, []string{"result"}),
		pathInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pathfinding",
			Name:      "requests_inflight",
			Help:      "Запросы, результат которых ещё не доставлен.",
		}),
		pathDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pathfinding",
			Name:      "job_duration_seconds",
			Help:      "Время выполнения поиска пути на воркере.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		pathNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pathfinding",
			Name:      "path_nodes",
			Help:      "Длина найденного пути в узлах.",
			Buckets:   prometheus.LinearBuckets(0, 16, 17),
		}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "process",
			Name:      "cpu_usage_percent",
			Help:      "Загрузка CPU процессом.",
		}),
		processMemory: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "process",
			Name:      "memory_rss_bytes",
			Help:      "Резидентная память процесса.",
		}),
	}

	e.registry.MustRegister(
		e.meshDuration, e.meshVertices, e.chunksMeshed, e.chunkEvents,
		e.chunks, e.dirtyChunks,
		e.pathRequests, e.pathInflight, e.pathDuration, e.pathNodes,
		e.processCPU, e.processMemory,
	)
	return e
}

// Registry возвращает регистр метрик
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// HandleEvent обрабатывает события мира
func (e *Exporter) HandleEvent(ev world.ChunkEvent) {
	e.chunkEvents.WithLabelValues(ev.Type.String()).Inc()
	if ev.Type == world.EventChunkMeshed {
		e.chunksMeshed.Inc()
		e.meshDuration.Observe(ev.Duration.Seconds())
		e.meshVertices.Observe(float64(ev.VertexCount))
	}
}

// PathRequested учитывает новый запрос поиска пути
func (e *Exporter) PathRequested() {
	e.pathInflight.Inc()
}

// PathCompleted учитывает доставленный результат
func (e *Exporter) PathCompleted(valid bool, nodeCount int, elapsed time.Duration) {
	e.pathInflight.Dec()
	result := "invalid"
	if valid {
		result = "valid"
		e.pathNodes.Observe(float64(nodeCount))
	}
	e.pathRequests.WithLabelValues(result).Inc()
	e.pathDuration.Observe(elapsed.Seconds())
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112")
// и цикл обновления gauge-метрик. Метод неблокирующий.
func (e *Exporter) StartHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	e.server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go e.loop(time.Second)
}

// Stop останавливает цикл обновления и HTTP-сервер
func (e *Exporter) Stop() {
	e.stopOnce.Do(func() {
		close(e.quit)
		if e.server == nil {
			return
		}
		<-e.done
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := e.server.Shutdown(ctx); err != nil {
			logging.Warn("Ошибка остановки HTTP сервера метрик: %v", err)
		}
	})
}

func (e *Exporter) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer close(e.done)

	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logging.Warn("Метрики процесса недоступны: %v", err)
	}

	for {
		select {
		case <-ticker.C:
			e.Collect(proc)
		case <-e.quit:
			return
		}
	}
}

// Collect обновляет gauge-метрики мира и процесса. proc может быть nil.
func (e *Exporter) Collect(proc *process.Process) {
	if e.stats != nil {
		e.chunks.Set(float64(e.stats.ChunkCount()))
		e.dirtyChunks.Set(float64(e.stats.DirtyCount()))
	}
	if proc == nil {
		return
	}
	if cpuPercent, err := proc.CPUPercent(); err == nil {
		e.processCPU.Set(cpuPercent)
	}
	if mem, err := proc.MemoryInfo(); err == nil {
		e.processMemory.Set(float64(mem.RSS))
	}
}
