package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/annel0/voxel-engine/internal/app"
	"github.com/annel0/voxel-engine/internal/config"
	"github.com/annel0/voxel-engine/internal/logging"
	"github.com/annel0/voxel-engine/internal/observability"
)

func main() {
	configPath := flag.String("config", "", "Путь к YAML конфигурации (по умолчанию $VOXEL_CONFIG)")
	generate := flag.Bool("generate", false, "Сгенерировать рельеф, если сохранённый мир пуст")
	flag.Parse()

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := setupLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🧊 Запуск Voxel Engine...")
	logging.Info("📡 Конфигурация: chunk_size=%d, storage=%s, tick_rate=%d",
		cfg.World.ChunkSize, cfg.World.Storage, cfg.Engine.TickRate)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТЕЛЕМЕТРИЯ ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		shutdownTelemetry = nil
	}

	// === ИНИЦИАЛИЗАЦИЯ КОМПОНЕНТОВ ===
	logging.Debug("Создание движка...")
	engine, err := app.NewEngine(cfg)
	if err != nil {
		logging.Error("❌ Ошибка создания движка: %v", err)
		os.Exit(1)
	}

	loaded, err := engine.Load()
	if err != nil {
		logging.Error("❌ Ошибка загрузки мира: %v", err)
		engine.Shutdown()
		os.Exit(1)
	}
	if loaded == 0 && *generate {
		if _, err := engine.Generate(); err != nil {
			logging.Error("❌ Ошибка генерации мира: %v", err)
		}
	}

	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	engine.Metrics().StartHTTP(metricsAddr)

	logging.Info("✅ Движок запущен")
	logging.Info("   🌍 Чанков в мире: %d", engine.World().ChunkCount())
	logging.Info("   📈 Метрики: http://localhost%s/metrics", metricsAddr)

	// Игровой цикл до сигнала завершения
	if err := engine.Run(ctx); err != nil {
		logging.Error("❌ Ошибка игрового цикла: %v", err)
	}
	logging.Info("📡 Получен сигнал завершения, остановка...")

	// === GRACEFUL SHUTDOWN ===
	if err := engine.Shutdown(); err != nil {
		logging.Error("❌ Ошибка остановки движка: %v", err)
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logging.Warn("Ошибка остановки телеметрии: %v", err)
		}
	}

	logging.Info("👋 Движок успешно остановлен")
}

func setupLogging(cfg config.LoggingConfig) error {
	consoleLevel, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	fileLevel, err := logging.ParseLevel(cfg.FileLevel)
	if err != nil {
		return err
	}

	logging.Configure(logging.Options{
		Dir:          cfg.Dir,
		MaxSizeMB:    cfg.MaxSizeMB,
		MaxBackups:   cfg.MaxBackups,
		MaxAgeDays:   cfg.MaxAgeDays,
		Compress:     cfg.Compress,
		ConsoleLevel: consoleLevel,
		FileLevel:    fileLevel,
	})
	return logging.InitDefaultLogger("server")
}
