package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации движка.
// Незаданные поля получают значения из Default().
type Config struct {
	World       WorldConfig       `yaml:"world"`
	Mesher      MesherConfig      `yaml:"mesher"`
	Pathfinding PathfindingConfig `yaml:"pathfinding"`
	Engine      EngineConfig      `yaml:"engine"`
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Generator   GeneratorConfig   `yaml:"generator"`
}

// Типы хранилища мира
const (
	StorageFile   = "file"
	StorageBadger = "badger"
)

type WorldConfig struct {
	ChunkSize  int    `yaml:"chunk_size"`
	SavePath   string `yaml:"save_path"`
	Storage    string `yaml:"storage"` // file | badger
	BadgerPath string `yaml:"badger_path"`
	AssetsPath string `yaml:"assets_path"` // YAML каталог ассетов, пусто - встроенный
}

type MesherConfig struct {
	Workers int `yaml:"workers"` // 0 - по числу ядер
}

type PathfindingConfig struct {
	MaxPathLength  int `yaml:"max_path_length"`
	MaxOpened      int `yaml:"max_opened"`
	MaxClosed      int `yaml:"max_closed"`
	Workers        int `yaml:"workers"`
	SnapshotMargin int `yaml:"snapshot_margin"`
}

type EngineConfig struct {
	TickRate        int `yaml:"tick_rate"`        // Тиков в секунду
	AutosaveSeconds int `yaml:"autosave_seconds"` // 0 отключает автосохранение
}

// TickInterval возвращает длительность одного тика
func (e EngineConfig) TickInterval() time.Duration {
	if e.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(e.TickRate)
}

// AutosaveInterval возвращает период автосохранения, 0 если выключено
func (e EngineConfig) AutosaveInterval() time.Duration {
	if e.AutosaveSeconds <= 0 {
		return 0
	}
	return time.Duration(e.AutosaveSeconds) * time.Second
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "VOXEL_METRICS_PORT", 2112)
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	FileLevel  string `yaml:"file_level"`
	Dir        string `yaml:"dir"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type GeneratorConfig struct {
	Seed       int64   `yaml:"seed"`
	NoiseScale float64 `yaml:"noise_scale"`
	SizeChunks int     `yaml:"size_chunks"` // Сторона квадрата генерации в чанках
	HeightChunks int   `yaml:"height_chunks"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			ChunkSize:  16,
			SavePath:   "data/world.bin",
			Storage:    StorageFile,
			BadgerPath: "data/chunks",
		},
		Pathfinding: PathfindingConfig{
			MaxPathLength:  256,
			MaxOpened:      1024,
			MaxClosed:      256,
			SnapshotMargin: 32,
		},
		Engine: EngineConfig{
			TickRate:        60,
			AutosaveSeconds: 300,
		},
		Logging: LoggingConfig{
			Level:      "INFO",
			FileLevel:  "TRACE",
			Dir:        "logs",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 14,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-engine",
		},
		Generator: GeneratorConfig{
			Seed:       1,
			NoiseScale: 0.05,
			SizeChunks: 4,
			HeightChunks: 2,
		},
	}
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.World.ChunkSize <= 0 {
		return fmt.Errorf("world.chunk_size должен быть положительным, получено %d", c.World.ChunkSize)
	}
	switch c.World.Storage {
	case StorageFile, StorageBadger:
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.World.Storage)
	}
	if c.Pathfinding.MaxPathLength < 2 {
		return fmt.Errorf("pathfinding.max_path_length должен быть не меньше 2")
	}
	if c.Pathfinding.MaxOpened <= 0 || c.Pathfinding.MaxClosed < 0 {
		return fmt.Errorf("некорректные ёмкости поиска пути: opened=%d closed=%d",
			c.Pathfinding.MaxOpened, c.Pathfinding.MaxClosed)
	}
	if c.Engine.TickRate < 0 {
		return fmt.Errorf("engine.tick_rate не может быть отрицательным")
	}
	return nil
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", используется ENV VOXEL_CONFIG; если и он пуст,
// возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
