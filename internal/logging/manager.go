package logging

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Имена компонентов движка
const (
	ComponentWorld       = "world"
	ComponentMesh        = "mesh"
	ComponentPathfinding = "pathfinding"
	ComponentStorage     = "storage"
)

// LoggerManager хранит по одному логгеру на компонент
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
}

var (
	globalManager = &LoggerManager{loggers: make(map[string]*Logger)}
)

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	return globalManager
}

// GetLogger возвращает логгер компонента, создавая его с текущими параметрами
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, ok := lm.loggers[component]; ok {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать логгер %s: %w", component, err)
	}
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger как GetLogger, но при ошибке возвращает консольный логгер
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}
	opts := currentOptions()
	opts.Dir = ""
	fallback, _ := NewLoggerWithOptions(component, opts)
	return fallback
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	loggers := lm.loggers
	lm.loggers = make(map[string]*Logger)
	lm.mu.Unlock()

	var errs []error
	for component, logger := range loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("логгер %s: %w", component, err))
		}
	}
	return errors.Join(errs...)
}

// ListComponents возвращает отсортированные имена компонентов
func (lm *LoggerManager) ListComponents() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// SetLogLevel меняет уровни логгера одного компонента
func (lm *LoggerManager) SetLogLevel(component string, consoleLevel, fileLevel LogLevel) error {
	lm.mu.Lock()
	logger, ok := lm.loggers[component]
	lm.mu.Unlock()

	if !ok {
		return fmt.Errorf("логгер компонента %s не найден", component)
	}
	logger.SetLevels(consoleLevel, fileLevel)
	return nil
}

// SetAllLevels меняет уровни всех уже созданных логгеров
func (lm *LoggerManager) SetAllLevels(consoleLevel, fileLevel LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	for _, logger := range lm.loggers {
		logger.SetLevels(consoleLevel, fileLevel)
	}
}

// GetComponentLogger логгер произвольного компонента
func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

func GetWorldLogger() *Logger       { return GetComponentLogger(ComponentWorld) }
func GetMeshLogger() *Logger        { return GetComponentLogger(ComponentMesh) }
func GetPathfindingLogger() *Logger { return GetComponentLogger(ComponentPathfinding) }
func GetStorageLogger() *Logger     { return GetComponentLogger(ComponentStorage) }
