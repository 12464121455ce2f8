package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	lvl, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, INFO, lvl)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}

func TestLoggerWritesFileByLevel(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Dir = dir
	opts.ConsoleLevel = ERROR
	opts.FileLevel = DEBUG

	l, err := NewLoggerWithOptions("world", opts)
	require.NoError(t, err)

	l.Trace("скрытое сообщение")
	l.Debug("чанк %d перестроен", 7)
	l.Warn("предупреждение")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "world.log"))
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.Contains(content, "[DEBUG] [world] чанк 7 перестроен"))
	assert.True(t, strings.Contains(content, "[WARN] [world] предупреждение"))
	assert.False(t, strings.Contains(content, "скрытое сообщение"), "TRACE ниже порога файла")
}

func TestPackageHelpersBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Info("сообщение до инициализации")
		Error("ошибка до инициализации: %v", os.ErrNotExist)
	})
}

func TestManagerCachesLoggers(t *testing.T) {
	lm := GetLoggerManager()
	a := lm.MustGetLogger("test-component")
	b := lm.MustGetLogger("test-component")
	assert.Same(t, a, b, "логгер компонента создаётся один раз")
	assert.Contains(t, lm.ListComponents(), "test-component")

	require.NoError(t, lm.SetLogLevel("test-component", WARN, WARN))
	assert.Error(t, lm.SetLogLevel("missing", WARN, WARN))

	lm.SetAllLevels(ERROR, ERROR)
	assert.Same(t, GetWorldLogger(), lm.MustGetLogger(ComponentWorld))
}
