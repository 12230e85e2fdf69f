package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"smc_bot/internal/models"
	"smc_bot/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func testSignal(createdAt time.Time) models.SignalResult {
	return models.SignalResult{
		Symbol: "BTCUSDT",
		Side:   models.SideLong,
		Levels: models.LevelSet{Entry: 101.055, SL: 99.539, SLPct: 1.5},
		Quality: models.SignalQuality{
			Score: 130, Tier: models.TierAPlus, ShouldSend: true,
		},
		HTF:       models.NeutralHTFContext(),
		Message:   "test",
		CreatedAt: createdAt,
	}
}

func TestAppendWritesDatedJSONL(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{dir: dir, retentionDays: 14}

	created := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	w.Append(testSignal(created))
	w.Append(testSignal(created))

	b, err := os.ReadFile(filepath.Join(dir, "signals_2026-08-26.log"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	require.Len(t, lines, 2)

	var got models.SignalResult
	require.NoError(t, sonic.Unmarshal([]byte(lines[0]), &got))
	require.Equal(t, "BTCUSDT", got.Symbol)
	require.Equal(t, models.TierAPlus, got.Quality.Tier)
	require.Equal(t, 1.5, got.Levels.SLPct)
}

func TestCleanupRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{dir: dir, retentionDays: 14}

	old := filepath.Join(dir, "signals_2026-01-01.log")
	require.NoError(t, os.WriteFile(old, []byte("{}\n"), 0o644))
	stale := time.Now().Add(-20 * 24 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	// чужие файлы ретеншен не трогает
	foreign := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o644))
	require.NoError(t, os.Chtimes(foreign, stale, stale))

	w.Append(testSignal(time.Now()))

	_, err := os.Stat(old)
	require.True(t, os.IsNotExist(err), "stale log file must be removed")

	_, err = os.Stat(foreign)
	require.NoError(t, err, "unrelated files must survive cleanup")
}

func TestAppendFailureDoesNotPanic(t *testing.T) {
	// каталог, в который нельзя писать: файл на месте каталога
	base := t.TempDir()
	blocked := filepath.Join(base, "file")
	require.NoError(t, os.WriteFile(blocked, nil, 0o644))

	w := &Writer{dir: filepath.Join(blocked, "logs"), retentionDays: 14}
	w.Append(testSignal(time.Now())) // только лог ошибки, без паники
}
