package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"smc_bot/internal/models"
	"smc_bot/internal/modules/config"
	"smc_bot/pkg/logger"
)

const (
	filePrefix = "signals_"
	fileSuffix = ".log"
)

// Writer — append-only JSONL-журнал сигналов, файл на календарный день.
// Ошибка записи логируется и глотается: журнал не участвует в happy path.
type Writer struct {
	dir           string
	retentionDays int

	mu sync.Mutex
}

func NewWriter(cfg *config.Config) *Writer {
	return &Writer{
		dir:           cfg.SignalLogDir,
		retentionDays: cfg.SignalLogRetention,
	}
}

// Append — одна строка JSON на сигнал в файл текущего дня.
func (w *Writer) Append(res models.SignalResult) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.append(res); err != nil {
		logger.Error("siglog: append: %v", err)
		return
	}
	w.cleanup()
}

func (w *Writer) append(res models.SignalResult) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", w.dir, err)
	}

	line, err := sonic.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}

	name := filePrefix + res.CreatedAt.Format("2006-01-02") + fileSuffix
	f, err := os.OpenFile(filepath.Join(w.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// cleanup — удаляет файлы журнала старше retention по mtime.
func (w *Writer) cleanup() {
	if w.retentionDays <= 0 {
		return
	}

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}

	cutoff := time.Now().Add(-time.Duration(w.retentionDays) * 24 * time.Hour)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(w.dir, name)); err != nil {
				logger.Error("siglog: cleanup %s: %v", name, err)
				continue
			}
			logger.Info("siglog: removed old file %s", name)
		}
	}
}
