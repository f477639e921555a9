// SPDX-License-Identifier: MPL-2.0

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modkit-cli/internal/config"
)

type (
	// Handler processes one file. It must not panic on bad input; every problem
	// is reported through the returned ItemResult.
	Handler func(ctx context.Context, path string) ItemResult

	// Observer is told about progress as a run happens.
	Observer interface {
		StageStarted(stage string, total int)
		ItemFinished(stage string, item ItemResult)
	}

	nopObserver struct{}
)

func (nopObserver) StageStarted(string, int)         {}
func (nopObserver) ItemFinished(string, ItemResult) {}

// ScanDir returns the regular files in dir whose extension matches ext, ignoring
// case, as full paths in directory listing order (sorted by name).
func ScanDir(dir string, ext config.Extension) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !ext.Matches(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// Dispatch runs h on every file in order and never stops early on a failed item.
// Once ctx is done the remaining files are recorded as skipped.
func Dispatch(ctx context.Context, stage string, files []string, h Handler, obs Observer) *StageReport {
	if obs == nil {
		obs = nopObserver{}
	}
	start := time.Now()
	report := &StageReport{Stage: stage, Items: make([]ItemResult, 0, len(files))}
	obs.StageStarted(stage, len(files))

	for _, f := range files {
		var res ItemResult
		if err := ctx.Err(); err != nil {
			res = skipped("", "canceled", err)
		} else {
			res = h(ctx, f)
		}
		if res.Name == "" {
			res.Name = filepath.Base(f)
		}

		switch res.Status {
		case StatusFailed:
			slog.Warn("item failed", "stage", stage, "file", res.Name, "error", res.Err)
		case StatusSkipped:
			slog.Info("item skipped", "stage", stage, "file", res.Name, "reason", res.Detail)
		default:
			slog.Debug("item done", "stage", stage, "file", res.Name, "detail", res.Detail)
		}

		report.Items = append(report.Items, res)
		obs.ItemFinished(stage, res)
	}

	report.Duration = time.Since(start)
	return report
}

// stemPath returns dir/<base of src without extension><ext>.
func stemPath(dir, src string, ext config.Extension) string {
	base := filepath.Base(src)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+string(ext))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
