package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/soaringjerry/Informa/internal/logger"
	"github.com/soaringjerry/Informa/internal/services"
)

const importedSuffix = ".imported"

type legacyImporter interface {
	ImportLegacy(ctx context.Context, entries []services.LegacyEntry) (*services.ImportResult, error)
}

// ImportLegacyIfNeeded loads the browser-era submission log at path once.
// A marker file next to the log records that the import already ran.
func ImportLegacyIfNeeded(ctx context.Context, path string, svc legacyImporter, log *logger.Logger) error {
	if path == "" {
		return nil
	}
	marker := path + importedSuffix
	if _, err := os.Stat(marker); err == nil {
		return nil // already imported
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check import marker: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Warn("legacy log not found, skipping import", "path", path)
			return nil
		}
		return fmt.Errorf("open legacy log: %w", err)
	}
	defer f.Close()

	entries, err := services.ParseLegacyLog(f)
	if err != nil {
		return err
	}
	log.Info("first run detected, importing legacy submission log", "path", path, "entries", len(entries))
	res, err := svc.ImportLegacy(ctx, entries)
	if err != nil {
		return fmt.Errorf("import legacy log: %w", err)
	}
	if err := os.WriteFile(marker, []byte(fmt.Sprintf("%d\n", res.Imported)), 0o644); err != nil {
		return fmt.Errorf("write import marker: %w", err)
	}
	log.Info("legacy import completed", "imported", res.Imported, "duplicates", res.Duplicates, "skipped", res.Skipped)
	return nil
}
