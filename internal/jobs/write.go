// SPDX-License-Identifier: MIT

package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/roadcam/internal/catalog"
	rclog "github.com/ManuGH/roadcam/internal/log"
)

const catalogFileName = "catalog.json"

func catalogPath(dataDir string) string {
	return filepath.Join(dataDir, catalogFileName)
}

// snapshotFile is the on-disk catalog artifact. Records are persisted after
// sanitization, so a restore needs no further cleanup.
type snapshotFile struct {
	SavedAt time.Time        `json:"savedAt"`
	Source  string           `json:"source"`
	Regions []string         `json:"regions"`
	Cameras []catalog.Camera `json:"cameras"`
}

// writeCatalogFile persists the artifact atomically: renameio writes to a
// temp file, fsyncs, then renames over the target. A crash mid-write leaves
// the previous artifact intact.
func writeCatalogFile(path string, snap snapshotFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	pending, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending catalog file: %w", err)
	}
	defer func() {
		if cerr := pending.Cleanup(); cerr != nil {
			logger := rclog.WithComponent("jobs")
			logger.Debug().Err(cerr).Msg("cleanup pending catalog file")
		}
	}()

	if err := json.NewEncoder(pending).Encode(snap); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace catalog file: %w", err)
	}
	return nil
}

// readCatalogFile loads and validates the persisted artifact.
func readCatalogFile(path string) (*snapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode catalog artifact: %w", err)
	}
	if len(snap.Cameras) == 0 {
		return nil, fmt.Errorf("catalog artifact %s has no cameras", path)
	}
	return &snap, nil
}
