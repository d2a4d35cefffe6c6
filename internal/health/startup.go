// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ManuGH/roadcam/internal/config"
	rclog "github.com/ManuGH/roadcam/internal/log"
	platformnet "github.com/ManuGH/roadcam/internal/platform/net"
)

// PerformStartupChecks validates the environment before the server starts:
// filesystem access and address shapes, the things config.Validate cannot
// see from values alone.
func PerformStartupChecks(_ context.Context, cfg config.AppConfig) error {
	logger := rclog.WithComponent("startup-check")
	logger.Info().Msg("Running pre-flight startup checks...")

	if err := checkDataDir(logger, cfg.DataDir); err != nil {
		return fmt.Errorf("data directory check failed: %w", err)
	}

	if err := checkListen(logger, cfg.Listen); err != nil {
		return fmt.Errorf("listen address check failed: %w", err)
	}

	if err := checkUpstreams(logger, cfg); err != nil {
		return fmt.Errorf("upstream check failed: %w", err)
	}

	logger.Info().Msg("✅ All startup checks passed")
	return nil
}

func checkDataDir(logger zerolog.Logger, path string) error {
	if path == "" {
		logger.Warn().Msg("data directory not configured; warm starts disabled")
		return nil
	}

	if err := os.MkdirAll(path, 0o750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", path, err)
	}

	// Probe writability, a read-only volume mount fails here instead of at
	// the first refresh.
	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte("ok"), 0o600); err != nil {
		return fmt.Errorf("directory is not writable: %s (error: %v)", path, err)
	}
	_ = os.Remove(testFile)

	tempDir := filepath.Clean(os.TempDir())
	dataDir := filepath.Clean(path)
	if tempDir != "." && (dataDir == tempDir || strings.HasPrefix(dataDir, tempDir+string(filepath.Separator))) {
		logger.Warn().
			Str(rclog.FieldPath, path).
			Msg("data directory is under temp; the catalog artifact may be lost on reboot")
	}

	logger.Info().Str(rclog.FieldPath, path).Msg("✓ Data directory is writable")
	return nil
}

func checkListen(logger zerolog.Logger, addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address %q: %w", addr, err)
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("invalid listen port %q in %q", port, addr)
	}
	logger.Info().Str("addr", addr).Msg("✓ Listen address is valid")
	return nil
}

func checkUpstreams(logger zerolog.Logger, cfg config.AppConfig) error {
	upstreams := []struct {
		name string
		url  string
	}{
		{"feed", cfg.Feed.BaseURL},
		{"images", cfg.Images.BaseURL},
		{"live", cfg.Live.BaseURL},
	}

	for _, up := range upstreams {
		if up.url == "" {
			continue
		}
		if _, ok := platformnet.ParseDirectHTTPURL(up.url); !ok {
			return fmt.Errorf("%s base URL %q is not a plain http(s) URL", up.name, up.url)
		}
		logger.Info().
			Str(rclog.FieldBaseURL, up.url).
			Msgf("✓ %s base URL is valid", up.name)
	}
	return nil
}
