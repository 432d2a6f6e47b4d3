package serverrun

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/kittors/simple-message-service/internal/config"
	pebblestore "github.com/kittors/simple-message-service/internal/storage/pebble"
)

func TestOptionsDataDirFallback(t *testing.T) {
	tests := []struct {
		name     string
		dataDir  string
		cfgDir   string
		expected string
	}{
		{name: "flag wins over config", dataDir: "/custom/data", cfgDir: "/cfg/data", expected: "/custom/data"},
		{name: "config used when flag empty", dataDir: "", cfgDir: "/cfg/data", expected: "/cfg/data"},
		{name: "both empty falls back to OS default", dataDir: "", cfgDir: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.dataDir
			if dir == "" {
				dir = tt.cfgDir
			}
			if dir == "" {
				dir = cfgpkg.DefaultDataDir()
			}
			if tt.expected != "" {
				if dir != tt.expected {
					t.Errorf("DataDir = %s, want %s", dir, tt.expected)
				}
				return
			}
			if dir == "" {
				t.Error("expected a non-empty OS default data dir")
			}
		})
	}
}

func TestCacheDirSubdirectory(t *testing.T) {
	base := "/var/lib/sms"
	if got := filepath.Join(base, "cache"); got != "/var/lib/sms/cache" {
		t.Errorf("cache dir = %s", got)
	}
}

// TestRunIntegration starts the full server briefly and relies on context
// cancellation for shutdown.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg := cfgpkg.Default()
	cfg.LogLevel = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := Run(ctx, Options{
		DataDir:  t.TempDir(),
		HTTPAddr: ":0",
		Fsync:    pebblestore.FsyncModeNever,
		Config:   cfg,
	})
	if err != nil {
		t.Errorf("run: %v", err)
	}
}
