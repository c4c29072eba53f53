package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("Load(missing) = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conhost.yaml")
	if err := os.WriteFile(path, []byte("codepage: cp850\nhistory_capacity: 200\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Codepage != "cp850" {
		t.Fatalf("Codepage = %q, want cp850", cfg.Codepage)
	}
	if cfg.HistoryCapacity != 200 {
		t.Fatalf("HistoryCapacity = %d, want 200", cfg.HistoryCapacity)
	}
	if cfg.ScratchBufferBytes != Default().ScratchBufferBytes {
		t.Fatalf("ScratchBufferBytes = %d, want default %d", cfg.ScratchBufferBytes, Default().ScratchBufferBytes)
	}
}
