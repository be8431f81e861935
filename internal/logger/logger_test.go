package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_WritesToRotatedFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	log, err := New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("bill created")
	_ = log.Sync()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read logs directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 log file, got %d", len(entries))
	}
}

func TestNew_Stdout(t *testing.T) {
	log, err := New("")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if log == nil {
		t.Fatal("expected logger")
	}
}
