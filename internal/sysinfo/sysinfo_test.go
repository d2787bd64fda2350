package sysinfo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jasherai/mysqltuner/utils"
)

func TestMyisamIndexSize(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "shop"), 0o755); err != nil {
		t.Fatal(err)
	}

	files := map[string]int{
		"shop/orders.MYI":    4096,
		"shop/orders.MYD":    8192, // data file, not counted
		"shop/customers.myi": 1024, // lowercase extension still counts
		"ibdata1":            65536,
	}
	for name, size := range files {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	total, err := myisamIndexSize(dir)
	if err != nil {
		t.Fatalf("myisamIndexSize: %v", err)
	}
	if want := utils.MemorySize(5120); total != want {
		t.Errorf("total = %d, want %d", total, want)
	}
}

func TestMyisamIndexSizeMissingDir(t *testing.T) {
	if _, err := myisamIndexSize(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing datadir")
	}
}
