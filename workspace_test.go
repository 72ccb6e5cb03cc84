package halfsquare

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireWorkspace_Persistent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tmp")

	ws, err := AcquireWorkspace(dir, true)
	if err != nil {
		t.Fatalf("AcquireWorkspace: %v", err)
	}
	if !ws.Persistent {
		t.Error("expected a persistent workspace")
	}
	if fi, err := os.Stat(ws.Dir); err != nil || !fi.IsDir() {
		t.Fatalf("workspace dir not created: %v", err)
	}

	// Acquiring again returns the same directory, and releasing keeps it.
	again, err := AcquireWorkspace(dir, true)
	if err != nil {
		t.Fatal(err)
	}
	if again.Dir != ws.Dir {
		t.Errorf("second acquire = %q, want %q", again.Dir, ws.Dir)
	}
	if err := ws.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(ws.Dir); err != nil {
		t.Errorf("persistent workspace removed on release: %v", err)
	}
}

func TestAcquireWorkspace_Ephemeral(t *testing.T) {
	a, err := AcquireWorkspace("ignored", false)
	if err != nil {
		t.Fatalf("AcquireWorkspace: %v", err)
	}
	b, err := AcquireWorkspace("ignored", false)
	if err != nil {
		t.Fatalf("AcquireWorkspace: %v", err)
	}
	defer b.Release()

	if a.Persistent || a.Dir == b.Dir {
		t.Fatalf("ephemeral workspaces must be unique: %q, %q", a.Dir, b.Dir)
	}
	if err := os.WriteFile(a.Path("x.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := a.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(a.Dir); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("ephemeral workspace still present after release: %v", err)
	}
}

func TestAcquireWorkspace_Failure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := AcquireWorkspace(filepath.Join(file, "sub"), true)
	var se *StageError
	if !errors.As(err, &se) || se.Stage != StageWorkspace {
		t.Fatalf("error = %v, want workspace StageError", err)
	}
}

func TestWorkspace_Scratch(t *testing.T) {
	ws := &Workspace{Dir: t.TempDir()}
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		p := ws.Scratch("crop")
		if seen[p] {
			t.Fatalf("duplicate scratch path %q", p)
		}
		seen[p] = true
		if filepath.Dir(p) != ws.Dir || !strings.HasPrefix(filepath.Base(p), "crop-") || filepath.Ext(p) != ".png" {
			t.Fatalf("unexpected scratch path %q", p)
		}
	}
}
