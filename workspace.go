package halfsquare

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

var removeAll = os.RemoveAll

// Workspace is the scratch directory holding the intermediate artifacts of a run.
type Workspace struct {
	Dir        string
	Persistent bool
}

// AcquireWorkspace returns the scratch directory for a run.
// A persistent workspace lives at dir (created if missing) and survives across runs,
// which is what makes the mask and buffer cache useful. Otherwise a uniquely named
// temporary directory is allocated.
func AcquireWorkspace(dir string, persistent bool) (*Workspace, error) {
	if !persistent {
		tmp, err := os.MkdirTemp("", "halfsquare-")
		if err != nil {
			return nil, stageErr(StageWorkspace, "", fmt.Errorf("unable to create temporary directory: %w", err))
		}
		return &Workspace{Dir: tmp}, nil
	}

	if dir == "" {
		dir = DefaultWorkDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, stageErr(StageWorkspace, dir, fmt.Errorf("unable to get absolute path: %w", err))
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, stageErr(StageWorkspace, abs, fmt.Errorf("unable to create directory: %w", err))
	}
	return &Workspace{Dir: abs, Persistent: true}, nil
}

// Scratch returns a fresh, collision free artifact path of the given kind.
func (w *Workspace) Scratch(kind string) string {
	return filepath.Join(w.Dir, kind+"-"+uuid.NewString()+".png")
}

// Path resolves name inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.Dir, name)
}

// Release removes an ephemeral workspace with everything in it.
// Persistent workspaces are left untouched.
func (w *Workspace) Release() error {
	if w == nil || w.Persistent {
		return nil
	}
	return removeAll(w.Dir)
}
