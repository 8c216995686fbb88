package probe

import (
	"os"
	"path/filepath"
	"testing"
)

// mkdir creates a subdirectory under parent with the given permissions and
// returns its path.
func mkdir(t *testing.T, parent, name string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(parent, name)
	if err := os.Mkdir(path, perm); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
	// Restore permissions so t.TempDir cleanup can remove the tree.
	t.Cleanup(func() { _ = os.Chmod(path, 0o755) })
	return path
}

func Test_FindWritableDir_Cases(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission-based probing is meaningless as root")
	}

	tests := []struct {
		name string
		// setup builds a volume root and returns (root, systemTemp, wantDir, wantOK).
		setup func(t *testing.T) (string, string, string, bool)
	}{
		{
			name: "writable root wins immediately",
			setup: func(t *testing.T) (string, string, string, bool) {
				root := t.TempDir()
				// Even with a writable Users subdirectory present, the root
				// short-circuits the search.
				mkdir(t, root, "Users", 0o755)
				return root, t.TempDir(), root, true
			},
		},
		{
			name: "unwritable root falls through to Users",
			setup: func(t *testing.T) (string, string, string, bool) {
				parent := t.TempDir()
				// Build the tree writable, then lock the root.
				root := mkdir(t, parent, "vol", 0o755)
				users := mkdir(t, root, "Users", 0o755)
				_ = os.Chmod(root, 0o555)
				return root, t.TempDir(), users, true
			},
		},
		{
			name: "missing subdirectories fall through to system temp",
			setup: func(t *testing.T) (string, string, string, bool) {
				parent := t.TempDir()
				root := mkdir(t, parent, "vol", 0o555)
				temp := t.TempDir()
				return root, temp, temp, true
			},
		},
		{
			name: "nonexistent root still reaches system temp",
			setup: func(t *testing.T) (string, string, string, bool) {
				temp := t.TempDir()
				return filepath.Join(t.TempDir(), "gone"), temp, temp, true
			},
		},
		{
			name: "every candidate denied",
			setup: func(t *testing.T) (string, string, string, bool) {
				parent := t.TempDir()
				root := mkdir(t, parent, "vol", 0o755)
				mkdir(t, root, "Users", 0o555)
				mkdir(t, root, "Volumes", 0o555)
				mkdir(t, root, "tmp", 0o555)
				_ = os.Chmod(root, 0o555)
				tempParent := t.TempDir()
				temp := mkdir(t, tempParent, "temp", 0o555)
				return root, temp, "", false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, temp, wantDir, wantOK := tt.setup(t)
			p := NewFSProber(temp)

			dir, ok := p.FindWritableDir(root)

			if ok != wantOK {
				t.Fatalf("ok = %v, want %v (dir=%q)", ok, wantOK, dir)
			}
			if dir != wantDir {
				t.Errorf("dir = %q, want %q", dir, wantDir)
			}
		})
	}
}

func Test_FindWritableDir_LeavesNoProbeFiles(t *testing.T) {
	root := t.TempDir()
	p := NewFSProber(t.TempDir())

	if _, ok := p.FindWritableDir(root); !ok {
		t.Fatal("expected writable root")
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("read root: %v", err)
	}
	for _, e := range entries {
		t.Errorf("probe left file behind: %s", e.Name())
	}
}
