package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSourceTree(t *testing.T) {
	root := SourceTree(t, map[string]string{
		"com/shop/Orders.java": "class Orders {}",
		"README":               "docs",
	})

	data, err := os.ReadFile(filepath.Join(root, "com", "shop", "Orders.java"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "class Orders {}" {
		t.Errorf("content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(root, "README")); err != nil {
		t.Errorf("README not written: %v", err)
	}
}

func TestWriteTree_ExistingRoot(t *testing.T) {
	root := t.TempDir()
	WriteTree(t, root, map[string]string{"a/b/C.java": "class C {}"})
	WriteTree(t, root, map[string]string{"a/b/C.java": "class D {}"})

	data, err := os.ReadFile(filepath.Join(root, "a", "b", "C.java"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "class D {}" {
		t.Errorf("content = %q, want the rewritten file", data)
	}
}
