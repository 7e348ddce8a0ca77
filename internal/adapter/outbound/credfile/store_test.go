package credfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/quillpress/quillctl/internal/domain/session"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.json")
	return New(path, nil), path
}

func TestStoreSaveLoadClear(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	sess := &session.Session{
		Token: "tok-abc",
		Extra: map[string]any{"displayName": "Admin"},
	}

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("credential file mode = %04o, want 0600", perm)
		}
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got == nil {
		t.Fatal("Load() = nil after Save")
	}
	if got.Token != "tok-abc" || got.Extra["displayName"] != "Admin" {
		t.Errorf("Load() = %+v, want saved session", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() after Clear error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() after Clear = %+v, want nil", got)
	}
}

func TestStoreLoadAbsent(t *testing.T) {
	store, _ := newTestStore(t)
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != nil {
		t.Errorf("Load() with no file = %+v, want nil", got)
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"truncated json", `{"token": "abc`},
		{"wrong type", `[1, 2, 3]`},
		{"empty token", `{"token": ""}`},
		{"no token key", `{"displayName": "Admin"}`},
		{"empty file", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, path := newTestStore(t)
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			got, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v, corrupt slots must read as absent", err)
			}
			if got != nil {
				t.Errorf("Load() = %+v, want nil for corrupt slot", got)
			}
		})
	}
}

func TestStoreClearWhenEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Clear(context.Background()); err != nil {
		t.Errorf("Clear() on missing file error = %v, want nil", err)
	}
}

func TestStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	if err := store.Save(ctx, &session.Session{Token: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(ctx, &session.Session{Token: "second"}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.Token != "second" {
		t.Errorf("Token = %q, want %q", got.Token, "second")
	}

	// No stray temp file left behind.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left on disk, stat err = %v", err)
	}
}

func TestStorePersistedLayoutOnDisk(t *testing.T) {
	ctx := context.Background()
	store, path := newTestStore(t)

	sess := &session.Session{Token: "tok", Extra: map[string]any{"role": "admin"}}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("on-disk slot is not a JSON object: %v", err)
	}
	if flat["token"] != "tok" || flat["role"] != "admin" {
		t.Errorf("on-disk layout = %v, want flattened token + claims", flat)
	}
}
