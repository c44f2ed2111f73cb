package results

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveLoad(t *testing.T) {
	d, err := Open(filepath.Join(t.TempDir(), "processed"))
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Save("abc123", []byte(`{"type":"FeatureCollection"}`)); err != nil {
		t.Fatal(err)
	}
	b, err := d.Load("abc123")
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"type":"FeatureCollection"}` {
		t.Errorf("got %s", b)
	}
	if _, err := d.Load("abc124"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestBadID(t *testing.T) {
	d, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"", "../etc/passwd", "ABC", "a/b"} {
		if err := d.Save(id, nil); !errors.Is(err, ErrBadID) {
			t.Errorf("Save(%q): got %v", id, err)
		}
		if _, err := d.Load(id); !errors.Is(err, ErrBadID) {
			t.Errorf("Load(%q): got %v", id, err)
		}
	}
}

func TestSweep(t *testing.T) {
	d, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"aa", "bb"} {
		if err := d.Save(id, []byte("{}")); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(filepath.Join(d.Root(), "aa.geojson"), old, old); err != nil {
		t.Fatal(err)
	}
	n, err := d.Sweep(time.Now(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("removed %d files, want 1", n)
	}
	if _, err := d.Load("aa"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired result still readable: %v", err)
	}
	if _, err := d.Load("bb"); err != nil {
		t.Errorf("fresh result removed: %v", err)
	}
}
