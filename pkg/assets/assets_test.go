package assets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/synaptica-ai/life-expectancy/pkg/stage"
)

func TestLoadCatalogDefault(t *testing.T) {
	cat, err := LoadCatalog("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range stage.All {
		if cat.Images[s.Illustration()].File == "" {
			t.Fatalf("default catalog missing %s", s.Illustration())
		}
	}
}

func TestLoadCatalogFromYAML(t *testing.T) {
	cat, err := LoadCatalog("../../configs/assets.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.Images["at_risk"].File != "at_risk_image.jpg" || cat.Width != 300 {
		t.Fatalf("unexpected catalog %+v", cat)
	}
}

func TestLoadCatalogRequiresEveryStage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	content := "images:\n  critical:\n    file: critical.jpg\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Fatal("expected error for incomplete catalog")
	}
}

func TestLoadCatalogFallsBackOnBadYAML(t *testing.T) {
	for name, content := range map[string]string{
		"malformed":  "images: [not a map",
		"incomplete": "images:\n  critical:\n    file: critical.jpg\n",
	} {
		path := filepath.Join(t.TempDir(), "assets.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		cat, err := LoadCatalog(path)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if cat.Dir != DefaultCatalog().Dir || len(cat.Images) != len(stage.All) {
			t.Fatalf("%s: expected default catalog, got %+v", name, cat)
		}
	}
}

func TestStoreOpen(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "healthy_image.jpg"), []byte("jpeg"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewStore(DefaultCatalog(), dir)

	if !store.Exists("healthy") {
		t.Fatal("expected healthy image to exist")
	}
	data, contentType, err := store.Open("healthy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "jpeg" || contentType != "image/jpeg" {
		t.Fatalf("unexpected asset %q %q", data, contentType)
	}
}

func TestStoreMissingIsNonFatal(t *testing.T) {
	store := NewStore(DefaultCatalog(), t.TempDir())
	if store.Exists("critical") {
		t.Fatal("expected critical image to be absent")
	}
	if _, _, err := store.Open("critical"); !errors.Is(err, ErrAssetMissing) {
		t.Fatalf("expected ErrAssetMissing, got %v", err)
	}
	if _, _, err := store.Open("unknown"); !errors.Is(err, ErrAssetMissing) {
		t.Fatalf("expected ErrAssetMissing for unknown key, got %v", err)
	}
}

func TestStoreConfinesToDir(t *testing.T) {
	cat := DefaultCatalog()
	cat.Images["healthy"] = Image{File: "../../etc/passwd"}
	store := NewStore(cat, t.TempDir())
	p, _, err := store.path("healthy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(p) != "passwd" || filepath.Dir(p) != store.Catalog().Dir {
		t.Fatalf("path escaped asset dir: %s", p)
	}
}
