package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"question_extractor/internal/config"
)

func TestStorageService_LocalSaveImage(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.StaticPath = t.TempDir()
	s := NewStorageService(cfg)

	got, err := s.SaveImage(context.Background(), "images/P_p1_img1.png", []byte("first"))
	if err != nil {
		t.Fatalf("SaveImage() error = %v", err)
	}
	if got != "static/images/P_p1_img1.png" {
		t.Errorf("SaveImage() path = %q", got)
	}

	// Same name overwrites.
	if _, err := s.SaveImage(context.Background(), "images/P_p1_img1.png", []byte("second")); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(cfg.Storage.StaticPath, "images", "P_p1_img1.png"))
	if err != nil {
		t.Fatalf("read stored image: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("stored data = %q, want overwrite", data)
	}

	entries, _ := os.ReadDir(filepath.Join(cfg.Storage.StaticPath, "images"))
	if len(entries) != 1 {
		t.Errorf("images dir has %d entries, want 1", len(entries))
	}

	if err := s.Delete(context.Background(), "images/P_p1_img1.png"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestStorageService_FallsBackToLocal(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Type = "unknown"
	s := NewStorageService(cfg)
	if _, ok := s.Provider.(*LocalStorageProvider); !ok {
		t.Errorf("provider = %T, want *LocalStorageProvider", s.Provider)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk read failed") }

func TestLocalStorageProvider_UploadErrors(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "images")
	if err := os.WriteFile(blocker, []byte("not a dir"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		root string
	}{
		{"parent is a file", root},
		{"reader fails", t.TempDir()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &LocalStorageProvider{Root: tt.root}
			url, err := p.Upload(context.Background(), "images/x.png", failingReader{}, 0, "image/png")
			if err == nil {
				t.Fatal("Upload() error = nil, want failure")
			}
			if url != "" {
				t.Errorf("Upload() url = %q, want empty on failure", url)
			}
		})
	}
}
