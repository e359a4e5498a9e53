package zip

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestArchiveAssets(t *testing.T) {
	raw, err := ArchiveAssets([]Asset{
		{Filename: "001_a_generated.jpg", Data: []byte("first")},
		{Filename: "002_b_generated.jpg", Data: bytes.Repeat([]byte("x"), 1024)},
	})
	if err != nil {
		t.Fatalf("ArchiveAssets: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d", len(zr.File))
	}
	if zr.File[0].Name != "001_a_generated.jpg" || zr.File[1].Method != zip.Deflate {
		t.Fatalf("unexpected entry %+v", zr.File[0].FileHeader)
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("open entry: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "first" {
		t.Fatalf("entry data = %q", data)
	}
}

func TestArchiveAssetsEmpty(t *testing.T) {
	raw, err := ArchiveAssets(nil)
	if err != nil {
		t.Fatalf("ArchiveAssets: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open empty archive: %v", err)
	}
	if len(zr.File) != 0 {
		t.Fatalf("entries = %d", len(zr.File))
	}
}
