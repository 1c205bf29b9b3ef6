package metadata

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	body := "# Preview\n\n| a |\n| --- |\n| 1 |"
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	signed := Sign(body, Metadata{GeneratedAt: at, Source: "report.xlsx", SourceHash: "abc", Validation: true})

	ok, err := Verify(signed)
	if err != nil || !ok {
		t.Fatalf("Verify() = %v, %v; want true, nil", ok, err)
	}

	meta, clean := Extract(signed)
	if clean != body {
		t.Errorf("Extract clean = %q, want %q", clean, body)
	}

	if !meta.Validation || meta.Source != "report.xlsx" || meta.SourceHash != "abc" || !meta.GeneratedAt.Equal(at) {
		t.Errorf("Extract meta = %+v", meta)
	}
}

func TestSign_ReplacesExistingBlock(t *testing.T) {
	once := Sign("content", Metadata{})
	twice := Sign(once, Metadata{Validation: true})

	if strings.Count(twice, TagStart) != 1 {
		t.Errorf("expected exactly one metadata block:\n%s", twice)
	}

	if ok, err := Verify(twice); !ok || err != nil {
		t.Errorf("Verify() = %v, %v", ok, err)
	}
}

func TestVerify_Errors(t *testing.T) {
	if _, err := Verify("no block here"); !errors.Is(err, ErrNoMetadataBlock) {
		t.Errorf("error = %v, want %v", err, ErrNoMetadataBlock)
	}

	noHash := "body\n\n" + TagStart + "\nVALIDATION: TRUE\n" + TagEnd
	if _, err := Verify(noHash); !errors.Is(err, ErrNoHashFound) {
		t.Errorf("error = %v, want %v", err, ErrNoHashFound)
	}

	tampered := strings.Replace(Sign("original body", Metadata{}), "original", "edited", 1)
	if _, err := Verify(tampered); !errors.Is(err, ErrHashMismatch) {
		t.Errorf("error = %v, want %v", err, ErrHashMismatch)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if got != want {
		t.Errorf("HashFile = %s, want %s", got, want)
	}

	if _, err := HashFile(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}
