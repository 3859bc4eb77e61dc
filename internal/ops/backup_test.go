package ops

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir parent %s: %v", path, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
}

func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	got := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		got[filepath.ToSlash(rel)] = string(b)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return got
}

func TestBackupRestoreDataDir_RoundTrip(t *testing.T) {
	src := filepath.Join(t.TempDir(), "src")
	files := map[string]string{
		"games/chess.json":  `{"name":"chess","boards":[{"mode":"grid","name":"Main","width":8,"height":8,"sections":[]}]}`,
		"games/chess.lua":   `function can_place() return true end`,
		"images/knight.png": "\x89PNG",
	}
	writeTree(t, src, files)
	// An interrupted save leaves a temp file behind; it is not backed up.
	writeTree(t, src, map[string]string{"games/.chess.json.123.tmp": "partial"})

	archive := filepath.Join(t.TempDir(), "backup.tar.gz")
	if err := BackupDataDir(src, archive); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	restoreDir := filepath.Join(t.TempDir(), "restore")
	if err := RestoreDataDir(archive, restoreDir); err != nil {
		t.Fatalf("restore failed: %v", err)
	}

	if got := readTree(t, restoreDir); !reflect.DeepEqual(files, got) {
		t.Fatalf("restored files mismatch:\nwant=%v\ngot=%v", files, got)
	}
}

func TestBackupDataDir_RequiresDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.json")
	writeTree(t, filepath.Dir(file), map[string]string{"plain.json": "{}"})
	if err := BackupDataDir(file, filepath.Join(t.TempDir(), "x.tar.gz")); err == nil {
		t.Fatalf("expected backup of a plain file to fail")
	}
	if err := BackupDataDir("", "x.tar.gz"); err == nil {
		t.Fatalf("expected empty source to fail")
	}
}

func TestRestoreDataDir_RejectsPathTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bad.tar.gz")
	f, err := os.Create(archive)
	if err != nil {
		t.Fatalf("create archive: %v", err)
	}

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	if err := tw.WriteHeader(&tar.Header{
		Name:     "../escape.json",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len("bad")),
	}); err != nil {
		t.Fatalf("write header: %v", err)
	}
	if _, err := tw.Write([]byte("bad")); err != nil {
		t.Fatalf("write body: %v", err)
	}
	for _, c := range []interface{ Close() error }{tw, gz, f} {
		if err := c.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	err = RestoreDataDir(archive, filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, ErrUnsafePath) {
		t.Fatalf("expected ErrUnsafePath, got %v", err)
	}
}

func TestDrill_MatchingDigests(t *testing.T) {
	src := filepath.Join(t.TempDir(), "data")
	writeTree(t, src, map[string]string{
		"games/go.json": `{"name":"go"}`,
		"games/uno.json": `{"name":"uno"}`,
	})

	rep, err := Drill(src, t.TempDir(), "20260101T000000Z")
	if err != nil {
		t.Fatalf("drill failed: %v", err)
	}
	if rep.Digest == "" {
		t.Fatalf("expected a digest")
	}
	want, err := Digest(src)
	if err != nil {
		t.Fatalf("digest: %v", err)
	}
	if rep.Digest != want {
		t.Fatalf("digest = %s, want %s", rep.Digest, want)
	}
	if _, err := os.Stat(rep.Archive); err != nil {
		t.Fatalf("archive missing: %v", err)
	}
}

func TestDigest_ChangesWithContent(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeTree(t, a, map[string]string{"g.json": "1"})
	writeTree(t, b, map[string]string{"g.json": "2"})

	da, err := Digest(a)
	if err != nil {
		t.Fatalf("digest a: %v", err)
	}
	db, err := Digest(b)
	if err != nil {
		t.Fatalf("digest b: %v", err)
	}
	if da == db {
		t.Fatalf("different trees hashed the same")
	}
}
