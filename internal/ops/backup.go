// Package ops holds maintenance tasks over a data directory: archive
// backups, restore drills and game file migration.
package ops

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrUnsafePath = errors.New("unsafe archive entry path")

// BackupDataDir writes srcDir as a gzipped tar. Symlinks and the store's
// in-flight temp files are skipped.
func BackupDataDir(srcDir, archivePath string) error {
	if strings.TrimSpace(srcDir) == "" || strings.TrimSpace(archivePath) == "" {
		return fmt.Errorf("source dir and archive path are required")
	}
	srcDir = filepath.Clean(strings.TrimSpace(srcDir))
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	info, err := os.Stat(srcDir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("source is not a directory: %s", srcDir)
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return err
	}

	f, err := os.Create(archivePath)
	if err != nil {
		return err
	}
	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == srcDir || skipInBackup(d) {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return addEntry(tw, path, filepath.ToSlash(rel), d)
	})

	// Close in order so a failed walk still releases the file.
	for _, c := range []io.Closer{tw, gz, f} {
		if err := c.Close(); err != nil && walkErr == nil {
			walkErr = err
		}
	}
	return walkErr
}

func skipInBackup(d fs.DirEntry) bool {
	if d.Type()&os.ModeSymlink != 0 {
		return true
	}
	name := d.Name()
	return !d.IsDir() && strings.HasPrefix(name, ".") && strings.HasSuffix(name, ".tmp")
}

func addEntry(tw *tar.Writer, path, rel string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = rel
	if info.IsDir() {
		hdr.Name += "/"
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(tw, src)
	return err
}

// RestoreDataDir unpacks an archive written by BackupDataDir into
// targetDir. Entries escaping targetDir fail the restore.
func RestoreDataDir(archivePath, targetDir string) error {
	if strings.TrimSpace(archivePath) == "" || strings.TrimSpace(targetDir) == "" {
		return fmt.Errorf("archive path and target dir are required")
	}
	archivePath = filepath.Clean(strings.TrimSpace(archivePath))
	targetDir = filepath.Clean(strings.TrimSpace(targetDir))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		rel, err := archiveRelPath(hdr.Name)
		if err != nil {
			return err
		}
		out := filepath.Join(targetDir, rel)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(out, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := restoreFile(tr, out, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		}
	}
}

func restoreFile(r io.Reader, path string, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		_ = dst.Close()
		return err
	}
	return dst.Close()
}

func archiveRelPath(name string) (string, error) {
	name = filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	switch {
	case name == "." || name == "":
		return "", fmt.Errorf("%w: empty", ErrUnsafePath)
	case filepath.IsAbs(name):
		return "", fmt.Errorf("%w: absolute %s", ErrUnsafePath, name)
	case name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)):
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return name, nil
}

// Digest hashes every regular file under root, keyed by its slash path, so
// two trees with the same content compare equal.
func Digest(root string) (string, error) {
	root = filepath.Clean(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || skipInBackup(d) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	h := sha256.New()
	for _, rel := range files {
		fmt.Fprintf(h, "%s\n", rel)
		b, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		h.Write(b)
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// DrillReport describes a completed backup and restore check.
type DrillReport struct {
	Archive    string
	RestoreDir string
	Digest     string
}

// Drill backs dataDir up into workDir, restores it next to the archive and
// checks both trees hash the same. stamp names the artifacts.
func Drill(dataDir, workDir, stamp string) (DrillReport, error) {
	rep := DrillReport{
		Archive:    filepath.Join(workDir, "tabletop-drill-"+stamp+".tar.gz"),
		RestoreDir: filepath.Join(workDir, "tabletop-drill-restore-"+stamp),
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return rep, err
	}
	if err := BackupDataDir(dataDir, rep.Archive); err != nil {
		return rep, fmt.Errorf("backup: %w", err)
	}
	if err := RestoreDataDir(rep.Archive, rep.RestoreDir); err != nil {
		return rep, fmt.Errorf("restore: %w", err)
	}

	src, err := Digest(dataDir)
	if err != nil {
		return rep, err
	}
	restored, err := Digest(rep.RestoreDir)
	if err != nil {
		return rep, err
	}
	if src != restored {
		return rep, fmt.Errorf("digest mismatch after restore: src=%s restored=%s", src, restored)
	}
	rep.Digest = src
	return rep, nil
}
