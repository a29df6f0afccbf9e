// Package archive reads model trees out of zip archives and writes them
// back into one.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Extension is the file extension of archives accepted as model roots.
const Extension = ".zip"

// ErrUnsafePath is returned for archive entries that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes destination")

// IsArchive reports whether path names a zip archive.
func IsArchive(path string) bool {
	return strings.EqualFold(filepath.Ext(path), Extension)
}

// Extract unpacks the archive at zipPath into destDir, creating it if
// needed.
func Extract(ctx context.Context, zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer func() { _ = r.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", destDir, err)
	}

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractFile(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, destDir string) error {
	name := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
	}
	path := filepath.Join(destDir, name)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s in archive: %w", f.Name, err)
	}
	defer func() { _ = rc.Close() }()

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // G304: path checked by filepath.IsLocal
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(out, rc); err != nil { //nolint:gosec // G110: archives are user supplied models
		_ = out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// Pack writes every regular file under srcDir to w as a deflated zip
// archive. Entry names are relative to srcDir and slash separated. Files
// for which skip returns true are left out.
func Pack(ctx context.Context, srcDir string, w io.Writer, skip func(path string) bool) error {
	zw := zip.NewWriter(w)

	err := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if skip != nil && skip(path) {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		return addFile(zw, path, filepath.ToSlash(rel))
	})
	if err != nil {
		_ = zw.Close()
		return fmt.Errorf("pack %s: %w", srcDir, err)
	}
	return zw.Close()
}

func addFile(zw *zip.Writer, path, name string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	src, err := os.Open(path) //nolint:gosec // G304: path comes from WalkDir
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()
	_, err = io.Copy(dst, src)
	return err
}

// PackFile packs srcDir into a new archive at zipPath. The archive itself
// is never packed, even when zipPath lies inside srcDir. Files under the
// exclude paths are left out too.
func PackFile(ctx context.Context, srcDir, zipPath string, exclude ...string) error {
	absZip, err := filepath.Abs(zipPath)
	if err != nil {
		return err
	}
	skipped := []string{absZip}
	for _, p := range exclude {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		skipped = append(skipped, abs)
	}

	f, err := os.Create(zipPath) //nolint:gosec // G304: output path chosen by the user
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}

	err = Pack(ctx, srcDir, f, func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			return false
		}
		for _, s := range skipped {
			if abs == s || strings.HasPrefix(abs, s+string(filepath.Separator)) {
				return true
			}
		}
		return false
	})
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close archive: %w", cerr)
	}
	return err
}
