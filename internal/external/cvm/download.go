package cvm

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/wonny/fii-advisor/backend/internal/dataset"
)

// ErrUnsafePath is returned for zip entries escaping the destination
var ErrUnsafePath = errors.New("unsafe path in archive")

// Download saves archive into dir and returns the zip path.
// The file is written under a temporary name and renamed when complete.
func (c *Client) Download(ctx context.Context, archive Archive, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}

	dest := filepath.Join(dir, archive.Name)
	tmp, err := os.CreateTemp(dir, archive.Name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	start := time.Now()
	n, err := c.httpClient.Download(ctx, archive.URL, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("download %s: %w", archive.Name, err)
	}

	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("rename %s: %w", dest, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"year":     archive.Year,
		"bytes":    n,
		"path":     dest,
		"duration": time.Since(start),
	}).Info("Downloaded CVM archive")

	return dest, nil
}

// Extract unpacks zipPath into dir and returns the written file paths
func Extract(zipPath, dir string) ([]string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", zipPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}

	var written []string
	for _, f := range zr.File {
		target, err := safeJoin(dir, f.Name)
		if err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return written, err
			}
			continue
		}

		if err := extractFile(f, target); err != nil {
			return written, err
		}
		written = append(written, target)
	}
	return written, nil
}

func safeJoin(dir, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(dir, name)
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return out.Close()
}

// Fetch downloads the archive of year into root and extracts it into the
// directory the file provider reads (root/inf_mensal_fii_<year>)
func (c *Client) Fetch(ctx context.Context, year int, root string) ([]string, error) {
	archive, err := c.FindArchive(ctx, year)
	if err != nil {
		return nil, err
	}

	zipPath, err := c.Download(ctx, archive, root)
	if err != nil {
		return nil, err
	}

	files, err := Extract(zipPath, dataset.YearDir(root, year))
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"year":  year,
		"files": len(files),
	}).Info("Extracted CVM archive")

	return files, nil
}
