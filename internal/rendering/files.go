package rendering

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// InputFileName is the RenderCV input written into every working directory.
	InputFileName = "resume.yaml"
	// OutputDirName is where RenderCV writes its artifacts, relative to the working directory.
	OutputDirName = "rendercv_output"
	// DesignsDirName is the designs folder name inside a working directory.
	DesignsDirName = "designs"
)

// ErrNoPDF is returned when an output directory holds no PDF.
var ErrNoPDF = errors.New("no PDF found in output directory")

// LatestPDF returns the most recently modified PDF in dir.
func LatestPDF(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrNoPDF
		}
		return "", fmt.Errorf("failed to read output directory: %w", err)
	}

	var (
		newest   string
		newestAt time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestAt) {
			newest = filepath.Join(dir, e.Name())
			newestAt = info.ModTime()
		}
	}
	if newest == "" {
		return "", ErrNoPDF
	}
	return newest, nil
}

// DesignArg returns the --design value for a theme, or "" when the theme
// has no design file under dir.
func DesignArg(dir, theme string) string {
	if theme == "" || theme != filepath.Base(theme) {
		return ""
	}
	rel := filepath.Join(DesignsDirName, theme+".yaml")
	if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
		return ""
	}
	return rel
}

// copyDir replaces dst with a copy of src.
func copyDir(src, dst string) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
