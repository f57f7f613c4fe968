package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Paths is the single source of truth for every file path the core touches.
// All paths derive from one base directory; by default that is the directory
// containing the executable, never the current working directory.
type Paths struct {
	BaseDir     string
	LicenseFile string

	DataDir   string
	PrintsDir string
	TempDir   string

	ResourcesDir string
	FontsDir     string
	ImagesDir    string

	LogsDir string

	// Well-known vendor images inside ImagesDir.
	CompanyLogo string
	VendorLogo  string
}

// GetPaths resolves the path table for the given base directory. An empty
// base falls back to the executable directory, symlinks resolved.
func GetPaths(baseDir string) (*Paths, error) {
	if baseDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		baseDir = filepath.Dir(exe)
	}

	// Directory structure:
	// <base>/
	//   ├── license.json
	//   ├── data/
	//   │   ├── exports/prints/   (saved receipts, timestamp-named)
	//   │   └── uploads/temp/     (throwaway previews)
	//   ├── resources/
	//   │   ├── fonts/            (TrueType fonts)
	//   │   └── images/           (vendor/app images)
	//   └── logs/

	dataDir := filepath.Join(baseDir, "data")
	resourcesDir := filepath.Join(baseDir, "resources")
	imagesDir := filepath.Join(resourcesDir, "images")

	return &Paths{
		BaseDir:      baseDir,
		LicenseFile:  filepath.Join(baseDir, "license.json"),
		DataDir:      dataDir,
		PrintsDir:    filepath.Join(dataDir, "exports", "prints"),
		TempDir:      filepath.Join(dataDir, "uploads", "temp"),
		ResourcesDir: resourcesDir,
		FontsDir:     filepath.Join(resourcesDir, "fonts"),
		ImagesDir:    imagesDir,
		LogsDir:      filepath.Join(baseDir, "logs"),
		CompanyLogo:  filepath.Join(imagesDir, "logo.png"),
		VendorLogo:   filepath.Join(imagesDir, "new_tech.jpg"),
	}, nil
}

// EnsureDirs creates the writable directories. Resource directories ship
// with the installer and are left alone.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.DataDir, p.PrintsDir, p.TempDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// PrintFile returns a timestamp-named path for a saved receipt of the given
// kind ("installment", "fees", "cards", ...).
func (p *Paths) PrintFile(kind string, at time.Time) string {
	name := fmt.Sprintf("%s_%s.pdf", kind, at.Format("20060102_150405"))
	return filepath.Join(p.PrintsDir, name)
}

// PreviewFile returns a throwaway preview path under TempDir.
func (p *Paths) PreviewFile(token string) string {
	return filepath.Join(p.TempDir, fmt.Sprintf("preview_%s.pdf", token))
}

// CleanupPreviews removes preview files older than maxAge. Errors on single
// files are ignored; previews are disposable by definition.
func (p *Paths) CleanupPreviews(maxAge time.Duration) int {
	entries, err := os.ReadDir(p.TempDir)
	if err != nil {
		return 0
	}
	removed := 0
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "preview_") {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(p.TempDir, entry.Name())); err == nil {
			removed++
		}
	}
	return removed
}
