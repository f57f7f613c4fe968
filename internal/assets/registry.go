// Package assets resolves the TrueType fonts and images the renderers use,
// by logical name, with degraded-mode fallbacks when the install is missing
// resources.
package assets

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"madaris/internal/config"
)

// Logical font names the renderers ask for.
const (
	FontArabicRegular = "arabic-regular"
	FontArabicBold    = "arabic-bold"
)

// fpdf family/style the logical names map onto.
const (
	arabicFamily  = "arabic"
	builtinFamily = "Helvetica"
)

// Font is one resolved logical font.
type Font struct {
	Logical string
	Family  string
	Style   string
	Path    string
	Builtin bool
}

// Registry resolves fonts and images from the resource directories. Create
// one per process; install it into every document before drawing.
type Registry struct {
	paths    *config.Paths
	fonts    map[string]Font
	warnings []string
}

// Preferred physical fonts per logical name, best first.
var fontCandidates = map[string][]string{
	FontArabicRegular: {"Amiri-Regular.ttf", "Amiri.ttf", "Cairo-Medium.ttf"},
	FontArabicBold:    {"Amiri-Bold.ttf", "Cairo-Bold.ttf"},
}

var builtinFallbacks = map[string]Font{
	FontArabicRegular: {Logical: FontArabicRegular, Family: builtinFamily, Style: "", Builtin: true},
	FontArabicBold:    {Logical: FontArabicBold, Family: builtinFamily, Style: "B", Builtin: true},
}

// NewRegistry probes the resource directories and resolves every logical
// font. A missing physical font degrades to the built-in Helvetica, which
// cannot render Arabic; that is recorded as a warning, never an error.
func NewRegistry(paths *config.Paths) *Registry {
	r := &Registry{
		paths: paths,
		fonts: make(map[string]Font),
	}

	styles := map[string]string{FontArabicRegular: "", FontArabicBold: "B"}
	for logical, candidates := range fontCandidates {
		resolved := false
		for _, name := range candidates {
			path := filepath.Join(paths.FontsDir, name)
			if config.FileExists(path) {
				r.fonts[logical] = Font{
					Logical: logical,
					Family:  arabicFamily,
					Style:   styles[logical],
					Path:    path,
				}
				resolved = true
				break
			}
		}
		if !resolved {
			r.fonts[logical] = builtinFallbacks[logical]
			warning := "font " + logical + " missing, falling back to built-in Helvetica (Arabic will not join)"
			r.warnings = append(r.warnings, warning)
			slog.Warn("font resolution degraded",
				slog.String("logical", logical),
				slog.String("fonts_dir", paths.FontsDir),
			)
		}
	}
	return r
}

// Install registers the resolved TrueType fonts on a document. Built-in
// fallbacks need no registration.
func (r *Registry) Install(pdf *fpdf.Fpdf) {
	for _, font := range r.fonts {
		if font.Builtin {
			continue
		}
		pdf.AddUTF8Font(font.Family, font.Style, font.Path)
	}
}

// SetFont activates a logical font at the given size on the document.
func (r *Registry) SetFont(pdf *fpdf.Fpdf, logical string, size float64) {
	font, ok := r.fonts[logical]
	if !ok {
		font = builtinFallbacks[FontArabicRegular]
	}
	pdf.SetFont(font.Family, font.Style, size)
}

// Degraded returns the degraded-mode warnings collected at resolution time,
// for the host to show once.
func (r *Registry) Degraded() []string {
	return r.warnings
}

// CompanyLogo returns the application logo path, or "" when missing.
func (r *Registry) CompanyLogo() string {
	return r.imageOrEmpty(r.paths.CompanyLogo)
}

// VendorLogo returns the vendor footer logo path, or "" when missing.
func (r *Registry) VendorLogo() string {
	return r.imageOrEmpty(r.paths.VendorLogo)
}

// SchoolLogo resolves a school's configured logo path, or "" when missing;
// relative paths resolve against the images directory.
func (r *Registry) SchoolLogo(logoPath string) string {
	if logoPath == "" {
		return ""
	}
	if !filepath.IsAbs(logoPath) {
		logoPath = filepath.Join(r.paths.ImagesDir, logoPath)
	}
	return r.imageOrEmpty(logoPath)
}

func (r *Registry) imageOrEmpty(path string) string {
	if !config.FileExists(path) {
		return ""
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return path
	default:
		slog.Warn("unsupported image type, drawing placeholder",
			slog.String("path", path),
		)
		return ""
	}
}

// FileSize reports an asset's size, for the support tools' diagnostics.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
