// Package arabic turns logical-order Arabic text into display-order glyph
// runs for the PDF renderers. garabic substitutes contextual joined forms and
// reorders for left-to-right drawing in one pass; embedded Latin runs keep
// their own reading direction.
package arabic

import (
	"github.com/abdullahdiaa/garabic"
)

// Shape converts one logical string to display order. Strings without Arabic
// letters pass through untouched, spacing included.
func Shape(logical string) string {
	if logical == "" || !containsArabic(logical) {
		return logical
	}
	return garabic.Shape(logical)
}

func containsArabic(s string) bool {
	for _, r := range s {
		if (r >= 0x0600 && r <= 0x06FF) || (r >= 0x0750 && r <= 0x077F) ||
			(r >= 0xFB50 && r <= 0xFDFF) || (r >= 0xFE70 && r <= 0xFEFF) {
			return true
		}
	}
	return false
}
