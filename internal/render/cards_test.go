package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"madaris/internal/assets"
	"madaris/internal/config"
	apperrors "madaris/internal/errors"
	"madaris/pkg/contracts/domain"
)

func testRegistry(t *testing.T) *assets.Registry {
	t.Helper()
	paths, err := config.GetPaths(t.TempDir())
	require.NoError(t, err)
	return assets.NewRegistry(paths)
}

func testCardsConfig() config.CardsConfig {
	return config.CardsConfig{
		GridCols: 2, GridRows: 4,
		MarginX: 12, MarginY: 15,
		SpacingX: 6, SpacingY: 6,
		CutMarks: true,
	}
}

func testStudents(n int) []domain.Student {
	students := make([]domain.Student, n)
	for i := range students {
		students[i] = domain.Student{
			ID:           int64(i + 1),
			Name:         "أحمد محمد علي حسين",
			Grade:        "الأول",
			Section:      "أ",
			SchoolNameAr: "مدرسة النور الأهلية",
			SchoolNameEn: "Al-Noor Private School",
			Status:       domain.StudentActive,
		}
	}
	return students
}

// TestDefaultTemplate tests that the built-in layout is complete and valid
func TestDefaultTemplate(t *testing.T) {
	tmpl := DefaultTemplate()

	require.NotEmpty(t, tmpl.Elements)

	sources := map[string]bool{}
	for name, el := range tmpl.Elements {
		assert.Contains(t, []ElementKind{
			ElementText, ElementLabeledBox, ElementLine, ElementImage,
		}, el.Kind, "element %s", name)
		assert.GreaterOrEqual(t, el.X, 0.0)
		assert.LessOrEqual(t, el.X, 1.0)
		assert.GreaterOrEqual(t, el.Y, 0.0)
		assert.LessOrEqual(t, el.Y, 1.0)
		if el.Source != "" {
			sources[el.Source] = true
		}
	}

	// The identity fields every card needs.
	assert.True(t, sources["name"])
	assert.True(t, sources["school"])
	assert.True(t, sources["class"])
}

// TestLoadTemplate tests yaml parsing and validation of custom templates
func TestLoadTemplate(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid template", func(t *testing.T) {
		path := filepath.Join(dir, "cards.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
elements:
  name:
    kind: text
    x: 0.5
    y: 0.4
    source: name
    align: C
    max_width: 0.9
  frame:
    kind: line
    x: 0.05
    y: 0.3
    width: 0.9
`), 0o644))

		tmpl, err := LoadTemplate(path)
		require.NoError(t, err)
		assert.Len(t, tmpl.Elements, 2)
		assert.Equal(t, ElementText, tmpl.Elements["name"].Kind)
		assert.Equal(t, ElementLine, tmpl.Elements["frame"].Kind)
	})

	t.Run("unknown kind rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
elements:
  blob:
    kind: sticker
    x: 0.5
    y: 0.5
`), 0o644))

		_, err := LoadTemplate(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTemplate(filepath.Join(dir, "nope.yaml"))
		assert.Error(t, err)
	})
}

// TestEngineRenderBatch tests the 12-student batch on a 2x4 grid: two
// pages, no trailing blank page
func TestEngineRenderBatch(t *testing.T) {
	engine, err := NewEngine(testRegistry(t), testCardsConfig(), "2025-2026")
	require.NoError(t, err)

	pdf, err := engine.Render(testStudents(12))
	require.NoError(t, err)

	assert.Equal(t, 2, pdf.PageCount(), "12 cards on a 2x4 grid need exactly two pages")
}

// TestEngineRenderPageCounts tests slot arithmetic around page boundaries
func TestEngineRenderPageCounts(t *testing.T) {
	tests := []struct {
		name     string
		students int
		pages    int
	}{
		{name: "single card", students: 1, pages: 1},
		{name: "full page", students: 8, pages: 1},
		{name: "one over", students: 9, pages: 2},
		{name: "two full pages", students: 16, pages: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := NewEngine(testRegistry(t), testCardsConfig(), "")
			require.NoError(t, err)

			pdf, err := engine.Render(testStudents(tt.students))
			require.NoError(t, err)
			assert.Equal(t, tt.pages, pdf.PageCount())
		})
	}
}

// TestEngineOptimizesOverflowingGrid tests that a bad config is corrected
// rather than rejected
func TestEngineOptimizesOverflowingGrid(t *testing.T) {
	cfg := testCardsConfig()
	cfg.MarginX = 60

	engine, err := NewEngine(testRegistry(t), cfg, "")
	require.NoError(t, err)

	widthOK, heightOK := engine.Layout().Fits()
	assert.True(t, widthOK)
	assert.True(t, heightOK)
	assert.GreaterOrEqual(t, engine.Layout().SpacingX, MinCardSpacing)
}

// TestEngineCapsImpossibleGrid tests that a column count wider than the
// page is reduced before any card is drawn
func TestEngineCapsImpossibleGrid(t *testing.T) {
	cfg := testCardsConfig()
	cfg.GridCols = 3

	engine, err := NewEngine(testRegistry(t), cfg, "")
	require.NoError(t, err)

	assert.Equal(t, 2, engine.Layout().Cols)
	widthOK, heightOK := engine.Layout().Fits()
	assert.True(t, widthOK)
	assert.True(t, heightOK)
}

// TestEngineRenderRejectsOverflowingLayout tests the render-time guard
// against a hand-built grid wider than the page
func TestEngineRenderRejectsOverflowingLayout(t *testing.T) {
	engine, err := NewEngine(testRegistry(t), testCardsConfig(), "")
	require.NoError(t, err)
	engine.layout.Cols = 3

	_, err = engine.Render(testStudents(1))

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrLayoutOverflow)
}

// TestEngineRenderToFile tests the end-to-end file output
func TestEngineRenderToFile(t *testing.T) {
	engine, err := NewEngine(testRegistry(t), testCardsConfig(), "2025-2026")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cards.pdf")
	require.NoError(t, engine.RenderToFile(testStudents(3), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// TestResolveSource tests field resolution including the blank default
func TestResolveSource(t *testing.T) {
	engine, err := NewEngine(testRegistry(t), testCardsConfig(), "2025-2026")
	require.NoError(t, err)

	student := &testStudents(1)[0]

	assert.Equal(t, "أحمد محمد علي حسين", engine.resolveSource("name", student))
	assert.Equal(t, "الأول - أ", engine.resolveSource("class", student))
	assert.Equal(t, "مدرسة النور الأهلية", engine.resolveSource("school", student))
	assert.Equal(t, "2025-2026", engine.resolveSource("academic_year", student))
	assert.Equal(t, "1", engine.resolveSource("student_id", student))

	// Unset and unknown fields render blank, never error.
	assert.Empty(t, engine.resolveSource("birth_date", student))
	assert.Empty(t, engine.resolveSource("no_such_field", student))
}
