package internal

import (
	"iter"
	"regexp"
	"strconv"
	"strings"
)

// cornerRe matches one corner of a range: an optional column label and an
// optional row number, each optionally marked absolute with '$'.
var cornerRe = regexp.MustCompile(`^\$?([A-Za-z]*)\$?([0-9]*)$`)

// plainSheetRe matches sheet names that can be written without quotes.
var plainSheetRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Range is a rectangular region of a sheet in 1-indexed coordinates.
//
// A zero field is unset: no Top/Left means the whole sheet, no
// Bottom/Right means a single cell at Top/Left. Bottom and Right may be
// Unbounded for open-ended ranges like "A:A".
type Range struct {
	Sheet  string
	Top    int
	Left   int
	Bottom int
	Right  int
}

// NewRange builds a Range from explicit fields, ordering finite corners.
func NewRange(sheet string, top, left, bottom, right int) Range {
	return Range{Sheet: sheet, Top: top, Left: left, Bottom: bottom, Right: right}.Normalize()
}

// ParseRange parses an address like "Sheet1!A1:B2", "'My Sheet'!C:C",
// "B3" or "2:5".
func ParseRange(text string) (Range, error) {
	if text == "" {
		return Range{}, invalidAddress(text, "empty address")
	}
	sheet, body, err := splitSheet(text)
	if err != nil {
		return Range{}, err
	}
	r := Range{Sheet: sheet}
	if body == "" {
		if sheet == "" {
			return Range{}, invalidAddress(text, "empty address")
		}
		return r, nil
	}

	parts := strings.Split(body, ":")
	if len(parts) > 2 {
		return Range{}, invalidAddress(text, "too many ':' separators")
	}
	r.Top, r.Left, err = parseCorner(text, parts[0])
	if err != nil {
		return Range{}, err
	}
	if len(parts) == 2 {
		r.Bottom, r.Right, err = parseCorner(text, parts[1])
		if err != nil {
			return Range{}, err
		}
	}
	return r.Normalize(), nil
}

// splitSheet separates an optional sheet prefix from the cell address.
func splitSheet(text string) (sheet, body string, err error) {
	if !strings.HasPrefix(text, "'") {
		sheet, body, found := strings.Cut(text, "!")
		if !found {
			return "", text, nil
		}
		if sheet == "" {
			return "", "", invalidAddress(text, "empty sheet name")
		}
		return sheet, body, nil
	}

	var name strings.Builder
	for i := 1; i < len(text); i++ {
		if text[i] != '\'' {
			name.WriteByte(text[i])
			continue
		}
		if i+1 < len(text) && text[i+1] == '\'' {
			name.WriteByte('\'')
			i++
			continue
		}
		if name.Len() == 0 {
			return "", "", invalidAddress(text, "empty sheet name")
		}
		rest := text[i+1:]
		if rest == "" {
			return name.String(), "", nil
		}
		if rest[0] != '!' {
			return "", "", invalidAddress(text, "expected '!' after quoted sheet name")
		}
		return name.String(), rest[1:], nil
	}
	return "", "", invalidAddress(text, "unterminated sheet name quote")
}

func parseCorner(text, ref string) (row, col int, err error) {
	m := cornerRe.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, invalidAddress(text, "invalid cell reference %q", ref)
	}
	if m[1] == "" && m[2] == "" {
		return 0, 0, invalidAddress(text, "empty cell reference")
	}
	if m[1] != "" {
		if col, err = LetterToCol(m[1]); err != nil {
			return 0, 0, invalidAddress(text, "invalid column %q", m[1])
		}
	}
	if m[2] == "" {
		return Unbounded, col, nil
	}
	row, err = strconv.Atoi(m[2])
	if err != nil || row < 1 {
		return 0, 0, invalidAddress(text, "invalid row %q", m[2])
	}
	return row, col, nil
}

// String renders the range in A1 notation. Unset and unbounded parts are
// omitted, so a single cell has no ':' segment.
func (r Range) String() string {
	parts := make([]string, 0, 2)
	if s := corner(r.Top, r.Left); s != "" {
		parts = append(parts, s)
	}
	if s := corner(r.Bottom, r.Right); s != "" {
		parts = append(parts, s)
	}
	addr := strings.Join(parts, ":")
	if r.Sheet == "" {
		return addr
	}
	if addr == "" {
		return quoteSheet(r.Sheet)
	}
	return quoteSheet(r.Sheet) + "!" + addr
}

func corner(row, col int) string {
	s := ""
	if col > 0 && col != Unbounded {
		s = ColToLetter(col)
	}
	if row > 0 && row != Unbounded {
		s += strconv.Itoa(row)
	}
	return s
}

func quoteSheet(name string) string {
	if plainSheetRe.MatchString(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// Normalize orders finite corners so that Top <= Bottom and Left <= Right.
func (r Range) Normalize() Range {
	if finite(r.Top) && finite(r.Bottom) && r.Top > r.Bottom {
		r.Top, r.Bottom = r.Bottom, r.Top
	}
	if finite(r.Left) && finite(r.Right) && r.Left > r.Right {
		r.Left, r.Right = r.Right, r.Left
	}
	return r
}

func finite(n int) bool { return n > 0 && n != Unbounded }

// HasSheet reports whether the range names a sheet.
func (r Range) HasSheet() bool { return r.Sheet != "" }

// HasAddress reports whether the range has a top row, i.e. is not the
// whole sheet. Row 0 is never valid and counts as unset.
func (r Range) HasAddress() bool { return r.Top > 0 }

// IsRange reports whether the range spans more than a single cell corner.
func (r Range) IsRange() bool { return r.Bottom > 0 }

// Width is the number of columns, 1 for a single column and Unbounded for
// an open right edge.
func (r Range) Width() int { return extent(r.Left, r.Right) }

// Height is the number of rows, 1 for a single row and Unbounded for an
// open bottom edge.
func (r Range) Height() int { return extent(r.Top, r.Bottom) }

func extent(near, far int) int {
	switch {
	case far <= 0:
		return 1
	case far == Unbounded || near == Unbounded:
		return Unbounded
	default:
		return far - max(near, 1) + 1
	}
}

// WithWidth returns a copy spanning n columns from Left. n < 1 clears the
// extent, see WithoutExtent.
func (r Range) WithWidth(n int) Range {
	if n < 1 {
		return r.WithoutExtent()
	}
	r.Left = max(r.Left, 1)
	r.Right = r.Left + n - 1
	return r
}

// WithHeight returns a copy spanning n rows from Top. n < 1 clears the
// extent, see WithoutExtent.
func (r Range) WithHeight(n int) Range {
	if n < 1 {
		return r.WithoutExtent()
	}
	if !finite(r.Top) {
		r.Top = 1
	}
	r.Bottom = r.Top + n - 1
	return r
}

// WithSize is WithHeight followed by WithWidth.
func (r Range) WithSize(height, width int) Range {
	return r.WithHeight(height).WithWidth(width)
}

// WithoutExtent returns a copy reduced to its top-left corner. Bottom and
// Right are always cleared together.
func (r Range) WithoutExtent() Range {
	r.Bottom, r.Right = 0, 0
	return r
}

// Clamp replaces unset and unbounded edges with concrete coordinates inside
// a sheet of rows x cols, so the result can be iterated with Cells.
func (r Range) Clamp(rows, cols int) Range {
	if !r.HasAddress() && r.Left == 0 {
		return Range{Sheet: r.Sheet, Top: 1, Left: 1, Bottom: rows, Right: cols}
	}
	if r.Bottom == 0 && r.Right == 0 {
		r.Bottom, r.Right = r.Top, r.Left
	}
	if r.Top == Unbounded || r.Top == 0 {
		r.Top = 1
	}
	if r.Bottom == Unbounded || r.Bottom == 0 {
		r.Bottom = rows
	}
	if r.Left == 0 {
		r.Left = 1
		if r.Right == 0 {
			r.Right = cols
		}
	}
	if r.Right == Unbounded || r.Right == 0 {
		r.Right = cols
	}
	return r
}

// Cells yields (row, col) for every cell of a bounded range in row-major
// order. Ranges with unset or unbounded edges must be clamped first.
func (r Range) Cells() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		if !finite(r.Top) || !finite(r.Left) || !finite(r.Bottom) || !finite(r.Right) {
			return
		}
		for row := r.Top; row <= r.Bottom; row++ {
			for col := r.Left; col <= r.Right; col++ {
				if !yield(row, col) {
					return
				}
			}
		}
	}
}
