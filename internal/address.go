package internal

import (
	"math"
	"strconv"
)

// Unbounded marks an open row or column edge, as in "A:A" or "B2:C".
const Unbounded = math.MaxInt

// ColToLetter converts a 1-indexed column number to its bijective base-26
// label (1 → A, 26 → Z, 27 → AA). Returns "" for n < 1.
func ColToLetter(col int) string {
	var buf [16]byte
	i := len(buf)
	for col > 0 {
		col--
		i--
		buf[i] = byte('A' + col%26)
		col /= 26
	}
	return string(buf[i:])
}

// LetterToCol converts a column label such as "AA" or "bz" back to its
// 1-indexed column number.
func LetterToCol(letters string) (int, error) {
	if letters == "" {
		return 0, invalidAddress(letters, "empty column label")
	}
	col := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			return 0, invalidAddress(letters, "column label must only contain letters A-Z")
		}
		if col > (math.MaxInt-26)/26 {
			return 0, invalidAddress(letters, "column label out of range")
		}
		col = col*26 + int(c-'A'+1)
	}
	return col, nil
}

// CellAddress renders a single cell like "D3". An Unbounded row renders as
// the column label alone.
func CellAddress(row, col int) string {
	if row == Unbounded || row < 1 {
		return ColToLetter(col)
	}
	return ColToLetter(col) + strconv.Itoa(row)
}

// RangeAddress renders the range of the given size anchored at top/left,
// e.g. RangeAddress(1, 2, 3, 4) == "B1:E3".
func RangeAddress(top, left, height, width int) string {
	return CellAddress(top, left) + ":" + CellAddress(top+height-1, left+width-1)
}
