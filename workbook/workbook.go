// Package workbook serves spreadsheet values from a local .xlsx file, so the
// same commands that talk to a remote sheet can run against a workbook on
// disk.
package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/witanlabs/gsheets/client"
	"github.com/witanlabs/gsheets/internal"
)

// Workbook is a client.Backend over an excelize file. Changes stay in
// memory until Save.
type Workbook struct {
	path string

	mu   sync.Mutex
	file *excelize.File
	log  *slog.Logger
}

var _ client.Backend = (*Workbook)(nil)

// Open opens an existing workbook.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	return newWorkbook(path, f), nil
}

// Create starts an empty workbook with a single "Sheet1" that Save writes
// to path.
func Create(path string) *Workbook {
	return newWorkbook(path, excelize.NewFile())
}

func newWorkbook(path string, f *excelize.File) *Workbook {
	return &Workbook{path: path, file: f, log: slog.New(slog.DiscardHandler)}
}

// WithLogger sets the logger used to trace operations.
func (w *Workbook) WithLogger(log *slog.Logger) *Workbook {
	if log != nil {
		w.log = log
	}
	return w
}

// File exposes the underlying excelize file.
func (w *Workbook) File() *excelize.File { return w.file }

// Save writes the workbook to its path.
func (w *Workbook) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	w.log.Debug("saved workbook", "path", w.path)
	return nil
}

// Close releases the file's temporary resources without saving.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// resolve parses rng and picks its sheet, defaulting to the first one.
func (w *Workbook) resolve(rng string) (internal.Range, string, error) {
	r, err := internal.ParseRange(rng)
	if err != nil {
		return internal.Range{}, "", err
	}
	if !r.HasSheet() {
		sheets := w.file.GetSheetList()
		if len(sheets) == 0 {
			return internal.Range{}, "", &client.BackendError{StatusCode: http.StatusNotFound, Code: "NOT_FOUND", Message: "workbook has no sheets"}
		}
		return r, sheets[0], nil
	}
	if idx, err := w.file.GetSheetIndex(r.Sheet); err != nil || idx < 0 {
		return internal.Range{}, "", &client.BackendError{
			StatusCode: http.StatusNotFound,
			Code:       "NOT_FOUND",
			Message:    fmt.Sprintf("Sheet '%s' not found", r.Sheet),
		}
	}
	return r, r.Sheet, nil
}

// usedArea returns the rows and columns in use on sheet.
func (w *Workbook) usedArea(sheet string) (rows, cols int, err error) {
	grid, err := w.file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, 0, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	for _, row := range grid {
		cols = max(cols, len(row))
	}
	return len(grid), cols, nil
}

// Get reads the values of one range. Trailing empty cells and rows are
// dropped; numbers (including dates, as serials) come back as float64.
func (w *Workbook) Get(ctx context.Context, rng string) ([][]any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.get(rng)
}

func (w *Workbook) get(rng string) ([][]any, error) {
	r, sheet, err := w.resolve(rng)
	if err != nil {
		return nil, err
	}
	usedRows, usedCols, err := w.usedArea(sheet)
	if err != nil {
		return nil, err
	}

	area := r.Clamp(usedRows, usedCols)
	area.Bottom = min(area.Bottom, usedRows)
	area.Right = min(area.Right, usedCols)

	out := [][]any{}
	for row, col := range area.Cells() {
		i := row - area.Top
		for len(out) <= i {
			out = append(out, []any{})
		}
		v, err := w.cellValue(sheet, internal.CellAddress(row, col))
		if err != nil {
			return nil, err
		}
		out[i] = append(out[i], v)
	}
	w.log.Debug("read range", "range", r.String(), "sheet", sheet, "rows", len(out))
	return trimRows(out), nil
}

func (w *Workbook) cellValue(sheet, cell string) (any, error) {
	raw, err := w.file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading %s!%s: %w", sheet, cell, err)
	}
	if raw == "" {
		return "", nil
	}
	typ, err := w.file.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("reading %s!%s: %w", sheet, cell, err)
	}
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString:
		return raw, nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, nil
	}
	return raw, nil
}

func trimRows(rows [][]any) [][]any {
	for i, row := range rows {
		end := len(row)
		for end > 0 && row[end-1] == "" {
			end--
		}
		rows[i] = row[:end]
	}
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end]
}

// BatchGet reads several ranges.
func (w *Workbook) BatchGet(ctx context.Context, rngs []string) ([][][]any, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([][][]any, len(rngs))
	for i, rng := range rngs {
		rows, err := w.get(rng)
		if err != nil {
			return nil, err
		}
		out[i] = rows
	}
	return out, nil
}

// Update writes rows starting at the range's top-left corner. A single
// cell anchors the write; a bounded range must be large enough for rows.
func (w *Workbook) Update(ctx context.Context, rng string, rows [][]any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.update(rng, rows)
}

func (w *Workbook) update(rng string, rows [][]any) error {
	r, sheet, err := w.resolve(rng)
	if err != nil {
		return err
	}

	area := r.Clamp(excelize.TotalRows, excelize.MaxColumns)
	if r.HasAddress() && r.Top != internal.Unbounded && !r.IsRange() && r.Left > 0 {
		area.Bottom, area.Right = excelize.TotalRows, excelize.MaxColumns
	}
	height := area.Bottom - area.Top + 1
	width := area.Right - area.Left + 1
	if len(rows) > height {
		return fmt.Errorf("%d rows do not fit in %s", len(rows), r)
	}

	for i, row := range rows {
		if len(row) > width {
			return fmt.Errorf("row %d has %d values, %s is %d columns wide", i+1, len(row), r, width)
		}
		for j, v := range row {
			cell := internal.CellAddress(area.Top+i, area.Left+j)
			if err := w.file.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("writing %s!%s: %w", sheet, cell, err)
			}
		}
	}
	w.log.Debug("updated range", "range", r.String(), "sheet", sheet, "rows", len(rows))
	return nil
}

// BatchUpdate writes one set of rows per range. Nothing is written when the
// lengths differ.
func (w *Workbook) BatchUpdate(ctx context.Context, rngs []string, rows [][][]any) error {
	if len(rngs) != len(rows) {
		return &client.MismatchError{Ranges: len(rngs), Rows: len(rows)}
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, rng := range rngs {
		if err := w.update(rng, rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// Clear empties every used cell of the range.
func (w *Workbook) Clear(ctx context.Context, rng string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clear(rng)
}

func (w *Workbook) clear(rng string) error {
	r, sheet, err := w.resolve(rng)
	if err != nil {
		return err
	}
	usedRows, usedCols, err := w.usedArea(sheet)
	if err != nil {
		return err
	}

	area := r.Clamp(usedRows, usedCols)
	area.Bottom = min(area.Bottom, usedRows)
	area.Right = min(area.Right, usedCols)
	for row, col := range area.Cells() {
		cell := internal.CellAddress(row, col)
		if err := w.file.SetCellValue(sheet, cell, nil); err != nil {
			return fmt.Errorf("clearing %s!%s: %w", sheet, cell, err)
		}
	}
	w.log.Debug("cleared range", "range", r.String(), "sheet", sheet)
	return nil
}

// BatchClear clears several ranges.
func (w *Workbook) BatchClear(ctx context.Context, rngs []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, rng := range rngs {
		if err := w.clear(rng); err != nil {
			return err
		}
	}
	return nil
}
