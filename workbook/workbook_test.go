package workbook

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/witanlabs/gsheets/client"
	"github.com/witanlabs/gsheets/internal"
)

// newFixture writes a small workbook and opens it as a backend.
func newFixture(t *testing.T) (*Workbook, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Foo"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", 123))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Bar"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", 45487.75))
	require.NoError(t, f.SetCellValue("Sheet1", "C3", true))
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Data", "B2", "x"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	w, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w, path
}

func TestGet(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	rows, err := w.Get(ctx, "Sheet1!A1:B2")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"Foo", 123.0}, {"Bar", 45487.75}}, rows)

	// No sheet means the first sheet.
	rows, err = w.Get(ctx, "b1")
	require.NoError(t, err)
	require.Equal(t, [][]any{{123.0}}, rows)

	rows, err = w.Get(ctx, "Sheet1!C3")
	require.NoError(t, err)
	require.Equal(t, [][]any{{true}}, rows)
}

func TestGet_OpenRangesStopAtUsedArea(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	rows, err := w.Get(ctx, "Sheet1!B:B")
	require.NoError(t, err)
	require.Equal(t, [][]any{{123.0}, {45487.75}}, rows)

	rows, err = w.Get(ctx, "Sheet1!")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"Foo", 123.0}, {"Bar", 45487.75}, {"", "", true}}, rows)

	rows, err = w.Get(ctx, "Data!A1:D")
	require.NoError(t, err)
	require.Equal(t, [][]any{{}, {"", "x"}}, rows)

	rows, err = w.Get(ctx, "Sheet1!D10:E20")
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestGet_Errors(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	_, err := w.Get(ctx, "Nope!A1")
	var backendErr *client.BackendError
	require.True(t, errors.As(err, &backendErr), "got %v", err)
	require.Equal(t, "NOT_FOUND", backendErr.Code)

	_, err = w.Get(ctx, "Sheet1!A1:")
	var addrErr *internal.InvalidAddressError
	require.True(t, errors.As(err, &addrErr), "got %v", err)
}

func TestUpdateSaveAndReopen(t *testing.T) {
	w, path := newFixture(t)
	ctx := context.Background()

	require.NoError(t, w.Update(ctx, "Sheet1!A4:B5", [][]any{{"Fizz", 123.0}, {"Buzz", 456.0}}))
	require.NoError(t, w.Save())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()

	rows, err := again.Get(ctx, "Sheet1!A4:B5")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"Fizz", 123.0}, {"Buzz", 456.0}}, rows)
}

func TestUpdate_SingleCellAnchorsWrite(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, w.Update(ctx, "Data!C5", [][]any{{1.0, 2.0, 3.0}, {4.0}}))
	rows, err := w.Get(ctx, "Data!C5:E6")
	require.NoError(t, err)
	require.Equal(t, [][]any{{1.0, 2.0, 3.0}, {4.0}}, rows)
}

func TestUpdate_RejectsValuesOutsideRange(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	require.Error(t, w.Update(ctx, "Sheet1!A1:B1", [][]any{{1.0, 2.0, 3.0}}))
	require.Error(t, w.Update(ctx, "Sheet1!A1:B1", [][]any{{1.0}, {2.0}}))
}

func TestBatchUpdate(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	err := w.BatchUpdate(ctx, []string{"Sheet1!A1", "Data!A1"}, [][][]any{{{"new"}}})
	var mismatch *client.MismatchError
	require.True(t, errors.As(err, &mismatch), "got %v", err)

	rows, err := w.Get(ctx, "Sheet1!A1")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"Foo"}}, rows, "nothing must be written on mismatch")

	require.NoError(t, w.BatchUpdate(ctx, []string{"Sheet1!A1", "Data!A1"}, [][][]any{{{"new"}}, {{false}}}))
	out, err := w.BatchGet(ctx, []string{"Sheet1!A1", "Data!A1"})
	require.NoError(t, err)
	require.Equal(t, [][][]any{{{"new"}}, {{false}}}, out)
}

func TestClear(t *testing.T) {
	w, _ := newFixture(t)
	ctx := context.Background()

	require.NoError(t, w.Clear(ctx, "Sheet1!B:B"))
	rows, err := w.Get(ctx, "Sheet1!A1:C3")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"Foo"}, {"Bar"}, {"", "", true}}, rows)

	require.NoError(t, w.BatchClear(ctx, []string{"Sheet1!1:2", "Data!"}))
	out, err := w.BatchGet(ctx, []string{"Sheet1!A1:C3", "Data!A1:C3"})
	require.NoError(t, err)
	require.Equal(t, [][][]any{{{}, {}, {"", "", true}}, {}}, out)
}

func TestCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.xlsx")
	w := Create(path)
	ctx := context.Background()

	require.NoError(t, w.Update(ctx, "A1", [][]any{{"hello"}}))
	require.NoError(t, w.Save())
	require.NoError(t, w.Close())

	again, err := Open(path)
	require.NoError(t, err)
	defer again.Close()
	rows, err := again.Get(ctx, "Sheet1!A1")
	require.NoError(t, err)
	require.Equal(t, [][]any{{"hello"}}, rows)
}
