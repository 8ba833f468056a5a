package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/witanlabs/gsheets/internal"
)

var (
	updateRanges []string
	updateValues []string
	setDates     bool
	setTZ        string
)

var updateCmd = &cobra.Command{
	Use:   "update --range <range> --values <json> [--range ... --values ...]",
	Short: "Write rows of values into ranges",
	Long: `Write a JSON array of rows into each range. Values are stored as given
(no formula or number parsing). Pass --values - to read one value set from stdin.

Each --range needs exactly one --values; several pairs are sent as one batch.

Examples:
  gsheets update -s 1Wka3SAF... --range "Sheet1!A4:B5" --values '[["Fizz",123],["Buzz",456]]'
  gsheets update -f book.xlsx --range A1 --values '[[1]]' --range "Data!B2" --values '[["x"]]'
  cat rows.json | gsheets update -f book.xlsx --range "Sheet1!A1" --values -`,
	Args: cobra.NoArgs,
	RunE: runUpdate,
}

var setCmd = &cobra.Command{
	Use:   "set <address=value> [address=value ...]",
	Short: "Set single cell values",
	Long: `Set cells from address=value pairs, sent as one batch.

Values are typed: number, then true/false, then null (clears the cell),
otherwise text. With --dates, values that look like dates or timestamps are
stored as serial dates in --tz.

Examples:
  gsheets set -f book.xlsx "Sheet1!A1=42" "Sheet1!B1=hello"
  gsheets set -s 1Wka3SAF... "Log!A2=2024-07-14 18:00" --dates --tz Europe/London`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSet,
}

func init() {
	updateCmd.Flags().StringArrayVar(&updateRanges, "range", nil, "Target range (repeatable)")
	updateCmd.Flags().StringArrayVar(&updateValues, "values", nil, "JSON array of rows for the matching --range (repeatable)")
	setCmd.Flags().BoolVar(&setDates, "dates", false, "Store date and timestamp values as serial dates")
	setCmd.Flags().StringVar(&setTZ, "tz", "", "Time zone for --dates (default: local)")
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(setCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if len(updateRanges) == 0 {
		return fmt.Errorf("at least one --range is required")
	}
	if _, err := parseRanges(updateRanges); err != nil {
		return err
	}

	values := make([][][]any, len(updateValues))
	for i, v := range updateValues {
		rows, err := parseRows(v, cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("--values #%d: %w", i+1, err)
		}
		values[i] = rows
	}

	s, err := openBackend(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.close()

	if len(updateRanges) == 1 && len(values) == 1 {
		err = s.backend.Update(cmd.Context(), updateRanges[0], values[0])
	} else {
		err = s.backend.BatchUpdate(cmd.Context(), updateRanges, values)
	}
	if err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}

	cells := 0
	for _, rows := range values {
		for _, row := range rows {
			cells += len(row)
		}
	}
	fmt.Fprintf(os.Stderr, "Updated %d cells in %d range(s).\n", cells, len(updateRanges))
	return nil
}

// parseRows decodes a JSON array of rows; "-" reads it from stdin.
func parseRows(text string, stdin io.Reader) ([][]any, error) {
	data := []byte(text)
	if text == "-" {
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
	}
	var rows [][]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("invalid JSON rows: %w", err)
	}
	return rows, nil
}

func runSet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	var loc *time.Location
	if setDates {
		var err error
		if loc, err = loadLocation(setTZ); err != nil {
			return err
		}
	}

	ranges := make([]string, 0, len(args))
	values := make([][][]any, 0, len(args))
	for _, arg := range args {
		address, value, err := parseEditCell(arg, loc)
		if err != nil {
			return err
		}
		ranges = append(ranges, address)
		values = append(values, [][]any{{value}})
	}

	s, err := openBackend(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer s.close()

	if err := s.backend.BatchUpdate(cmd.Context(), ranges, values); err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Set %d cell(s).\n", len(ranges))
	return nil
}

// dateLayouts are the accepted forms for --dates values.
var dateLayouts = []string{time.RFC3339, time.DateTime, "2006-01-02 15:04", time.DateOnly}

// parseEditCell parses "Sheet1!A1=42" into a canonical single-cell address
// and a typed value: number → bool → null → string. With loc set, dates
// and timestamps become serial numbers in loc.
func parseEditCell(arg string, loc *time.Location) (string, any, error) {
	// Split on the first '=' after '!' so sheet names containing '=' are preserved.
	start := strings.IndexByte(arg, '!')
	if start < 0 {
		start = 0
	}
	idx := strings.IndexByte(arg[start:], '=')
	if idx < 0 {
		return "", nil, fmt.Errorf("invalid edit %q: expected address=value", arg)
	}
	idx += start
	address := arg[:idx]
	remainder := arg[idx+1:]

	if address == "" {
		return "", nil, fmt.Errorf("invalid edit %q: empty address", arg)
	}
	r, err := internal.ParseRange(address)
	if err != nil {
		return "", nil, err
	}
	if r.IsRange() || !r.HasAddress() || r.Top == internal.Unbounded || r.Left == 0 {
		return "", nil, fmt.Errorf("invalid edit %q: address must be a single cell", arg)
	}
	address = r.String()

	if n, err := strconv.ParseFloat(remainder, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return address, n, nil
	}

	lower := strings.ToLower(remainder)
	if lower == "true" || lower == "false" {
		return address, lower == "true", nil
	}

	// Null clears the cell; an empty string does that on every backend.
	if lower == "null" {
		return address, "", nil
	}

	if loc != nil {
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, remainder, loc); err == nil {
				return address, internal.TimeToSerial(t), nil
			}
		}
	}
	return address, remainder, nil
}
