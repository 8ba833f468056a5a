package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/witanlabs/gsheets/client"
	"github.com/witanlabs/gsheets/internal"
)

var (
	getDateCols string
	getTZ       string
)

var getCmd = &cobra.Command{
	Use:   "get <range> [range ...]",
	Short: "Read values from one or more ranges",
	Long: `Read unformatted cell values. Dates come back as serial numbers unless
their columns are listed with --date-cols.

Several ranges are read in a single batch request.

Examples:
  gsheets get -s 1Wka3SAF... "Sheet1!A1:B2"
  gsheets get -f book.xlsx "Data!A:C" "Summary!B2"
  gsheets get -s 1Wka3SAF... "Log!A2:D" --date-cols A --tz Europe/London
  gsheets get --json "Sheet1!A1:B2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringVar(&getDateCols, "date-cols", "", "Comma-separated sheet columns holding serial dates (e.g. A,D)")
	getCmd.Flags().StringVar(&getTZ, "tz", "", "Time zone for --date-cols (default: local)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	dates, err := newDateRenderer(getDateCols, getTZ)
	if err != nil {
		return err
	}
	ranges, err := parseRanges(args)
	if err != nil {
		return err
	}

	s, err := openBackend(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.close()

	var values [][][]any
	if len(args) == 1 {
		rows, err := s.backend.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		values = [][][]any{rows}
	} else {
		values, err = s.backend.BatchGet(cmd.Context(), args)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		result := make([]client.ValueRange, len(ranges))
		for i, r := range ranges {
			result[i] = client.ValueRange{Range: r.String(), MajorDimension: "ROWS", Values: values[i]}
		}
		if len(result) == 1 {
			return jsonPrint(out, result[0])
		}
		return jsonPrint(out, result)
	}

	for i, r := range ranges {
		if len(ranges) > 1 {
			fmt.Fprintf(out, "# %s\n", r)
		}
		printRows(out, dates.render(r, values[i]))
	}
	return nil
}

func parseRanges(args []string) ([]internal.Range, error) {
	ranges := make([]internal.Range, len(args))
	for i, arg := range args {
		r, err := internal.ParseRange(arg)
		if err != nil {
			return nil, err
		}
		ranges[i] = r
	}
	return ranges, nil
}

// dateRenderer shows serial numbers in selected sheet columns as local
// timestamps.
type dateRenderer struct {
	cols map[int]bool
	loc  *time.Location
}

func newDateRenderer(cols, tz string) (*dateRenderer, error) {
	loc, err := loadLocation(tz)
	if err != nil {
		return nil, err
	}
	d := &dateRenderer{cols: map[int]bool{}, loc: loc}
	for _, label := range strings.Split(cols, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		col, err := internal.LetterToCol(label)
		if err != nil {
			return nil, fmt.Errorf("--date-cols: %w", err)
		}
		d.cols[col] = true
	}
	return d, nil
}

func (d *dateRenderer) render(r internal.Range, rows [][]any) [][]string {
	left := max(r.Left, 1)
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if serial, ok := v.(float64); ok && d.cols[left+j] {
				out[i][j] = internal.SerialToTime(serial, d.loc).Format(time.DateTime)
				continue
			}
			out[i][j] = formatCell(v)
		}
	}
	return out
}

func loadLocation(tz string) (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid --tz %q: %w", tz, err)
	}
	return loc, nil
}
