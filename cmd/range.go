package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/witanlabs/gsheets/internal"
)

var (
	rangeWidth  int
	rangeHeight int
	rangeCheck  bool
)

var rangeCmd = &cobra.Command{
	Use:   "range <address>",
	Short: "Parse and normalize an A1 address",
	Long: `Parse an A1 address and print its canonical form, corners and size.
Open edges (e.g. "A:A") are reported as unbounded.

--width and --height resize the range from its top-left corner; 0 reduces
it to a single cell.

Examples:
  gsheets range "sheet1!b2:d5"
  gsheets range B1 --width 4 --height 3
  gsheets range "Data!A:C" --json
  gsheets range "$A$1:B" --check && echo valid`,
	Args: cobra.ExactArgs(1),
	RunE: runRange,
}

var colCmd = &cobra.Command{
	Use:   "col <number|letters> [...]",
	Short: "Convert between column numbers and letters",
	Long: `Convert 1-indexed column numbers to letters and back.

Examples:
  gsheets col 1 27 16384     # A AA XFD
  gsheets col AZ ba          # 52 53`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCol,
}

func init() {
	rangeCmd.Flags().IntVar(&rangeWidth, "width", 0, "Resize to this many columns")
	rangeCmd.Flags().IntVar(&rangeHeight, "height", 0, "Resize to this many rows")
	rangeCmd.Flags().BoolVar(&rangeCheck, "check", false, "Only validate: exit 1 without output if invalid")
	rootCmd.AddCommand(rangeCmd)
	rootCmd.AddCommand(colCmd)
}

// rangeInfo is the JSON form of a parsed range. Unset edges are null and
// unbounded edges are the string "unbounded".
type rangeInfo struct {
	Address    string `json:"address"`
	Sheet      string `json:"sheet,omitempty"`
	Top        any    `json:"top"`
	Left       any    `json:"left"`
	Bottom     any    `json:"bottom"`
	Right      any    `json:"right"`
	Width      any    `json:"width"`
	Height     any    `json:"height"`
	HasSheet   bool   `json:"has_sheet"`
	HasAddress bool   `json:"has_address"`
	IsRange    bool   `json:"is_range"`
}

func edge(n int) any {
	switch {
	case n == internal.Unbounded:
		return "unbounded"
	case n <= 0:
		return nil
	default:
		return n
	}
}

func runRange(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	r, err := internal.ParseRange(args[0])
	if err != nil {
		if rangeCheck {
			return &ExitError{Code: 1}
		}
		return err
	}
	if rangeCheck {
		return nil
	}
	if cmd.Flags().Changed("height") {
		r = r.WithHeight(rangeHeight)
	}
	if cmd.Flags().Changed("width") {
		r = r.WithWidth(rangeWidth)
	}

	info := rangeInfo{
		Address:    r.String(),
		Sheet:      r.Sheet,
		Top:        edge(r.Top),
		Left:       edge(r.Left),
		Bottom:     edge(r.Bottom),
		Right:      edge(r.Right),
		Width:      edge(r.Width()),
		Height:     edge(r.Height()),
		HasSheet:   r.HasSheet(),
		HasAddress: r.HasAddress(),
		IsRange:    r.IsRange(),
	}
	out := cmd.OutOrStdout()
	if jsonOutput {
		return jsonPrint(out, info)
	}

	show := func(v any) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprint(v)
	}
	fmt.Fprintln(out, info.Address)
	if r.HasSheet() {
		fmt.Fprintf(out, "  sheet   %s\n", r.Sheet)
	}
	fmt.Fprintf(out, "  top     %s\n  left    %s\n  bottom  %s\n  right   %s\n",
		show(info.Top), show(info.Left), show(info.Bottom), show(info.Right))
	fmt.Fprintf(out, "  size    %s x %s\n", show(info.Height), show(info.Width))
	return nil
}

func runCol(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	out := cmd.OutOrStdout()
	for _, arg := range args {
		if n, err := strconv.Atoi(arg); err == nil {
			if n < 1 {
				return fmt.Errorf("column number must be at least 1, got %d", n)
			}
			fmt.Fprintln(out, internal.ColToLetter(n))
			continue
		}
		n, err := internal.LetterToCol(arg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
	}
	return nil
}
