package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <range> [range ...]",
	Short: "Clear the values of one or more ranges",
	Long: `Remove cell values, keeping formatting. Several ranges are cleared in a
single batch request.

Examples:
  gsheets clear -s 1Wka3SAF... "Sheet1!A4:B5"
  gsheets clear -f book.xlsx "Data!A2:D" "Summary!B:B"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	if _, err := parseRanges(args); err != nil {
		return err
	}

	s, err := openBackend(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer s.close()

	if len(args) == 1 {
		err = s.backend.Clear(cmd.Context(), args[0])
	} else {
		err = s.backend.BatchClear(cmd.Context(), args)
	}
	if err != nil {
		return err
	}
	if err := s.save(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Cleared %d range(s).\n", len(args))
	return nil
}
