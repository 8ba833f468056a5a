package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/witanlabs/gsheets/internal"
)

var dateTZ string

var dateCmd = &cobra.Command{
	Use:   "date <serial|timestamp> [...]",
	Short: "Convert between serial dates and timestamps",
	Long: `Convert spreadsheet serial dates to timestamps and back.

Serials are local wall-clock time: 45487.75 is 18:00 on 2024-07-14 in
whatever zone --tz names. Timestamps without an offset are read in --tz.

Examples:
  gsheets date 45487.75 --tz Europe/London
  gsheets date "2024-07-14 18:00:00" --tz America/New_York
  gsheets date 2024-07-14T17:00:00Z --tz Europe/London`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDate,
}

func init() {
	dateCmd.Flags().StringVar(&dateTZ, "tz", "", "Time zone (default: local)")
	rootCmd.AddCommand(dateCmd)
}

type dateInfo struct {
	Serial float64 `json:"serial"`
	Time   string  `json:"time"`
	Zone   string  `json:"zone"`
}

func runDate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	loc, err := loadLocation(dateTZ)
	if err != nil {
		return err
	}

	results := make([]dateInfo, 0, len(args))
	for _, arg := range args {
		var t time.Time
		if serial, err := strconv.ParseFloat(arg, 64); err == nil {
			t = internal.SerialToTime(serial, loc)
		} else if t, err = parseTimestamp(arg, loc); err != nil {
			return err
		}
		zone, _ := t.Zone()
		results = append(results, dateInfo{
			Serial: internal.TimeToSerial(t),
			Time:   t.Format(time.RFC3339Nano),
			Zone:   zone,
		})
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return jsonPrint(out, results)
	}
	for _, r := range results {
		fmt.Fprintf(out, "%s\t%s\t%s\n", strconv.FormatFloat(r.Serial, 'f', -1, 64), r.Time, r.Zone)
	}
	return nil
}

// parseTimestamp reads RFC 3339 as an instant shown in loc, and the
// offset-free layouts as wall-clock time in loc.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range dateLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: expected a serial number or a timestamp like 2024-07-14 18:00:00", s)
}
