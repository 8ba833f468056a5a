package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/witanlabs/gsheets/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Save an access token",
	Long: `Save an OAuth access token for the Sheets API. Without an argument the
token is read from stdin. --spreadsheet, --api-key and --relay given here are
saved as defaults too.

For non-interactive environments, use --token or GSHEETS_TOKEN instead.

Example:
  gcloud auth print-access-token | gsheets auth set-token -s 1Wka3SAF...`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSetToken,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove saved credentials",
	Long: `Remove the locally saved token and defaults.
If nothing is saved, prints "Not logged in." and exits successfully.

Example:
  gsheets auth logout`,
	Args: cobra.NoArgs,
	RunE: runLogout,
}

func init() {
	setTokenCmd.SilenceUsage = true
	logoutCmd.SilenceUsage = true
	authCmd.AddCommand(setTokenCmd)
	authCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(authCmd)
}

func runSetToken(cmd *cobra.Command, args []string) error {
	var tok string
	if len(args) == 1 {
		tok = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("reading token from stdin: %w", err)
		}
		tok = line
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return fmt.Errorf("empty token")
	}

	_, err := config.Update(func(cfg *config.Config) {
		cfg.AccessToken = tok
		if spreadsheetID != "" {
			cfg.SpreadsheetID = spreadsheetID
		}
		if apiKey != "" {
			cfg.APIKey = apiKey
		}
		if relayURL != "" {
			cfg.RelayURL = relayURL
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}
	})
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if p, err := config.Path(); err == nil {
		fmt.Fprintf(os.Stderr, "✓ Token saved to %s\n", p)
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.IsZero() {
		fmt.Fprintln(os.Stderr, "Not logged in.")
		return nil
	}

	if err := config.Delete(); err != nil {
		return fmt.Errorf("failed to delete config: %w", err)
	}

	fmt.Fprintln(os.Stderr, "✓ Logged out")
	return nil
}
