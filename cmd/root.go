package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/witanlabs/gsheets/client"
	"github.com/witanlabs/gsheets/config"
	"github.com/witanlabs/gsheets/internal"
	"github.com/witanlabs/gsheets/workbook"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var (
	token         string
	apiKey        string
	apiURL        string
	spreadsheetID string
	workbookPath  string
	relayURL      string
	verbose       bool
	jsonOutput    bool
)

var rootCmd = &cobra.Command{
	Use:   "gsheets",
	Short: "gsheets — read and write spreadsheet ranges",
	Long: `Read, write and clear ranges of a spreadsheet using A1 notation.

Backends:
  --spreadsheet ID   Sheets values API (default)
  --file book.xlsx   a local workbook
  --relay ws://...   a sheet relay over websocket

Offline helpers:
  range  Parse and normalize an A1 address
  col    Convert between column numbers and letters
  date   Convert between serial dates and timestamps`,
	Version:       Version,
	SilenceErrors: true,
}

func init() {
	addGlobalFlags(rootCmd.PersistentFlags())
}

func addGlobalFlags(fs *pflag.FlagSet) {
	fs.StringVar(&token, "token", "", "OAuth access token (env: GSHEETS_TOKEN)")
	fs.StringVar(&apiKey, "api-key", "", "API key for publicly readable sheets (env: GSHEETS_API_KEY)")
	fs.StringVar(&apiURL, "api-url", "", "Sheets API URL (env: GSHEETS_API_URL)")
	fs.StringVarP(&spreadsheetID, "spreadsheet", "s", "", "Spreadsheet ID (env: GSHEETS_SPREADSHEET)")
	fs.StringVarP(&workbookPath, "file", "f", "", "Use a local .xlsx workbook instead of the API")
	fs.StringVar(&relayURL, "relay", "", "Sheet relay websocket URL (env: GSHEETS_RELAY_URL)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "Trace backend calls on stderr (env: GSHEETS_DEBUG=1)")
	fs.BoolVar(&jsonOutput, "json", false, "Output JSON instead of tab-separated text")
}

// resolve returns the first non-empty of flag, environment and config.
func resolve(flagValue, env, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	return configValue
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring config: %v\n", err)
		return config.Config{}
	}
	return cfg
}

func resolveAPIURL(cfg config.Config) string {
	if v := resolve(apiURL, "GSHEETS_API_URL", cfg.APIURL); v != "" {
		return v
	}
	return client.DefaultBaseURL
}

func newLogger() *slog.Logger {
	if verbose || os.Getenv("GSHEETS_DEBUG") == "1" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})).With("component", "gsheets")
	}
	return slog.New(slog.DiscardHandler)
}

// session is an open backend. save persists local changes and close
// releases the connection or file.
type session struct {
	backend client.Backend
	save    func() error
	close   func() error
}

// openBackend picks the backend from --file, --relay or the API settings.
// With create, a missing workbook file is started empty.
func openBackend(ctx context.Context, create bool) (*session, error) {
	log := newLogger()
	cfg := loadConfig()
	noop := func() error { return nil }

	if workbookPath != "" {
		var wb *workbook.Workbook
		if _, err := os.Stat(workbookPath); create && errors.Is(err, os.ErrNotExist) {
			wb = workbook.Create(workbookPath)
		} else {
			wb, err = workbook.Open(workbookPath)
			if err != nil {
				return nil, err
			}
		}
		wb.WithLogger(log)
		return &session{backend: wb, save: wb.Save, close: wb.Close}, nil
	}

	id := resolve(spreadsheetID, "GSHEETS_SPREADSHEET", cfg.SpreadsheetID)
	auth := resolve(token, "GSHEETS_TOKEN", cfg.AccessToken)

	if u := resolve(relayURL, "GSHEETS_RELAY_URL", cfg.RelayURL); u != "" {
		relay, err := client.DialRelay(ctx, u, id, auth)
		if err != nil {
			return nil, err
		}
		relay.WithLogger(log)
		return &session{backend: relay, save: noop, close: relay.Close}, nil
	}

	if id == "" {
		return nil, fmt.Errorf("no spreadsheet: set --spreadsheet / GSHEETS_SPREADSHEET, or use --file")
	}
	key := resolve(apiKey, "GSHEETS_API_KEY", cfg.APIKey)
	if auth == "" && key == "" {
		return nil, fmt.Errorf("not authenticated: run 'gsheets auth set-token' or set --token / GSHEETS_TOKEN")
	}
	c := client.New(resolveAPIURL(cfg), id, auth).WithLogger(log)
	c.APIKey = key
	c.UserAgent = "gsheets/" + Version
	return &session{backend: c, save: noop, close: noop}, nil
}

// ExitCode maps an error to the process exit status: 2 for bad input,
// 3 for backend failures and 1 otherwise.
func ExitCode(err error) int {
	var (
		addrErr     *internal.InvalidAddressError
		mismatchErr *client.MismatchError
		backendErr  *client.BackendError
	)
	switch {
	case errors.As(err, &addrErr), errors.As(err, &mismatchErr):
		return 2
	case errors.As(err, &backendErr):
		return 3
	default:
		return 1
	}
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
