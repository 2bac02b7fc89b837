package cli

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/blockfetch/blockfetch/internal/config"
	"github.com/blockfetch/blockfetch/internal/download"
	"github.com/blockfetch/blockfetch/internal/fetch"
	"github.com/blockfetch/blockfetch/internal/hosts"
	"github.com/blockfetch/blockfetch/internal/logging"
)

// newUpdateCmd creates the update command: fetch every blocklist source and
// compile the blocked-host set.
func newUpdateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "update [source...]",
		Short: "Fetch blocklists and compile the blocked-host set",
		Long: "Fetch every configured blocklist (or the sources given as arguments),\n" +
			"aggregate the entries into one blocked-host set, and write it to the\n" +
			"compiled hosts file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the compiled host set to this file")
	return cmd
}

// stderrReporter surfaces skipped-source diagnostics on the command's
// stderr, mirroring them into the log.
type stderrReporter struct {
	cmd *cobra.Command
}

func (r stderrReporter) Error(msg string) {
	r.cmd.PrintErrln(msg)
	logger.Error().Str("component", "fetch").Msg(msg)
}

func runUpdate(cmd *cobra.Command, args []string, output string) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	raw := cfg.Blocklists
	if len(args) > 0 {
		raw = args
	}
	sources, err := fetch.ParseSources(raw)
	if err != nil {
		return err
	}

	if output == "" {
		output, err = config.HostsPath()
		if err != nil {
			return err
		}
	}

	backend := download.NewManager(download.Config{
		HTTPClient:    &http.Client{Timeout: time.Duration(cfg.Download.TimeoutSeconds) * time.Second},
		UserAgent:     cfg.Download.UserAgent,
		MaxConcurrent: cfg.Download.MaxConcurrent,
	}, logging.FromContext(ctx))

	set := hosts.NewSet()
	onItem := func(r io.Reader) {
		added, readErr := set.ReadFrom(r)
		if readErr != nil {
			logger.Warn().Err(readErr).Msg("blocklist only partially read")
		}
		logger.Debug().Int("hosts_added", added).Msg("blocklist consumed")
	}

	// The all-done callback runs on whichever goroutine resolves the last
	// operation; hand the count back to this one.
	done := make(chan int, 1)
	onAllDone := func(succeeded int) {
		done <- succeeded
	}

	coordinator := fetch.New(sources, onItem, onAllDone, backend).
		WithReporter(stderrReporter{cmd: cmd}).
		WithLogger(logging.FromContext(ctx))

	if err := coordinator.Initiate(ctx); err != nil {
		return err
	}
	succeeded := <-done

	if err := set.Save(output); err != nil {
		return err
	}

	logger.Info().
		Int("succeeded", succeeded).
		Int("sources", len(sources)).
		Int("hosts", set.Len()).
		Str("output", output).
		Msg("blocklists updated")
	cmd.Printf("Fetched %d blocklists from %d sources, %d hosts blocked.\n", succeeded, len(sources), set.Len())
	if succeeded == 0 && len(sources) > 0 {
		return fmt.Errorf("no blocklist source could be fetched")
	}
	return nil
}
