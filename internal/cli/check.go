package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blockfetch/blockfetch/internal/config"
	"github.com/blockfetch/blockfetch/internal/hosts"
	"github.com/blockfetch/blockfetch/internal/whitelist"
)

// newCheckCmd creates the check command: query the compiled host set.
func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check URL...",
		Short: "Check whether URLs are blocked by the compiled host set",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg := config.GetGlobalConfig()

	hostsPath, err := config.HostsPath()
	if err != nil {
		return err
	}
	set, err := hosts.Load(hostsPath)
	if err != nil {
		return fmt.Errorf("no compiled host set (run \"blockfetch update\" first): %w", err)
	}

	allow, err := whitelist.New(cfg.Whitelist)
	if err != nil {
		return err
	}
	blocker := hosts.NewBlocker(set, allow)

	blocked := 0
	for _, rawURL := range args {
		if blocker.IsBlocked(rawURL) {
			blocked++
			cmd.Printf("BLOCKED  %s\n", rawURL)
		} else {
			cmd.Printf("allowed  %s\n", rawURL)
		}
	}

	logger.Debug().
		Int("checked", len(args)).
		Int("blocked", blocked).
		Msg("check finished")
	return nil
}
