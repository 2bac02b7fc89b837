package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blockfetch/blockfetch/internal/config"
	"github.com/blockfetch/blockfetch/internal/fetch"
)

// newSourcesCmd creates the sources command: list the configured blocklist
// sources and how each would be fetched.
func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured blocklist sources",
		RunE:  runSources,
	}
}

func runSources(cmd *cobra.Command, _ []string) error {
	cfg := config.GetGlobalConfig()
	if len(cfg.Blocklists) == 0 {
		cmd.Println("No blocklist sources configured.")
		return nil
	}

	for _, raw := range cfg.Blocklists {
		src, err := fetch.ParseSource(raw)
		if err != nil {
			cmd.Printf("invalid  %s\n", raw)
			continue
		}
		switch {
		case !src.IsLocal():
			cmd.Printf("remote   %s\n", src)
		default:
			kind := "local"
			if info, statErr := os.Stat(src.LocalPath()); statErr != nil {
				kind = "missing"
			} else if info.IsDir() {
				kind = "dir"
			}
			cmd.Printf("%-8s %s\n", kind, src)
		}
	}
	return nil
}
