package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/open-control-systems/thingweb/components/core"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to parse environment:", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(),
		unix.SIGHUP,
		unix.SIGINT,
		unix.SIGTERM,
		unix.SIGQUIT)
	defer cancel()

	if err := newRootCmd(cfg).ExecuteContext(ctx); err != nil {
		return 1
	}

	return 0
}

func newRootCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "thingweb",
		Short:         "Web of Things servient and client",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			core.SetVerbose(cfg.Verbose)

			return core.SetLogFile(cfg.LogPath)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfg.LogPath, "log-path", cfg.LogPath, "log file path, stderr if empty")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging")
	flags.StringVar(&cfg.Token, "token", cfg.Token, "access token for the remote thing")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "request timeout")
	flags.StringVar(&cfg.CachePath, "cache-path", cfg.CachePath,
		"bbolt database to cache descriptions, no cache if empty")
	flags.BoolVar(&cfg.MdnsEnabled, "mdns", cfg.MdnsEnabled, "enable mDNS")
	flags.DurationVar(&cfg.MdnsTimeout, "mdns-timeout", cfg.MdnsTimeout, "mDNS browsing timeout")

	cmd.AddCommand(
		newServeCmd(cfg),
		newGetCmd(cfg),
		newPutCmd(cfg),
		newActionCmd(cfg),
		newObserveCmd(cfg),
		newDiscoverCmd(cfg),
		newPollCmd(cfg),
		newTokenCmd(cfg),
	)

	return cmd
}
