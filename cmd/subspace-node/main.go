// Command subspace-node is a node's command-line surface over the client
// database pager: a small urfave/cli command set modeled on the
// run/buildSpec/checkBlock/exportBlocks/exportState/importBlocks/wipe/
// revert/chainInfo commands of a typical chain client. Its run command opens
// the pager, serves Prometheus metrics and waits for a signal; it does not
// start a slot worker or a farmer-facing RPC surface.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	applog "github.com/ab-network/subspace-core/log"
)

var (
	datadirFlag = &cli.StringFlag{
		Name:    "datadir",
		Usage:   "directory holding the client database and plotted sectors",
		Value:   "./datadir",
		EnvVars: []string{"SUBSPACE_DATADIR"},
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "debug, info, warn, or error",
		Value:   "info",
		EnvVars: []string{"SUBSPACE_LOG_LEVEL"},
	}
	metricsAddrFlag = &cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "address to serve Prometheus metrics on (empty disables the exporter)",
		Value: "127.0.0.1:9615",
	}
)

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setupLogging(c *cli.Context) {
	applog.SetDefault(applog.New(parseLogLevel(c.String(logLevelFlag.Name))))
}

func main() {
	app := &cli.App{
		Name:  "subspace-node",
		Usage: "run and administer a proof-of-archival-storage consensus node",
		Flags: []cli.Flag{
			datadirFlag,
			logLevelFlag,
			metricsAddrFlag,
		},
		Before: func(c *cli.Context) error {
			setupLogging(c)
			return nil
		},
		Commands: []*cli.Command{
			runCommand,
			buildSpecCommand,
			checkBlockCommand,
			exportBlocksCommand,
			exportStateCommand,
			importBlocksCommand,
			wipeCommand,
			revertCommand,
			chainInfoCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "subspace-node:", err)
		os.Exit(1)
	}
}
