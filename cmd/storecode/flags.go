package main

import (
	"github.com/urfave/cli"

	"github.com/pylon-protocol/deployer/artifact"
	"github.com/pylon-protocol/deployer/deployer"
	"github.com/pylon-protocol/deployer/transaction"
)

var flags = []cli.Flag{
	cli.StringFlag{
		Name:   "network, n",
		Value:  "local",
		Usage:  "network to deploy to",
		EnvVar: "STORECODE_NETWORK",
	},
	cli.StringFlag{
		Name:  "source, s",
		Usage: "single wasm file to store",
	},
	cli.StringFlag{
		Name:  "directory, d",
		Usage: "directory whose artifacts are stored in listing order; wins over --source",
	},
	cli.StringFlag{
		Name:   "config",
		Usage:  "YAML file overriding or adding network definitions",
		EnvVar: "STORECODE_CONFIG",
	},
	cli.StringFlag{
		Name:  "output-dir",
		Value: deployer.DefaultOutputDir,
		Usage: "directory the code_id_<network>.json ledger is written to",
	},
	cli.StringFlag{
		Name:  "extension",
		Value: artifact.DefaultExtension,
		Usage: "file extension of the artifacts in --directory",
	},
	cli.BoolFlag{
		Name:  "resume",
		Usage: "skip artifacts already recorded in the ledger",
	},
	cli.StringFlag{
		Name:  "gas-prices",
		Usage: "gas prices like 0.15uusd; skips the gas price oracle",
	},
	cli.Uint64Flag{
		Name:  "gas",
		Usage: "fixed gas limit per transaction; 0 lets the node estimate",
	},
	cli.IntFlag{
		Name:  "max-resyncs",
		Value: transaction.DefaultMaxResyncs,
		Usage: "sequence refetches per artifact before giving up; 0 is unbounded",
	},
	cli.IntFlag{
		Name:  "max-poll-attempts",
		Value: transaction.DefaultMaxPollAttempts,
		Usage: "confirmation queries per transaction before giving up; 0 is unbounded",
	},
	cli.BoolFlag{
		Name:  "retry-all-rejections",
		Usage: "resync and retry on every rejection, not only on sequence and mempool ones",
	},
	cli.DurationFlag{
		Name:  "backoff",
		Value: transaction.DefaultBackoff,
		Usage: "wait before refetching the account sequence after a rejection",
	},
	cli.DurationFlag{
		Name:  "delay",
		Value: deployer.DefaultInterArtifactDelay,
		Usage: "pause between two artifacts of a batch",
	},
	cli.DurationFlag{
		Name:  "poll-interval",
		Value: transaction.DefaultPollingInterval,
		Usage: "wait between two confirmation queries",
	},
	cli.StringFlag{
		Name:   "signer-url",
		Usage:  "sign with the remote signing daemon at this URL instead of the network mnemonic",
		EnvVar: "STORECODE_SIGNER_URL",
	},
	cli.UintFlag{
		Name:  "hd-account",
		Usage: "account component of the key path m/44'/330'/account'/0/index",
	},
	cli.UintFlag{
		Name:  "hd-index",
		Usage: "index component of the key path m/44'/330'/account'/0/index",
	},
	cli.StringFlag{
		Name:   "log-level",
		Usage:  "debug, info, warn or error",
		EnvVar: "LOG_LEVEL",
	},
	cli.BoolFlag{
		Name:  "log-json",
		Usage: "log JSON lines instead of console output",
	},
	cli.StringFlag{
		Name:  "metrics-addr",
		Usage: "serve Prometheus metrics on this address, e.g. :9090",
	},
}

func optionsFromContext(c *cli.Context) deployer.Options {
	opts := deployer.DefaultOptions()
	opts.Backoff = c.Duration("backoff")
	opts.InterArtifactDelay = c.Duration("delay")
	opts.PollingInterval = c.Duration("poll-interval")
	opts.MaxResyncs = c.Int("max-resyncs")
	opts.MaxPollAttempts = c.Int("max-poll-attempts")
	opts.RetryAllRejections = c.Bool("retry-all-rejections")
	opts.OutputDir = c.String("output-dir")
	opts.Resume = c.Bool("resume")
	opts.Extension = c.String("extension")
	return opts
}
