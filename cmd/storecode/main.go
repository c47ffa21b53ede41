package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/client"
	"github.com/pylon-protocol/deployer/deployer"
	"github.com/pylon-protocol/deployer/logging"
	"github.com/pylon-protocol/deployer/metrics"
	"github.com/pylon-protocol/deployer/oracle"
	"github.com/pylon-protocol/deployer/wallet"
	"github.com/pylon-protocol/deployer/wallet/external"
)

func main() {
	app := cli.NewApp()
	app.Name = "storecode"
	app.Usage = "store wasm contracts on a Terra network and record their code ids"
	app.Version = "0.0.1"
	app.Flags = flags
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log := logging.NewComponentLogger("storecode")
		log.Error().Err(err).Msg("Deployment failed")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := logging.Setup(logging.Config{
		Level: c.String("log-level"),
		JSON:  c.Bool("log-json"),
	}); err != nil {
		return err
	}
	log := logging.NewComponentLogger("storecode")

	network, err := loadNetwork(c)
	if err != nil {
		return err
	}
	path := wallet.DefaultHDPath()
	path.Account = uint32(c.Uint("hd-account"))
	path.Index = uint32(c.Uint("hd-index"))
	signer, err := newSigner(network, c.String("signer-url"), path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector *metrics.Collector
	if addr := c.String("metrics-addr"); addr != "" {
		collector = metrics.NewCollector(logging.NewComponentLogger("metrics"))
		collector.Serve(ctx, addr)
	}

	lcd := client.NewDefaultClient(network)
	prices := oracle.New(network.GasPricesURL, network.Timeout)
	fee, err := deployer.ResolveFeeConfig(ctx, network, prices)
	if err != nil {
		return errors.Wrap(err, "resolving gas prices")
	}
	log.Info().Stringer("gas_prices", fee.GasPrices).Uint64("gas", fee.Gas).Msg("Fee configuration")

	d := deployer.New(network, lcd, signer, fee, optionsFromContext(c),
		logging.NewComponentLogger("deployer"), collector)
	if _, err := d.Status(ctx); err != nil {
		return err
	}

	switch {
	case c.String("directory") != "":
		l, err := d.DeployDirectory(ctx, c.String("directory"))
		if err != nil {
			if l != nil && l.Len() > 0 {
				log.Warn().Int("entries", l.Len()).Str("path", d.LedgerPath()).Msg("Partial ledger kept")
			}
			return err
		}
	case c.String("source") != "":
		res, err := d.DeploySource(ctx, c.String("source"))
		if err != nil {
			return err
		}
		fmt.Printf("=> sender: %s\n", res.Sender)
		fmt.Printf("=> codeId: %s\n", res.CodeID)
	default:
		return errors.New("nothing to deploy: pass --source or --directory")
	}
	return nil
}

// newSigner signs with the remote daemon at signerURL when given, with the
// network mnemonic otherwise.
func newSigner(network backend.Network, signerURL string, path wallet.HDPath) (*backend.LocalSigner, error) {
	if signerURL == "" {
		account, err := network.AccountAt(path)
		if err != nil {
			return nil, err
		}
		return backend.NewSigner(account), nil
	}
	remote := external.NewRemoteClient(signerURL, network.Timeout)
	account, err := external.NewWallet(remote, network.HRP).Unlock(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unlocking %s at %s", path, signerURL)
	}
	return backend.NewSigner(account), nil
}

func loadNetwork(c *cli.Context) (backend.Network, error) {
	networks := backend.DefaultNetworks()
	if path := c.String("config"); path != "" {
		loaded, err := backend.LoadNetworks(path)
		if err != nil {
			return backend.Network{}, err
		}
		networks = loaded
	}
	network, err := backend.Lookup(networks, c.String("network"))
	if err != nil {
		return backend.Network{}, err
	}
	if prices := c.String("gas-prices"); prices != "" {
		network.GasPrices = prices
	}
	if c.IsSet("gas") {
		network.Gas = c.Uint64("gas")
	}
	return network, network.Validate()
}
