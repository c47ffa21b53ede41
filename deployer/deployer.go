// Package deployer stores artifacts on chain one after another and records
// the code ids they receive.
package deployer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pylon-protocol/deployer/artifact"
	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/client"
	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/ledger"
	"github.com/pylon-protocol/deployer/metrics"
	"github.com/pylon-protocol/deployer/sequencer"
	"github.com/pylon-protocol/deployer/transaction"
)

// PriceSource quotes gas prices.
type PriceSource interface {
	Fetch(ctx context.Context, denoms []string) (encoding.DecCoins, error)
}

// Deployer runs the store-code pipeline for one account on one network.
type Deployer struct {
	network   backend.Network
	client    client.NetworkClient
	signer    backend.Signer
	submitter *transaction.Submitter
	poller    *transaction.Poller
	opts      Options
	log       zerolog.Logger
	metrics   *metrics.Collector
}

func New(
	network backend.Network,
	c client.NetworkClient,
	signer backend.Signer,
	fee transaction.FeeConfig,
	opts Options,
	log zerolog.Logger,
	m *metrics.Collector,
) *Deployer {
	if opts.Extension == "" {
		opts.Extension = artifact.DefaultExtension
	}
	builder := transaction.NewBuilder(signer, c, network.ChainID, fee)
	submitter := transaction.NewSubmitter(builder, c, transaction.SubmitterConfig{
		Mode:               network.BroadcastMode,
		Backoff:            opts.Backoff,
		MaxResyncs:         opts.MaxResyncs,
		RetryAllRejections: opts.RetryAllRejections,
	}, log.With().Str("stage", "submit").Logger(), m)

	poller := transaction.NewPoller(c, log.With().Str("stage", "poll").Logger(), m)
	poller.PollingInterval = opts.PollingInterval
	poller.MaxAttempts = opts.MaxPollAttempts

	return &Deployer{
		network:   network,
		client:    c,
		signer:    signer,
		submitter: submitter,
		poller:    poller,
		opts:      opts,
		log:       log,
		metrics:   m,
	}
}

// ResolveFeeConfig returns the pricing for a network. Configured gas prices
// win over the price source.
func ResolveFeeConfig(ctx context.Context, network backend.Network, prices PriceSource) (transaction.FeeConfig, error) {
	fee := transaction.FeeConfig{
		Gas:           network.Gas,
		GasAdjustment: network.GasAdjustment,
	}
	if network.GasPrices != "" {
		parsed, err := encoding.ParseDecCoins(network.GasPrices)
		if err != nil {
			return fee, err
		}
		fee.GasPrices = parsed
		return fee, nil
	}
	if prices == nil {
		return fee, errors.New("no gas prices configured and no price source")
	}
	quoted, err := prices.Fetch(ctx, network.FeeDenoms)
	if err != nil {
		return fee, err
	}
	fee.GasPrices = quoted
	return fee, nil
}

// Status is the account the deployer signs with.
type Status struct {
	Address string
	Balance encoding.Coins
}

// Status logs the network configuration and reports the deploying account
// and its balance.
func (d *Deployer) Status(ctx context.Context) (*Status, error) {
	addr := d.signer.Address().String()
	d.log.Info().
		Str("network", d.network.Name).
		Str("url", d.network.URL).
		Str("chain_id", d.network.ChainID).
		Float64("gas_adjustment", d.network.GasAdjustment).
		Str("broadcast_mode", string(d.network.BroadcastMode)).
		Msg("Network")

	balance, err := d.client.Balance(ctx, addr)
	if err != nil {
		return nil, errors.Wrap(err, "querying balance")
	}
	d.log.Info().Str("address", addr).Stringer("balance", balance).Msg("Account")
	return &Status{Address: addr, Balance: balance}, nil
}

// LedgerPath is where DeployDirectory writes its ledger.
func (d *Deployer) LedgerPath() string {
	return ledger.Path(d.opts.OutputDir, d.network.Name)
}

// DeploySource stores a single artifact. No ledger is written.
func (d *Deployer) DeploySource(ctx context.Context, path string) (*transaction.StoreCodeResult, error) {
	a, err := artifact.FromFile(path)
	if err != nil {
		return nil, err
	}
	seq := sequencer.New(d.client, d.signer.Address().String(), d.log)
	if _, err := seq.Fetch(ctx); err != nil {
		return nil, err
	}
	return d.deploy(ctx, a, seq)
}

// DeployDirectory stores every artifact of dir in listing order. The ledger
// file is rewritten after each stored artifact, so an aborted batch keeps
// what it already stored. The returned ledger is valid also when an error is
// returned.
func (d *Deployer) DeployDirectory(ctx context.Context, dir string) (*ledger.Ledger, error) {
	it, err := artifact.NewIterator(dir, d.opts.Extension)
	if err != nil {
		return nil, err
	}

	path := d.LedgerPath()
	l := ledger.New()
	if d.opts.Resume {
		if l, err = ledger.Load(path); err != nil {
			return nil, err
		}
		d.log.Info().Str("path", path).Int("entries", l.Len()).Msg("Resuming from ledger")
	}

	seq := sequencer.New(d.client, d.signer.Address().String(), d.log)
	if _, err := seq.Fetch(ctx); err != nil {
		return l, err
	}

	for it.HasNext() {
		if name, _ := it.Peek(); l.Has(name) {
			d.log.Info().Str("artifact", name).Msg("Already stored, skipping")
			d.metrics.RecordArtifactSkipped()
			it.Skip()
			continue
		}

		a, err := it.Next()
		if err != nil {
			return l, err
		}
		d.log.Info().Str("artifact", a.Name).Str("path", a.Path).Int("size", len(a.Code)).Msg("Reading artifact")

		res, err := d.deploy(ctx, a, seq)
		if err != nil {
			return l, errors.Wrapf(err, "deploying %s", a.Name)
		}
		if err := l.Set(a.Name, res.CodeID); err != nil {
			return l, err
		}
		if err := l.Save(path); err != nil {
			return l, err
		}
		d.metrics.RecordArtifactStored()

		if it.HasNext() {
			if err := transaction.Sleep(ctx, d.opts.InterArtifactDelay); err != nil {
				return l, err
			}
		}
	}

	if err := l.Save(path); err != nil {
		return l, err
	}
	d.log.Info().Str("path", path).Int("entries", l.Len()).Msg("Wrote ledger")
	return l, nil
}

func (d *Deployer) deploy(ctx context.Context, a *artifact.Artifact, seq *sequencer.Sequencer) (*transaction.StoreCodeResult, error) {
	attempt, err := d.submitter.Submit(ctx, a, seq)
	if err != nil {
		return nil, err
	}
	d.log.Info().Str("artifact", a.Name).Str("tx_hash", attempt.TxHash()).Msg("Broadcast")

	info, err := d.poller.Await(ctx, attempt.TxHash())
	if err != nil {
		return nil, err
	}
	res, err := transaction.ExtractCodeID(info)
	if err != nil {
		if errors.Is(err, transaction.ErrMissingStoreCodeEvent) {
			d.log.Debug().Interface("logs", info.Logs).Str("tx_hash", info.TxHash).Msg("Transaction logs")
		}
		return nil, err
	}
	d.log.Info().
		Str("artifact", a.Name).
		Str("sender", res.Sender).
		Str("code_id", res.CodeID).
		Msg("Stored code")
	return res, nil
}
