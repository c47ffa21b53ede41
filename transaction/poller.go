package transaction

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/metrics"
)

const (
	DefaultPollingInterval = time.Second
	DefaultMaxPollAttempts = 120
)

// TxQuerier looks up settled transactions.
type TxQuerier interface {
	TxInfo(ctx context.Context, hash string) (*encoding.TxInfo, error)
}

// Poller waits for accepted transactions to show up on chain.
type Poller struct {
	querier TxQuerier
	// PollingInterval is the wait between two failed queries.
	PollingInterval time.Duration
	// MaxAttempts bounds the number of queries. Zero means unbounded.
	MaxAttempts int
	log         zerolog.Logger
	metrics     *metrics.Collector
}

func NewPoller(querier TxQuerier, log zerolog.Logger, m *metrics.Collector) *Poller {
	return &Poller{
		querier:         querier,
		PollingInterval: DefaultPollingInterval,
		MaxAttempts:     DefaultMaxPollAttempts,
		log:             log,
		metrics:         m,
	}
}

// Await queries the transaction until the node returns it. Every query
// failure counts as "not yet" and is retried after the polling interval.
func (p *Poller) Await(ctx context.Context, hash string) (*encoding.TxInfo, error) {
	start := time.Now()
	for attempts := 1; ; attempts++ {
		info, err := p.querier.TxInfo(ctx, hash)
		p.metrics.RecordPollAttempt()
		if err == nil {
			p.metrics.RecordConfirmationLatency(time.Since(start))
			p.log.Debug().Str("tx_hash", hash).Str("height", info.Height).Int("attempts", attempts).Msg("Transaction confirmed")
			return info, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		p.log.Warn().Err(err).Str("tx_hash", hash).Int("attempt", attempts).Msg("Transaction not yet available")

		if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
			return nil, errors.Wrapf(ErrConfirmationTimeout, "%s after %d queries: %v", hash, attempts, err)
		}
		if err := Sleep(ctx, p.PollingInterval); err != nil {
			return nil, err
		}
	}
}
