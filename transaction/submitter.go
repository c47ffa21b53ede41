package transaction

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pylon-protocol/deployer/artifact"
	"github.com/pylon-protocol/deployer/backend"
	"github.com/pylon-protocol/deployer/encoding"
	"github.com/pylon-protocol/deployer/metrics"
	"github.com/pylon-protocol/deployer/sequencer"
)

const (
	DefaultBackoff    = time.Second
	DefaultMaxResyncs = 10
)

// State is the phase a submission is in.
type State int

const (
	StateBuilding State = iota
	StateResyncing
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateResyncing:
		return "resyncing"
	case StateSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Outcome is the node's verdict on one broadcast.
type Outcome int

const (
	Accepted Outcome = iota
	Rejected
)

func (o Outcome) String() string {
	if o == Accepted {
		return "accepted"
	}
	return "rejected"
}

// Attempt is one broadcast of an artifact at a sequence.
type Attempt struct {
	Artifact *artifact.Artifact
	Sequence uint64
	Tx       encoding.StdTx
	Result   *encoding.BroadcastResult
	Outcome  Outcome
	// Resyncs counts the sequence refetches that preceded this attempt.
	Resyncs int
}

func (a *Attempt) TxHash() string {
	return a.Result.TxHash
}

type SubmitterConfig struct {
	Mode encoding.BroadcastMode
	// Backoff is the wait between a rejection and the sequence refetch.
	Backoff time.Duration
	// MaxResyncs bounds the refetches per artifact. Zero means unbounded.
	MaxResyncs int
	// RetryAllRejections resyncs and retries on any rejection instead of
	// only on the retryable classes.
	RetryAllRejections bool
}

func DefaultSubmitterConfig() SubmitterConfig {
	return SubmitterConfig{
		Mode:       encoding.BroadcastBlock,
		Backoff:    DefaultBackoff,
		MaxResyncs: DefaultMaxResyncs,
	}
}

// Submitter gets a store-code transaction accepted by the node, resyncing the
// account sequence when the node rejects it.
type Submitter struct {
	builder    *Builder
	transactor backend.Transactor
	cfg        SubmitterConfig
	log        zerolog.Logger
	metrics    *metrics.Collector
}

func NewSubmitter(builder *Builder, transactor backend.Transactor, cfg SubmitterConfig, log zerolog.Logger, m *metrics.Collector) *Submitter {
	if cfg.Mode == "" {
		cfg.Mode = encoding.BroadcastBlock
	}
	return &Submitter{
		builder:    builder,
		transactor: transactor,
		cfg:        cfg,
		log:        log,
		metrics:    m,
	}
}

// Broadcast builds, signs and broadcasts a single transaction. A rejection is
// reported through the attempt's outcome; only transport and signing
// failures are errors.
func (s *Submitter) Broadcast(ctx context.Context, a *artifact.Artifact, accountNumber, sequence uint64) (*Attempt, error) {
	tx, err := s.builder.Build(ctx, a, accountNumber, sequence)
	if err != nil {
		return nil, errors.Wrapf(err, "building tx for %s", a.Name)
	}
	result, err := s.transactor.Broadcast(ctx, tx, s.cfg.Mode)
	if err != nil {
		return nil, errors.Wrapf(err, "broadcasting %s", a.Name)
	}
	s.metrics.RecordBroadcast()

	outcome := Accepted
	if result.IsError() {
		outcome = Rejected
	}
	return &Attempt{
		Artifact: a,
		Sequence: sequence,
		Tx:       tx,
		Result:   result,
		Outcome:  outcome,
	}, nil
}

// Submit runs the submission state machine for one artifact. Every build
// consumes a sequence number from seq, whatever the outcome. After a
// retryable rejection, or a fee estimation refusing a stale sequence, it
// waits the backoff, refetches the sequence and builds again.
func (s *Submitter) Submit(ctx context.Context, a *artifact.Artifact, seq *sequencer.Sequencer) (*Attempt, error) {
	log := s.log.With().Str("artifact", a.Name).Logger()
	resyncs := 0
	state := StateBuilding

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sequence := seq.Next()
		log.Debug().Stringer("state", state).Uint64("sequence", sequence).Msg("Building transaction")

		attempt, err := s.Broadcast(ctx, a, seq.AccountNumber(), sequence)
		var reason string
		switch {
		case err != nil:
			var estimate *EstimateError
			if !errors.As(err, &estimate) || estimate.Class != RejectionSequence {
				return nil, err
			}
			s.metrics.RecordRejection(estimate.Class.String())
			log.Warn().Err(estimate.Err).Uint64("sequence", sequence).Msg("Fee estimation refused the sequence")
			reason = estimate.Err.Error()

		case attempt.Outcome == Accepted:
			attempt.Resyncs = resyncs
			log.Info().
				Stringer("state", StateSubmitted).
				Str("tx_hash", attempt.TxHash()).
				Uint64("sequence", sequence).
				Msg("Transaction accepted")
			return attempt, nil

		default:
			rejection := newRejectionError(attempt.Result)
			s.metrics.RecordRejection(rejection.Class.String())
			log.Warn().
				Uint32("code", rejection.Code).
				Str("codespace", rejection.Codespace).
				Stringer("class", rejection.Class).
				Uint64("sequence", sequence).
				Msg(rejection.RawLog)

			if !rejection.Class.Retryable() && !s.cfg.RetryAllRejections {
				return nil, rejection
			}
			reason = rejection.RawLog
		}

		if s.cfg.MaxResyncs > 0 && resyncs >= s.cfg.MaxResyncs {
			return nil, errors.Wrapf(ErrResyncLimit, "%s after %d resyncs: %s", a.Name, resyncs, reason)
		}

		resyncs++
		state = StateResyncing
		s.metrics.RecordResync()
		log.Info().Stringer("state", state).Int("resync", resyncs).Dur("backoff", s.cfg.Backoff).Msg("Resyncing account sequence")
		if err := Sleep(ctx, s.cfg.Backoff); err != nil {
			return nil, err
		}
		if _, err := seq.Fetch(ctx); err != nil {
			return nil, err
		}
		state = StateBuilding
	}
}
