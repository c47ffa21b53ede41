// Package sequencer tracks the account sequence a deploying account signs
// with.
package sequencer

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/pylon-protocol/deployer/encoding"
)

// AccountFetcher queries the authoritative account state.
type AccountFetcher interface {
	AccountInfo(ctx context.Context, address string) (*encoding.AccountInfo, error)
}

// Sequencer holds the next sequence number of one account. It has a single
// owner and is not safe for concurrent use.
type Sequencer struct {
	fetcher AccountFetcher
	address string
	log     zerolog.Logger

	accountNumber uint64
	sequence      uint64
	fetched       bool
}

func New(fetcher AccountFetcher, address string, log zerolog.Logger) *Sequencer {
	return &Sequencer{
		fetcher: fetcher,
		address: address,
		log:     log,
	}
}

// Fetch replaces the local state with the account state reported by the
// network and returns the sequence.
func (s *Sequencer) Fetch(ctx context.Context) (uint64, error) {
	info, err := s.fetcher.AccountInfo(ctx, s.address)
	if err != nil {
		return 0, errors.Wrap(err, "fetching account sequence")
	}
	s.log.Debug().
		Uint64("previous", s.sequence).
		Uint64("sequence", info.Sequence).
		Uint64("account_number", info.AccountNumber).
		Msg("Fetched account sequence")
	s.accountNumber = info.AccountNumber
	s.sequence = info.Sequence
	s.fetched = true
	return s.sequence, nil
}

// Next returns the current sequence and advances it by one.
func (s *Sequencer) Next() uint64 {
	seq := s.sequence
	s.sequence++
	return seq
}

// Current returns the sequence Next would return.
func (s *Sequencer) Current() uint64 {
	return s.sequence
}

func (s *Sequencer) AccountNumber() uint64 {
	return s.accountNumber
}

// Fetched reports whether the state was loaded from the network at least once.
func (s *Sequencer) Fetched() bool {
	return s.fetched
}

func (s *Sequencer) Address() string {
	return s.address
}
