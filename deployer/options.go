package deployer

import (
	"time"

	"github.com/pylon-protocol/deployer/artifact"
	"github.com/pylon-protocol/deployer/transaction"
)

const (
	DefaultInterArtifactDelay = 3 * time.Second
	DefaultOutputDir          = ".."
)

// Options tune the batch run.
type Options struct {
	// Backoff is the wait before refetching the sequence after a rejection.
	Backoff time.Duration
	// InterArtifactDelay is the pause between two artifacts of a batch.
	InterArtifactDelay time.Duration
	// PollingInterval is the wait between two confirmation queries.
	PollingInterval time.Duration
	// MaxResyncs and MaxPollAttempts bound the retry loops; zero is unbounded.
	MaxResyncs      int
	MaxPollAttempts int
	// RetryAllRejections resyncs on every rejection, not only on sequence and
	// mempool ones.
	RetryAllRejections bool
	// OutputDir is where the ledger file of a batch is written.
	OutputDir string
	// Resume loads an existing ledger and skips the artifacts it holds.
	Resume bool
	// Extension selects the artifact files of a directory.
	Extension string
}

func DefaultOptions() Options {
	return Options{
		Backoff:            transaction.DefaultBackoff,
		InterArtifactDelay: DefaultInterArtifactDelay,
		PollingInterval:    transaction.DefaultPollingInterval,
		MaxResyncs:         transaction.DefaultMaxResyncs,
		MaxPollAttempts:    transaction.DefaultMaxPollAttempts,
		OutputDir:          DefaultOutputDir,
		Extension:          artifact.DefaultExtension,
	}
}
