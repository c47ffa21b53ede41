package backend

import (
	"context"

	"github.com/pylon-protocol/deployer/encoding"
)

// Transactor interacts with the blockchain and is able to submit signed
// transactions to it.
type Transactor interface {
	// Broadcast submits the given transaction. A rejection by the node is not
	// an error: it is reported through the result's code and raw log.
	Broadcast(ctx context.Context, tx encoding.StdTx, mode encoding.BroadcastMode) (*encoding.BroadcastResult, error)
}
