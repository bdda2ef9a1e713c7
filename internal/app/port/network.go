package port

import (
	"context"
	"math/big"
)

// ChainReader issues single JSON-RPC reads against the configured node.
// Implementations never return errors: failures surface as the zero value and a log line.
type ChainReader interface {
	// Call performs eth_call with the given 0x-prefixed payload at the latest block and
	// returns the raw hex answer, or "" on any failure.
	Call(ctx context.Context, to string, data string) string

	// NativeBalance returns the wei balance of address, or zero on any failure.
	NativeBalance(ctx context.Context, address string) *big.Int
}
