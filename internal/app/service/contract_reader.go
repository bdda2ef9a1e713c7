package service

import (
	"context"
	"math/big"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/pkg/callcodec"

	"github.com/ethereum/go-ethereum/common"
)

// ContractReader issues typed zero-argument reads against contracts.
// Unavailable answers surface as empty Results; call sites pick their own defaults.
type ContractReader struct {
	chain port.ChainReader
}

// NewContractReader creates a ContractReader over chain.
func NewContractReader(chain port.ChainReader) *ContractReader {
	return &ContractReader{chain: chain}
}

// Address calls m on contract and decodes an address answer.
func (r *ContractReader) Address(ctx context.Context, contract string, m callcodec.Method) callcodec.Result[common.Address] {
	return callcodec.DecodeAddress(r.chain.Call(ctx, contract, m.CallData()))
}

// Uint calls m on contract and decodes an unsigned integer answer.
func (r *ContractReader) Uint(ctx context.Context, contract string, m callcodec.Method) callcodec.Result[*big.Int] {
	return callcodec.DecodeUint(r.chain.Call(ctx, contract, m.CallData()))
}

// Reserves reads getReserves() of a constant-product pair.
func (r *ContractReader) Reserves(ctx context.Context, pair string) callcodec.Result[callcodec.Reserves] {
	return callcodec.DecodeReserves(r.chain.Call(ctx, pair, callcodec.GetReserves.CallData()))
}

// Decimals reads decimals() of token. Answers outside (minDecimals, maxDecimals] and
// failed reads fall back to def.
func (r *ContractReader) Decimals(ctx context.Context, token string, def, minDecimals, maxDecimals uint8) uint8 {
	n, ok := r.Uint(ctx, token, callcodec.Decimals).Get()
	if !ok || !n.IsUint64() {
		return def
	}
	v := n.Uint64()
	if v <= uint64(minDecimals) || v > uint64(maxDecimals) {
		return def
	}
	return uint8(v)
}
