// Package callcodec builds zero-argument contract call payloads and decodes the fixed-width
// words returned by eth_call.
package callcodec

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// wordHexLen is the length of one 32-byte ABI word in hex characters.
const wordHexLen = 64

// Method is a zero-argument contract function identified by its 4-byte selector.
type Method struct {
	Signature string
	Selector  [4]byte
}

// NewMethod derives the selector of signature, e.g. "totalSupply()".
func NewMethod(signature string) Method {
	m := Method{Signature: signature}
	copy(m.Selector[:], crypto.Keccak256([]byte(signature))[:4])
	return m
}

// CallData returns the 0x-prefixed payload for an eth_call of the method.
func (m Method) CallData() string {
	return hexutil.Encode(m.Selector[:])
}

var (
	TotalSupply = NewMethod("totalSupply()")
	Token0      = NewMethod("token0()")
	Token1      = NewMethod("token1()")
	Decimals    = NewMethod("decimals()")
	GetReserves = NewMethod("getReserves()")
	Owner       = NewMethod("owner()")
	Factory     = NewMethod("factory()")
)

// word returns the index-th 32-byte word of a hex payload.
func word(payload string, index int) ([]byte, bool) {
	data := strings.TrimPrefix(strings.TrimSpace(payload), "0x")
	start := index * wordHexLen
	end := start + wordHexLen
	if len(data) < end {
		return nil, false
	}
	b, err := hex.DecodeString(data[start:end])
	if err != nil {
		return nil, false
	}
	return b, true
}

// DecodeAddress reads the low 20 bytes of the first word. The zero address is unavailable.
func DecodeAddress(payload string) Result[common.Address] {
	w, ok := word(payload, 0)
	if !ok {
		return None[common.Address]()
	}
	addr := common.BytesToAddress(w[12:])
	if addr == (common.Address{}) {
		return None[common.Address]()
	}
	return Some(addr)
}

// DecodeUint reads the first word as an unsigned integer.
func DecodeUint(payload string) Result[*big.Int] {
	w, ok := word(payload, 0)
	if !ok {
		return None[*big.Int]()
	}
	return Some(new(big.Int).SetBytes(w))
}

// Reserves are the first two words of a getReserves() answer.
type Reserves struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// DecodeReserves reads reserve0 and reserve1 from a getReserves() payload.
func DecodeReserves(payload string) Result[Reserves] {
	w0, ok := word(payload, 0)
	if !ok {
		return None[Reserves]()
	}
	w1, ok := word(payload, 1)
	if !ok {
		return None[Reserves]()
	}
	return Some(Reserves{
		Reserve0: new(big.Int).SetBytes(w0),
		Reserve1: new(big.Int).SetBytes(w1),
	})
}

// EncodeUint renders v as a single 0x-prefixed ABI word. Used to build fake node answers.
func EncodeUint(v *big.Int) string {
	return hexutil.Encode(common.LeftPadBytes(v.Bytes(), 32))
}

// EncodeAddress renders addr as a single 0x-prefixed ABI word.
func EncodeAddress(addr common.Address) string {
	return hexutil.Encode(common.LeftPadBytes(addr.Bytes(), 32))
}
