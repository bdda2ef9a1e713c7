package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/entity"
	"portfolio_valuator/internal/infrastructure/httpclient"
	"portfolio_valuator/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	subaccountNameLen = 12
	x18Exponent       = -18
	// unweightedHealthIndex selects assets minus liabilities without risk weights.
	unweightedHealthIndex = 2
)

// ErrSubaccountNotFound is returned when the engine has no record of the subaccount.
var ErrSubaccountNotFound = errors.New("margin subaccount does not exist")

// marginClientImpl queries the engine of a Vertex-style margin-trading protocol.
type marginClientImpl struct {
	http           *httpclient.Client
	baseURL        string
	subaccountName string
	logger         *zap.Logger
}

// NewMarginClient creates a port.MarginEquitySource against the engine at baseURL.
func NewMarginClient(baseURL, subaccountName string, timeout time.Duration, logger *zap.Logger) port.MarginEquitySource {
	return &marginClientImpl{
		http:           httpclient.New("portfolio-valuator/margin", timeout),
		baseURL:        strings.TrimRight(baseURL, "/"),
		subaccountName: subaccountName,
		logger:         logger.Named("MarginClient"),
	}
}

// SubaccountID derives the bytes32 subaccount identifier: the 20 address bytes followed
// by the subaccount name, right-padded with zero bytes to 12 bytes.
func SubaccountID(walletAddress, name string) (string, error) {
	if !common.IsHexAddress(walletAddress) {
		return "", fmt.Errorf("invalid wallet address %q", walletAddress)
	}
	if len(name) > subaccountNameLen {
		return "", fmt.Errorf("subaccount name %q longer than %d bytes", name, subaccountNameLen)
	}
	id := make([]byte, 0, 32)
	id = append(id, common.HexToAddress(walletAddress).Bytes()...)
	nameBytes := make([]byte, subaccountNameLen)
	copy(nameBytes, name)
	id = append(id, nameBytes...)
	return hexutil.Encode(id), nil
}

// FromX18 converts an x18 fixed-point integer string to a decimal.
func FromX18(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid x18 value %q: %w", raw, err)
	}
	return d.Shift(x18Exponent), nil
}

// WalletEquityUSD returns the unweighted health (assets minus liabilities) of the
// wallet's subaccount in USD.
func (c *marginClientImpl) WalletEquityUSD(ctx context.Context, walletAddress string) (float64, error) {
	subaccount, err := SubaccountID(walletAddress, c.subaccountName)
	if err != nil {
		return 0, err
	}

	body, err := json.Marshal(entity.MarginQueryRequest{Type: "subaccount_info", Subaccount: subaccount})
	if err != nil {
		return 0, fmt.Errorf("failed to encode margin query: %w", err)
	}

	requestURL := c.baseURL + "/query"
	rawBody, err := c.http.PostJSON(ctx, requestURL, body)
	if err != nil {
		metrics.ObserveCall("margin", "subaccount_info", metrics.OutcomeError)
		return 0, err
	}

	var resp entity.MarginQueryResponse
	if err := json.Unmarshal(rawBody, &resp); err != nil {
		metrics.ObserveCall("margin", "subaccount_info", metrics.OutcomeError)
		return 0, fmt.Errorf("failed to unmarshal margin response from %s: %w", requestURL, err)
	}
	if resp.Status != "success" {
		metrics.ObserveCall("margin", "subaccount_info", metrics.OutcomeError)
		return 0, fmt.Errorf("margin query for %s failed: status=%q error=%q", subaccount, resp.Status, resp.Error)
	}
	if !resp.Data.Exists || len(resp.Data.Healths) == 0 {
		metrics.ObserveCall("margin", "subaccount_info", metrics.OutcomeEmpty)
		return 0, ErrSubaccountNotFound
	}

	idx := unweightedHealthIndex
	if idx >= len(resp.Data.Healths) {
		idx = len(resp.Data.Healths) - 1
	}
	equity, err := FromX18(resp.Data.Healths[idx].Health)
	if err != nil {
		metrics.ObserveCall("margin", "subaccount_info", metrics.OutcomeError)
		return 0, err
	}

	metrics.ObserveCall("margin", "subaccount_info", metrics.OutcomeOK)
	c.logger.Debug("Margin equity resolved",
		zap.String("wallet", walletAddress),
		zap.String("subaccount", subaccount),
		zap.String("equityUsd", equity.StringFixed(2)))
	return equity.InexactFloat64(), nil
}
