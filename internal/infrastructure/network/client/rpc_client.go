package client

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"portfolio_valuator/internal/app/port"
	"portfolio_valuator/internal/domain/entity"
	"portfolio_valuator/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const metricsSource = "rpc"

// RPCClient implements port.ChainReader over a single HTTP JSON-RPC endpoint.
type RPCClient struct {
	rpcClient      *rpc.Client
	netDef         entity.NetworkDefinition
	limiter        *rate.Limiter
	rpcCallTimeout time.Duration
	logger         *zap.Logger
}

var _ port.ChainReader = (*RPCClient)(nil)

// NewRPCClient dials netDef.RPCURL. Dialing HTTP endpoints does not touch the network,
// so an error here means the URL itself is unusable.
func NewRPCClient(
	ctx context.Context,
	netDef entity.NetworkDefinition,
	rpcCallTimeout time.Duration,
	ratePerSecond float64,
	burst int,
	logger *zap.Logger,
) (*RPCClient, error) {
	httpClient := &http.Client{Timeout: rpcCallTimeout}
	c, err := rpc.DialOptions(ctx, netDef.RPCURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC %s for network %s: %w", netDef.RPCURL, netDef.Name, err)
	}

	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	return &RPCClient{
		rpcClient:      c,
		netDef:         netDef,
		limiter:        rate.NewLimiter(limit, burst),
		rpcCallTimeout: rpcCallTimeout,
		logger:         logger.Named("RPCClient"),
	}, nil
}

// Call performs eth_call(to, data) at "latest". Any failure yields "".
func (c *RPCClient) Call(ctx context.Context, to string, data string) string {
	if !common.IsHexAddress(to) {
		c.logger.Debug("Skipping eth_call to malformed address", zap.String("to", to))
		metrics.ObserveCall(metricsSource, "eth_call", metrics.OutcomeSkipped)
		return ""
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		c.logger.Warn("RPC rate limiter wait aborted", zap.String("to", to), zap.Error(err))
		metrics.ObserveCall(metricsSource, "eth_call", metrics.OutcomeError)
		return ""
	}

	callArgs := map[string]string{
		"to":   strings.ToLower(to),
		"data": data,
	}
	var result string
	if err := c.rpcClient.CallContext(callCtx, &result, "eth_call", callArgs, "latest"); err != nil {
		c.logger.Debug("eth_call failed",
			zap.String("network", c.netDef.Name),
			zap.String("to", to),
			zap.String("data", data),
			zap.Error(err))
		metrics.ObserveCall(metricsSource, "eth_call", metrics.OutcomeError)
		return ""
	}

	if result == "" || result == "0x" {
		metrics.ObserveCall(metricsSource, "eth_call", metrics.OutcomeEmpty)
		return ""
	}
	metrics.ObserveCall(metricsSource, "eth_call", metrics.OutcomeOK)
	return result
}

// NativeBalance performs eth_getBalance(address, "latest"). Any failure yields zero.
func (c *RPCClient) NativeBalance(ctx context.Context, address string) *big.Int {
	if !common.IsHexAddress(address) {
		metrics.ObserveCall(metricsSource, "eth_getBalance", metrics.OutcomeSkipped)
		return new(big.Int)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.rpcCallTimeout)
	defer cancel()

	if err := c.limiter.Wait(callCtx); err != nil {
		c.logger.Warn("RPC rate limiter wait aborted", zap.String("address", address), zap.Error(err))
		metrics.ObserveCall(metricsSource, "eth_getBalance", metrics.OutcomeError)
		return new(big.Int)
	}

	var result hexutil.Big
	if err := c.rpcClient.CallContext(callCtx, &result, "eth_getBalance", common.HexToAddress(address), "latest"); err != nil {
		c.logger.Warn("eth_getBalance failed",
			zap.String("network", c.netDef.Name),
			zap.String("address", address),
			zap.Error(err))
		metrics.ObserveCall(metricsSource, "eth_getBalance", metrics.OutcomeError)
		return new(big.Int)
	}

	metrics.ObserveCall(metricsSource, "eth_getBalance", metrics.OutcomeOK)
	return (*big.Int)(&result)
}

// Close releases the underlying RPC connection.
func (c *RPCClient) Close() {
	c.rpcClient.Close()
}
