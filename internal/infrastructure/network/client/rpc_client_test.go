package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"portfolio_valuator/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type rpcRequest struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// newFakeNode answers eth_call and eth_getBalance through handle; a non-nil error string
// is returned as a JSON-RPC error.
func newFakeNode(t *testing.T, handle func(req rpcRequest) (result string, rpcErr string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		result, rpcErr := handle(req)
		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		if rpcErr != "" {
			resp["error"] = map[string]any{"code": -32000, "message": rpcErr}
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, url string) *RPCClient {
	t.Helper()
	c, err := NewRPCClient(context.Background(), entity.NetworkDefinition{Name: "test", RPCURL: url}, 2*time.Second, 0, 1, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

const (
	testPool   = "0x00000000000000000000000000000000000000aa"
	testWallet = "0x00000000000000000000000000000000000000bb"
)

func TestCallReturnsRawResult(t *testing.T) {
	var seen rpcRequest
	srv := newFakeNode(t, func(req rpcRequest) (string, string) {
		seen = req
		return "0x00000000000000000000000000000000000000000000000000000000000003e8", ""
	})
	c := newTestClient(t, srv.URL)

	got := c.Call(context.Background(), testPool, "0x18160ddd")
	assert.Equal(t, "0x00000000000000000000000000000000000000000000000000000000000003e8", got)

	require.Equal(t, "eth_call", seen.Method)
	require.Len(t, seen.Params, 2)
	var call map[string]string
	require.NoError(t, json.Unmarshal(seen.Params[0], &call))
	assert.Equal(t, testPool, call["to"])
	assert.Equal(t, "0x18160ddd", call["data"])
	assert.JSONEq(t, `"latest"`, string(seen.Params[1]))
}

func TestCallDegradesToEmpty(t *testing.T) {
	t.Run("json-rpc error", func(t *testing.T) {
		srv := newFakeNode(t, func(rpcRequest) (string, string) { return "", "execution reverted" })
		assert.Equal(t, "", newTestClient(t, srv.URL).Call(context.Background(), testPool, "0x0dfe1681"))
	})

	t.Run("non-2xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)
		assert.Equal(t, "", newTestClient(t, srv.URL).Call(context.Background(), testPool, "0x0dfe1681"))
	})

	t.Run("garbage body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>oops</html>"))
		}))
		t.Cleanup(srv.Close)
		assert.Equal(t, "", newTestClient(t, srv.URL).Call(context.Background(), testPool, "0x0dfe1681"))
	})

	t.Run("empty 0x answer", func(t *testing.T) {
		srv := newFakeNode(t, func(rpcRequest) (string, string) { return "0x", "" })
		assert.Equal(t, "", newTestClient(t, srv.URL).Call(context.Background(), testPool, "0x0dfe1681"))
	})

	t.Run("malformed target is never sent", func(t *testing.T) {
		var hits atomic.Int32
		srv := newFakeNode(t, func(rpcRequest) (string, string) { hits.Add(1); return "0x01", "" })
		assert.Equal(t, "", newTestClient(t, srv.URL).Call(context.Background(), "not-an-address", "0x0dfe1681"))
		assert.Zero(t, hits.Load())
	})
}

func TestNativeBalance(t *testing.T) {
	srv := newFakeNode(t, func(req rpcRequest) (string, string) {
		if req.Method != "eth_getBalance" {
			return "", "unexpected method"
		}
		return "0x22b1c8c1227a0000", "" // 2.5 ether
	})
	c := newTestClient(t, srv.URL)

	got := c.NativeBalance(context.Background(), testWallet)
	assert.Equal(t, "2500000000000000000", got.String())
}

func TestNativeBalanceFailureIsZero(t *testing.T) {
	srv := newFakeNode(t, func(rpcRequest) (string, string) { return "", "header not found" })
	got := newTestClient(t, srv.URL).NativeBalance(context.Background(), testWallet)
	require.NotNil(t, got)
	assert.Zero(t, got.Sign())
}
