package rpcclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type rpcCall struct {
	Method string
	Params json.RawMessage
}

// fakeNode is a scripted JSON-RPC endpoint. Handlers return either a result
// or an *RPCError.
type fakeNode struct {
	mu       sync.Mutex
	calls    []rpcCall
	handlers map[string]func(params json.RawMessage) (interface{}, *RPCError)
}

func newFakeNode(t *testing.T) (*fakeNode, *httptest.Server) {
	t.Helper()
	n := &fakeNode{handlers: make(map[string]func(json.RawMessage) (interface{}, *RPCError))}
	srv := httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(srv.Close)
	return n, srv
}

func (n *fakeNode) handle(method string, fn func(params json.RawMessage) (interface{}, *RPCError)) {
	n.handlers[method] = fn
}

func (n *fakeNode) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
		ID     uint64          `json:"id"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, rpcCall{Method: req.Method, Params: req.Params})
	fn := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if fn == nil {
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
	} else if result, rpcErr := fn(req.Params); rpcErr != nil {
		resp["error"] = map[string]interface{}{"code": rpcErr.Code, "message": rpcErr.Message}
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (n *fakeNode) lastCall() rpcCall {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.calls) == 0 {
		return rpcCall{}
	}
	return n.calls[len(n.calls)-1]
}

func TestClient_CallResult(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("echo", func(params json.RawMessage) (interface{}, *RPCError) {
		var p []string
		_ = json.Unmarshal(params, &p)
		return p[0], nil
	})

	var got string
	if err := New(srv.URL).Call(context.Background(), "echo", []string{"hi"}, &got); err != nil {
		t.Fatalf("call: %v", err)
	}
	if got != "hi" {
		t.Errorf("result = %q, want %q", got, "hi")
	}
}

func TestClient_CallRPCError(t *testing.T) {
	_, srv := newFakeNode(t)

	err := New(srv.URL).Call(context.Background(), "missing", nil, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %v", err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("code = %d, want -32601", rpcErr.Code)
	}
}

func TestClient_CallContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(srv.URL).Call(ctx, "anything", nil, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestClient_CallNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway down", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := New(srv.URL).Call(context.Background(), "anything", nil, nil)
	if err == nil || err.Error() != "http status 502" {
		t.Fatalf("expected http status error, got %v", err)
	}
}

func TestClient_Observer(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("ping", func(json.RawMessage) (interface{}, *RPCError) { return "pong", nil })

	var methods []string
	c := New(srv.URL).WithObserver(func(method string, d time.Duration, err error) {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		methods = append(methods, method)
	})
	if err := c.Call(context.Background(), "ping", nil, nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if len(methods) != 1 || methods[0] != "ping" {
		t.Errorf("observed %v, want [ping]", methods)
	}
}

func TestProvider_GetBalance(t *testing.T) {
	tests := []struct {
		name   string
		result interface{}
		want   string
	}{
		{"hex", "0x5f5e100", "100000000"},
		{"decimal string", "12345", "12345"},
		{"number", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, srv := newFakeNode(t)
			node.handle("btc_getBalance", func(json.RawMessage) (interface{}, *RPCError) {
				return tt.result, nil
			})

			got, err := NewProvider(New(srv.URL)).GetBalance(context.Background(), "opt1qxyz")
			if err != nil {
				t.Fatalf("GetBalance: %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("balance = %s, want %s", got, tt.want)
			}
			if params := string(node.lastCall().Params); params != `["opt1qxyz",true]` {
				t.Errorf("params = %s", params)
			}
		})
	}
}

func TestProvider_GetPublicKeyInfo(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("btc_publicKeyInfo", func(params json.RawMessage) (interface{}, *RPCError) {
		var p [][]string
		_ = json.Unmarshal(params, &p)
		out := map[string]interface{}{}
		if p[0][0] == "opt1pknown" {
			out["opt1pknown"] = map[string]string{"mldsaHashedPublicKey": "ABCDEF"}
		}
		return out, nil
	})
	p := NewProvider(New(srv.URL))

	got, err := p.GetPublicKeyInfo(context.Background(), "opt1pknown")
	if err != nil {
		t.Fatalf("GetPublicKeyInfo: %v", err)
	}
	if got != "0xabcdef" {
		t.Errorf("resolved = %q, want 0xabcdef", got)
	}

	if _, err := p.GetPublicKeyInfo(context.Background(), "opt1punknown"); !errors.Is(err, ErrUnknownAddress) {
		t.Errorf("expected ErrUnknownAddress, got %v", err)
	}
}

func TestBridge_AccountDisconnected(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("wallet_getAccount", func(json.RawMessage) (interface{}, *RPCError) { return nil, nil })

	acct, err := NewBridge(New(srv.URL)).Account(context.Background())
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if acct != nil {
		t.Errorf("expected nil account, got %+v", acct)
	}
}

func TestBridge_Transfer(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("op20_simulateTransfer", func(json.RawMessage) (interface{}, *RPCError) {
		return map[string]string{"estimatedGas": "1000"}, nil
	})
	node.handle("op20_sendTransfer", func(json.RawMessage) (interface{}, *RPCError) {
		return map[string]string{"transactionId": "abc123"}, nil
	})
	b := NewBridge(New(srv.URL))
	call := TransferCall{Token: "0xtoken", From: "0xfrom", To: "0xto", Amount: big.NewInt(150000000)}

	sim, err := b.SimulateTransfer(context.Background(), call)
	if err != nil {
		t.Fatalf("SimulateTransfer: %v", err)
	}
	if sim.Revert != "" {
		t.Errorf("unexpected revert %q", sim.Revert)
	}

	receipt, err := b.SendTransfer(context.Background(), call, TxParams{RefundTo: "opt1pme", MaxSatToSpend: 100000, Network: "testnet"})
	if err != nil {
		t.Fatalf("SendTransfer: %v", err)
	}
	if receipt.TransactionID != "abc123" {
		t.Errorf("tx id = %q", receipt.TransactionID)
	}

	var params []json.RawMessage
	if err := json.Unmarshal(node.lastCall().Params, &params); err != nil || len(params) != 2 {
		t.Fatalf("params = %s", node.lastCall().Params)
	}
	var wire transferCallJSON
	_ = json.Unmarshal(params[0], &wire)
	if wire.Amount != "150000000" || wire.To != "0xto" {
		t.Errorf("wire call = %+v", wire)
	}
}

func TestBridge_TransferNegativeAmount(t *testing.T) {
	node, srv := newFakeNode(t)
	b := NewBridge(New(srv.URL))

	_, err := b.SimulateTransfer(context.Background(), TransferCall{Amount: big.NewInt(-1)})
	if err == nil {
		t.Fatal("expected error for negative amount")
	}
	if node.lastCall().Method != "" {
		t.Error("negative amount must not reach the bridge")
	}
}

func TestBridge_BalanceOf(t *testing.T) {
	node, srv := newFakeNode(t)
	node.handle("op20_balanceOf", func(json.RawMessage) (interface{}, *RPCError) { return "1000000000000000000000", nil })
	node.handle("op20_decimals", func(json.RawMessage) (interface{}, *RPCError) { return 18, nil })
	b := NewBridge(New(srv.URL))

	bal, err := b.BalanceOf(context.Background(), "0xtoken", "0xowner")
	if err != nil {
		t.Fatalf("BalanceOf: %v", err)
	}
	if bal.String() != "1000000000000000000000" {
		t.Errorf("balance = %s", bal)
	}
	d, err := b.Decimals(context.Background(), "0xtoken")
	if err != nil || d != 18 {
		t.Errorf("decimals = %d, %v", d, err)
	}
}
