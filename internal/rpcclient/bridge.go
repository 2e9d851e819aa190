package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/0xpierson/tipjar/pkg/amount"
)

// Bridge talks to the wallet bridge: the process that holds the wallet
// connection and binds OP20 contracts. Signing happens there.
type Bridge struct {
	c *Client
}

// NewBridge wraps c as a wallet bridge client.
func NewBridge(c *Client) *Bridge {
	return &Bridge{c: c}
}

// Account is the connected wallet as reported by the bridge.
type Account struct {
	Address        string `json:"address"`
	PublicKey      string `json:"publicKey,omitempty"`
	HashedMLDSAKey string `json:"hashedMLDSAKey,omitempty"`
	WalletType     string `json:"walletType,omitempty"`
	Network        string `json:"network,omitempty"`
}

// HasKeys reports whether the account carries the key material needed to
// derive its OPNet address.
func (a *Account) HasKeys() bool {
	return a != nil && a.PublicKey != "" && a.HashedMLDSAKey != ""
}

// TransferCall describes an OP20 transfer.
type TransferCall struct {
	Token  string   // contract address
	From   string   // sender OPNet address
	To     string   // resolved recipient OPNet address
	Amount *big.Int // smallest units
}

type transferCallJSON struct {
	Token  string `json:"token"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

func (t TransferCall) wire() (transferCallJSON, error) {
	q, err := amount.QuantityString(t.Amount)
	if err != nil {
		return transferCallJSON{}, fmt.Errorf("transfer amount: %w", err)
	}
	return transferCallJSON{Token: t.Token, From: t.From, To: t.To, Amount: q}, nil
}

// TxParams are the broadcast parameters handed to the bridge.
type TxParams struct {
	RefundTo      string `json:"refundTo"`
	MaxSatToSpend uint64 `json:"maximumAllowedSatToSpend"`
	FeeRate       uint64 `json:"feeRate"`
	Network       string `json:"network"`
	Note          string `json:"note,omitempty"`
}

// Simulation is the outcome of a dry-run transfer.
type Simulation struct {
	Revert       string `json:"revert,omitempty"`
	EstimatedGas string `json:"estimatedGas,omitempty"`
}

// TransferReceipt is the outcome of a broadcast transfer.
type TransferReceipt struct {
	TransactionID string `json:"transactionId"`
	Revert        string `json:"revert,omitempty"`
}

// Account returns the connected wallet, or nil when no wallet is connected.
func (b *Bridge) Account(ctx context.Context) (*Account, error) {
	var acct *Account
	if err := b.c.Call(ctx, "wallet_getAccount", nil, &acct); err != nil {
		return nil, err
	}
	return acct, nil
}

// Decimals reads the token's precision from its contract.
func (b *Bridge) Decimals(ctx context.Context, token string) (int, error) {
	var d int
	if err := b.c.Call(ctx, "op20_decimals", []interface{}{token}, &d); err != nil {
		return 0, err
	}
	return d, nil
}

// BalanceOf reads owner's token balance in smallest units.
func (b *Bridge) BalanceOf(ctx context.Context, token, owner string) (*big.Int, error) {
	var raw json.RawMessage
	if err := b.c.Call(ctx, "op20_balanceOf", []interface{}{token, owner}, &raw); err != nil {
		return nil, err
	}
	v, err := decodeQuantity(raw)
	if err != nil {
		return nil, fmt.Errorf("token balance: %w", err)
	}
	return v, nil
}

// SimulateTransfer dry-runs a transfer against current chain state.
func (b *Bridge) SimulateTransfer(ctx context.Context, call TransferCall) (*Simulation, error) {
	w, err := call.wire()
	if err != nil {
		return nil, err
	}
	var sim Simulation
	if err := b.c.Call(ctx, "op20_simulateTransfer", []interface{}{w}, &sim); err != nil {
		return nil, err
	}
	return &sim, nil
}

// SendTransfer signs and broadcasts a transfer.
func (b *Bridge) SendTransfer(ctx context.Context, call TransferCall, params TxParams) (*TransferReceipt, error) {
	w, err := call.wire()
	if err != nil {
		return nil, err
	}
	var receipt TransferReceipt
	if err := b.c.Call(ctx, "op20_sendTransfer", []interface{}{w, params}, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}
