package rpc

import (
	"math/big"

	"github.com/0xpierson/tipjar/config"
	"github.com/0xpierson/tipjar/internal/tipjar"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000

	// Tip jar codes.
	CodeNotConnected = -32001 // no wallet connected to the bridge
	CodeRejected     = -32002 // tip failed validation
	CodeReverted     = -32003 // contract rejected the transfer
	CodeUpstream     = -32004 // provider or bridge unavailable
	CodeBusy         = -32005 // another tip is being sent
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// SanitizeParam is used by amount_sanitize.
type SanitizeParam struct {
	Input string `json:"input"`
}

// ParseParam is used by amount_parse.
type ParseParam struct {
	Value    string `json:"value"`
	Decimals int    `json:"decimals"`
}

// FormatParam is used by amount_format. Units is a base-10 or 0x integer.
// DisplayDecimals defaults to 3; Full shows every significant digit.
type FormatParam struct {
	Units           string `json:"units"`
	Decimals        int    `json:"decimals"`
	DisplayDecimals *int   `json:"display_decimals,omitempty"`
	Full            bool   `json:"full,omitempty"`
}

// AddressParam is used by jar_getInfo.
type AddressParam struct {
	Address string `json:"address"`
}

// AssetParam selects a token. CustomAddress and CustomDecimals apply when
// Asset is CUSTOM.
type AssetParam struct {
	Asset          string `json:"asset,omitempty"`
	CustomAddress  string `json:"custom_address,omitempty"`
	CustomDecimals string `json:"custom_decimals,omitempty"`
}

// CheckParam is used by tip_check.
type CheckParam struct {
	AssetParam
	Amount string `json:"amount"`
}

// SendParam is used by tip_send.
type SendParam struct {
	AssetParam
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Note      string `json:"note,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// ValueResult is returned by amount_sanitize and amount_format.
type ValueResult struct {
	Value string `json:"value"`
}

// UnitsResult is returned by amount_parse.
type UnitsResult struct {
	Units string `json:"units"`
}

// BalanceResult is a wallet balance. Units is a base-10 integer string.
type BalanceResult struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Units    string `json:"units"`
	Display  string `json:"display"`
}

// NewBalanceResult converts a service balance for the wire.
func NewBalanceResult(b *tipjar.Balance) *BalanceResult {
	if b == nil {
		return nil
	}
	return &BalanceResult{
		Symbol:   b.Symbol,
		Decimals: b.Decimals,
		Units:    unitsString(b.Units),
		Display:  b.Display,
	}
}

// WalletInfoResult is returned by wallet_getInfo.
type WalletInfoResult struct {
	Connected  bool           `json:"connected"`
	Network    string         `json:"network"`
	Address    string         `json:"address,omitempty"`
	Short      string         `json:"short,omitempty"`
	WalletType string         `json:"wallet_type,omitempty"`
	BTC        *BalanceResult `json:"btc,omitempty"`
}

// TokensResult is returned by tip_tokens.
type TokensResult struct {
	Network      string         `json:"network"`
	DefaultAsset string         `json:"default_asset"`
	QuickAmounts []string       `json:"quick_amounts"`
	Tokens       []tipjar.Token `json:"tokens"`
}

// CheckResult is returned by tip_check.
type CheckResult struct {
	Token          tipjar.Token   `json:"token"`
	Amount         string         `json:"amount"`
	Decimals       int            `json:"decimals"`
	DecimalsValid  bool           `json:"decimals_valid"`
	Units          string         `json:"units"`
	Display        string         `json:"display"`
	Connected      bool           `json:"connected"`
	Balance        *BalanceResult `json:"balance,omitempty"`
	ExceedsBalance bool           `json:"exceeds_balance"`
	CanSubmit      bool           `json:"can_submit"`
}

// NewCheckResult converts a service check for the wire.
func NewCheckResult(c *tipjar.CheckResult) *CheckResult {
	return &CheckResult{
		Token:          c.Token,
		Amount:         c.Amount,
		Decimals:       c.Decimals,
		DecimalsValid:  c.DecimalsOK,
		Units:          unitsString(c.Units),
		Display:        c.Display,
		Connected:      c.Connected,
		Balance:        NewBalanceResult(c.Balance),
		ExceedsBalance: c.ExceedsBalance,
		CanSubmit:      c.CanSubmit,
	}
}

// ReceiptResult is returned by tip_send.
type ReceiptResult struct {
	TxID        string `json:"tx_id"`
	ExplorerURL string `json:"explorer_url,omitempty"`
	Token       string `json:"token"`
	Recipient   string `json:"recipient"`
	Units       string `json:"units"`
	Display     string `json:"display"`
}

// NewReceiptResult converts a service receipt for the wire.
func NewReceiptResult(r *tipjar.Receipt) *ReceiptResult {
	return &ReceiptResult{
		TxID:        r.TxID,
		ExplorerURL: r.ExplorerURL,
		Token:       r.Token.Symbol,
		Recipient:   r.Recipient,
		Units:       unitsString(r.Units),
		Display:     r.Display,
	}
}

// SendStatusResult is returned by tip_status.
type SendStatusResult struct {
	Status      string `json:"status"`
	Token       string `json:"token,omitempty"`
	Amount      string `json:"amount,omitempty"`
	TxID        string `json:"tx_id,omitempty"`
	ExplorerURL string `json:"explorer_url,omitempty"`
	Error       string `json:"error,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// NewSendStatusResult converts the last send state for the wire.
func NewSendStatusResult(st tipjar.SendState, network config.NetworkParams) *SendStatusResult {
	res := &SendStatusResult{
		Status: string(st.Status),
		Token:  st.Token.Symbol,
		Amount: st.Amount,
		TxID:   st.TxID,
	}
	if st.TxID != "" {
		res.ExplorerURL = network.ExplorerTxURL(st.TxID)
	}
	if st.Err != nil {
		res.Error = tipjar.UserMessage(st.Err)
		res.Reason = tipjar.Reason(st.Err)
	}
	return res
}

func unitsString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
