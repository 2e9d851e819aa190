// Package tipjar sends OP20 tips from the connected wallet to a tip jar and
// reports the balances and amounts shown around the send form.
package tipjar

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/0xpierson/tipjar/config"
	"github.com/0xpierson/tipjar/internal/log"
	"github.com/0xpierson/tipjar/internal/rpcclient"
	"github.com/0xpierson/tipjar/pkg/amount"
	"github.com/0xpierson/tipjar/pkg/jar"
)

// NativeDecimals is the precision of BTC balances (satoshis).
const NativeDecimals = 8

// invalidAddressMarker is the provider's message for addresses it cannot parse.
const invalidAddressMarker = "No valid address content found"

// Provider is the OPNet node the service reads chain state from.
type Provider interface {
	GetBalance(ctx context.Context, address string) (*big.Int, error)
	GetPublicKeyInfo(ctx context.Context, address string) (string, error)
}

// Bridge is the wallet connection that reads OP20 contracts and signs
// transfers.
type Bridge interface {
	Account(ctx context.Context) (*rpcclient.Account, error)
	Decimals(ctx context.Context, token string) (int, error)
	BalanceOf(ctx context.Context, token, owner string) (*big.Int, error)
	SimulateTransfer(ctx context.Context, call rpcclient.TransferCall) (*rpcclient.Simulation, error)
	SendTransfer(ctx context.Context, call rpcclient.TransferCall, params rpcclient.TxParams) (*rpcclient.TransferReceipt, error)
}

// Balance is an amount held by the connected wallet.
type Balance struct {
	Symbol   string
	Decimals int
	Units    *big.Int
	Display  string
}

// Quote is the state of the send form to evaluate.
type Quote struct {
	Asset          Asset
	CustomAddress  string
	CustomDecimals string
	Amount         string
}

// CheckResult is what the send form shows for a Quote.
type CheckResult struct {
	Token          Token
	Amount         string // sanitized input
	Decimals       int
	DecimalsOK     bool
	Units          *big.Int
	Display        string
	Connected      bool
	Balance        *Balance // nil when unknown
	ExceedsBalance bool
	CanSubmit      bool
}

// TipRequest is a submitted send form.
type TipRequest struct {
	Asset          Asset
	CustomAddress  string
	CustomDecimals string
	Recipient      string
	Amount         string
	Note           string
}

// Receipt describes a broadcast tip.
type Receipt struct {
	TxID        string
	ExplorerURL string
	Token       Token
	Recipient   string
	Decimals    int
	Units       *big.Int
	Display     string
}

// Service orchestrates balance reads and tip sends.
type Service struct {
	provider Provider
	bridge   Bridge

	network config.NetworkParams
	tip     config.TipConfig
	tokens  []Token
	origin  string

	logger zerolog.Logger

	// form tracks the lifecycle of the current or most recent send. Only one
	// send runs at a time since the wallet spends from a single UTXO set.
	mu   sync.Mutex
	form *Form
}

// SendState is a snapshot of the most recent send.
type SendState struct {
	Status Status
	Token  Token
	Amount string // cleared once the tip is broadcast
	TxID   string
	Err    error
}

// NewService creates a service for cfg backed by provider and bridge.
func NewService(cfg *config.Config, provider Provider, bridge Bridge) *Service {
	return &Service{
		provider: provider,
		bridge:   bridge,
		network:  cfg.Params(),
		tip:      cfg.Tip,
		tokens:   append([]Token(nil), cfg.Tokens...),
		origin:   cfg.Server.PublicOrigin,
		logger:   log.TipJar,
		form:     NewForm(Token{}),
	}
}

// LastSend reports the state of the current or most recent send.
func (s *Service) LastSend() SendState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SendState{
		Status: s.form.Status(),
		Token:  s.form.Token(),
		Amount: s.form.Amount(),
		TxID:   s.form.TxID(),
		Err:    s.form.Err(),
	}
}

// beginSend moves the send form to sending for tok and raw. It fails with
// ErrBusy while another send is in flight.
func (s *Service) beginSend(tok Token, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.SetToken(tok)
	s.form.SetAmount(raw)
	return s.form.Begin()
}

// endSend records the outcome of a send started with beginSend.
func (s *Service) endSend(txID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.form.Fail(err)
		return
	}
	s.form.Succeed(txID)
}

// Network returns the parameters of the network tips are sent on.
func (s *Service) Network() config.NetworkParams { return s.network }

// Tokens returns the configured tokens.
func (s *Service) Tokens() []Token { return append([]Token(nil), s.tokens...) }

// QuickAmounts returns the preset amounts offered on the form.
func (s *Service) QuickAmounts() []string { return append([]string(nil), s.tip.QuickAmounts...) }

// DefaultAsset returns the asset preselected on the form.
func (s *Service) DefaultAsset() Asset { return Asset(s.tip.DefaultAsset) }

// ResolveToken resolves an asset against the configured tokens.
func (s *Service) ResolveToken(asset Asset, customAddress, customDecimals string) (Token, error) {
	return ResolveToken(s.tokens, ParseAsset(string(asset), s.DefaultAsset()), customAddress, customDecimals)
}

// Account returns the connected wallet.
func (s *Service) Account(ctx context.Context) (*rpcclient.Account, error) {
	acct, err := s.bridge.Account(ctx)
	if err != nil {
		return nil, fmt.Errorf("wallet account: %w", err)
	}
	if acct == nil || acct.Address == "" {
		return nil, ErrNotConnected
	}
	return acct, nil
}

// NativeBalance returns the BTC balance of the connected wallet.
func (s *Service) NativeBalance(ctx context.Context) (*Balance, error) {
	acct, err := s.Account(ctx)
	if err != nil {
		return nil, err
	}
	units, err := s.provider.GetBalance(ctx, acct.Address)
	if err != nil {
		return nil, fmt.Errorf("btc balance: %w", err)
	}
	return &Balance{
		Symbol:   "BTC",
		Decimals: NativeDecimals,
		Units:    units,
		Display:  amount.FormatFull(units, NativeDecimals),
	}, nil
}

// TokenBalance returns the connected wallet's balance of tok. Decimals are
// always read from the contract.
func (s *Service) TokenBalance(ctx context.Context, tok Token) (*Balance, error) {
	acct, err := s.Account(ctx)
	if err != nil {
		return nil, err
	}
	return s.tokenBalance(ctx, acct, tok)
}

func (s *Service) tokenBalance(ctx context.Context, acct *rpcclient.Account, tok Token) (*Balance, error) {
	if !acct.HasKeys() {
		return nil, ErrNoPublicKey
	}
	if tok.Address == "" || !amount.ValidDecimals(tok.Decimals) {
		return nil, ErrInvalidToken
	}

	decimals, err := s.bridge.Decimals(ctx, tok.Address)
	if err != nil {
		return nil, fmt.Errorf("token decimals: %w", err)
	}
	units, err := s.bridge.BalanceOf(ctx, tok.Address, acct.HashedMLDSAKey)
	if err != nil {
		return nil, fmt.Errorf("token balance: %w", err)
	}

	display := decimals
	if !amount.ValidDecimals(display) {
		display = tok.Decimals
	}
	return &Balance{
		Symbol:   tok.Symbol,
		Decimals: decimals,
		Units:    units,
		Display:  amount.FormatUnits(units, display, s.tip.DisplayDecimals),
	}, nil
}

// loadForm builds a form for tok with the wallet's balance filled in when it
// can be read. Read failures leave the balance unknown.
func (s *Service) loadForm(ctx context.Context, acct *rpcclient.Account, tok Token, rawAmount string) (*Form, *Balance) {
	form := NewForm(tok)
	form.SetAmount(rawAmount)
	if acct == nil {
		return form, nil
	}
	bal, err := s.tokenBalance(ctx, acct, tok)
	if err != nil {
		s.logger.Debug().Err(err).Str("token", tok.ID).Msg("token balance unavailable")
		return form, nil
	}
	form.SetBalance(bal.Units, bal.Decimals)
	return form, bal
}

// Check evaluates q the way the send form does on every keystroke.
func (s *Service) Check(ctx context.Context, q Quote) (*CheckResult, error) {
	tok, err := s.ResolveToken(q.Asset, q.CustomAddress, q.CustomDecimals)
	if err != nil {
		return nil, err
	}

	acct, err := s.Account(ctx)
	if err != nil && !errors.Is(err, ErrNotConnected) {
		return nil, err
	}

	form, bal := s.loadForm(ctx, acct, tok, q.Amount)
	decimals, ok := form.Decimals()
	units := form.ParsedUnits()

	res := &CheckResult{
		Token:          tok,
		Amount:         form.Amount(),
		Decimals:       decimals,
		DecimalsOK:     ok,
		Units:          units,
		Connected:      acct != nil,
		Balance:        bal,
		ExceedsBalance: form.ExceedsBalance(),
		CanSubmit:      acct != nil && form.CanSubmit(),
	}
	if ok {
		res.Display = amount.FormatUnits(units, decimals, s.tip.DisplayDecimals)
	}
	return res, nil
}

// JarInfo returns the shareable link and QR code for a receiving address.
func (s *Service) JarInfo(address string) (*jar.Info, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoRecipient
	}
	if err := jar.ValidateRecipient(address, s.network.HRP); err != nil {
		return nil, &RecipientError{Address: address, Network: s.network, Kind: ErrInvalidRecipient, Err: err}
	}
	return jar.NewInfo(s.origin, address)
}

// Send validates req and broadcasts the transfer. Checks run in a fixed order
// and the first failure is returned. A second Send while one is in flight
// fails with ErrBusy.
func (s *Service) Send(ctx context.Context, req TipRequest) (receipt *Receipt, err error) {
	defer func() {
		if err != nil {
			TipsFailedTotal.WithLabelValues(Reason(err)).Inc()
			s.logger.Warn().Err(err).Str("recipient", req.Recipient).Msg("tip not sent")
		}
	}()

	acct, err := s.Account(ctx)
	if err != nil {
		return nil, err
	}
	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return nil, ErrNoRecipient
	}
	if strings.TrimSpace(amount.SanitizeInput(req.Amount)) == "" {
		return nil, ErrNoAmount
	}

	tok, err := s.ResolveToken(req.Asset, req.CustomAddress, req.CustomDecimals)
	if err != nil {
		return nil, err
	}
	if err := s.beginSend(tok, req.Amount); err != nil {
		return nil, err
	}
	defer func() {
		txID := ""
		if receipt != nil {
			txID = receipt.TxID
		}
		s.endSend(txID, err)
	}()

	form, _ := s.loadForm(ctx, acct, tok, req.Amount)

	if tok.Address == "" {
		return nil, ErrNoTokenAddress
	}
	decimals, ok := form.Decimals()
	if !ok {
		return nil, ErrInvalidDecimals
	}
	units := form.Units(decimals)
	if units.Sign() <= 0 {
		return nil, ErrZeroAmount
	}
	if form.ExceedsBalance() {
		return nil, ErrExceedsBalance
	}
	if _, err := amount.ToUint256(units); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAmountTooLarge, err)
	}
	if s.tip.MaxNoteBytes > 0 && len(req.Note) > s.tip.MaxNoteBytes {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrNoteTooLong, len(req.Note), s.tip.MaxNoteBytes)
	}
	if !acct.HasKeys() {
		return nil, ErrNoPublicKey
	}

	to, err := s.resolveRecipient(ctx, recipient)
	if err != nil {
		return nil, err
	}

	call := rpcclient.TransferCall{
		Token:  tok.Address,
		From:   acct.HashedMLDSAKey,
		To:     to,
		Amount: units,
	}
	sim, err := s.bridge.SimulateTransfer(ctx, call)
	if err != nil {
		return nil, fmt.Errorf("simulate transfer: %w", err)
	}
	if sim.Revert != "" {
		return nil, &RevertError{Simulated: true, Reason: sim.Revert}
	}

	rc, err := s.bridge.SendTransfer(ctx, call, rpcclient.TxParams{
		RefundTo:      acct.Address,
		MaxSatToSpend: s.tip.MaxSatToSpend,
		FeeRate:       s.tip.FeeRate,
		Network:       string(s.network.Name),
		Note:          req.Note,
	})
	if err != nil {
		return nil, fmt.Errorf("send transfer: %w", err)
	}
	if rc.Revert != "" {
		return nil, &RevertError{Reason: rc.Revert}
	}
	receipt = &Receipt{
		TxID:      rc.TransactionID,
		Token:     tok,
		Recipient: recipient,
		Decimals:  decimals,
		Units:     units,
		Display:   amount.FormatUnits(units, decimals, s.tip.DisplayDecimals),
	}
	if rc.TransactionID != "" {
		receipt.ExplorerURL = s.network.ExplorerTxURL(rc.TransactionID)
	}

	TipsSentTotal.WithLabelValues(tok.ID).Inc()
	s.logger.Info().
		Str("tx", receipt.TxID).
		Str("token", tok.Symbol).
		Str("amount", receipt.Display).
		Str("recipient", jar.ShortAddress(recipient, jar.DefaultShortChars)).
		Msg("tip sent")

	return receipt, nil
}

// resolveRecipient checks addr locally and resolves it to an OPNet address.
func (s *Service) resolveRecipient(ctx context.Context, addr string) (string, error) {
	invalid := func(err error) error {
		return &RecipientError{Address: addr, Network: s.network, Kind: ErrInvalidRecipient, Err: err}
	}
	unresolved := func(err error) error {
		return &RecipientError{Address: addr, Network: s.network, Kind: ErrUnresolvedRecipient, Err: err}
	}

	if err := jar.ValidateRecipient(addr, s.network.HRP); err != nil {
		return "", invalid(err)
	}

	resolved, err := s.provider.GetPublicKeyInfo(ctx, addr)
	if err != nil {
		if errors.Is(err, rpcclient.ErrUnknownAddress) {
			return "", unresolved(nil)
		}
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) && strings.Contains(rpcErr.Message, invalidAddressMarker) {
			return "", invalid(nil)
		}
		return "", fmt.Errorf("resolve recipient: %w", err)
	}
	if resolved == "" {
		return "", unresolved(nil)
	}
	return resolved, nil
}
