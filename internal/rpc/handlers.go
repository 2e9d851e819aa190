package rpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/0xpierson/tipjar/config"
	"github.com/0xpierson/tipjar/internal/rpcclient"
	"github.com/0xpierson/tipjar/internal/tipjar"
	"github.com/0xpierson/tipjar/pkg/amount"
	"github.com/0xpierson/tipjar/pkg/jar"
)

// TipService is the tip jar backend the server exposes.
type TipService interface {
	Network() config.NetworkParams
	Tokens() []tipjar.Token
	QuickAmounts() []string
	DefaultAsset() tipjar.Asset
	ResolveToken(asset tipjar.Asset, customAddress, customDecimals string) (tipjar.Token, error)
	Account(ctx context.Context) (*rpcclient.Account, error)
	NativeBalance(ctx context.Context) (*tipjar.Balance, error)
	TokenBalance(ctx context.Context, tok tipjar.Token) (*tipjar.Balance, error)
	Check(ctx context.Context, q tipjar.Quote) (*tipjar.CheckResult, error)
	JarInfo(address string) (*jar.Info, error)
	Send(ctx context.Context, req tipjar.TipRequest) (*tipjar.Receipt, error)
	LastSend() tipjar.SendState
}

// ── Amounts ─────────────────────────────────────────────────────────────

func (s *Server) handleAmountSanitize(req *Request) (interface{}, *Error) {
	var p SanitizeParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	return &ValueResult{Value: amount.SanitizeInput(p.Input)}, nil
}

func (s *Server) handleAmountParse(req *Request) (interface{}, *Error) {
	var p ParseParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if !amount.ValidDecimals(p.Decimals) {
		return nil, invalidDecimals(p.Decimals)
	}
	return &UnitsResult{Units: amount.ParseUnits(p.Value, p.Decimals).String()}, nil
}

func (s *Server) handleAmountFormat(req *Request) (interface{}, *Error) {
	var p FormatParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if !amount.ValidDecimals(p.Decimals) {
		return nil, invalidDecimals(p.Decimals)
	}
	units, ok := new(big.Int).SetString(strings.TrimSpace(p.Units), 0)
	if !ok {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid units %q", p.Units)}
	}

	display := amount.DefaultDisplayDecimals
	switch {
	case p.Full:
		display = p.Decimals
	case p.DisplayDecimals != nil:
		display = *p.DisplayDecimals
	}
	return &ValueResult{Value: amount.FormatUnits(units, p.Decimals, display)}, nil
}

func invalidDecimals(d int) *Error {
	return &Error{
		Code:    CodeInvalidParams,
		Message: fmt.Sprintf("decimals must be between 0 and %d, got %d", amount.MaxDecimals, d),
	}
}

// ── Jar ─────────────────────────────────────────────────────────────────

func (s *Server) handleJarGetInfo(req *Request) (interface{}, *Error) {
	var p AddressParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	info, err := s.svc.JarInfo(p.Address)
	if err != nil {
		if errors.Is(err, jar.ErrBadOrigin) {
			return nil, &Error{Code: CodeNotFound, Message: "jar links are not configured"}
		}
		return nil, serviceError(err)
	}
	return info, nil
}

// ── Wallet ──────────────────────────────────────────────────────────────

func (s *Server) handleWalletGetInfo(ctx context.Context, _ *Request) (interface{}, *Error) {
	res := &WalletInfoResult{Network: string(s.svc.Network().Name)}

	acct, err := s.svc.Account(ctx)
	if errors.Is(err, tipjar.ErrNotConnected) {
		return res, nil
	}
	if err != nil {
		return nil, serviceError(err)
	}
	res.Connected = true
	res.Address = acct.Address
	res.Short = jar.ShortAddress(acct.Address, jar.DefaultShortChars)
	res.WalletType = acct.WalletType

	bal, err := s.svc.NativeBalance(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("BTC balance unavailable")
		return res, nil
	}
	res.BTC = NewBalanceResult(bal)
	return res, nil
}

// ── Tips ────────────────────────────────────────────────────────────────

func (s *Server) handleTipTokens(_ *Request) (interface{}, *Error) {
	return &TokensResult{
		Network:      string(s.svc.Network().Name),
		DefaultAsset: string(s.svc.DefaultAsset()),
		QuickAmounts: s.svc.QuickAmounts(),
		Tokens:       s.svc.Tokens(),
	}, nil
}

func (s *Server) handleTipGetBalance(ctx context.Context, req *Request) (interface{}, *Error) {
	var p AssetParam
	if err := parseOptionalParams(req, &p); err != nil {
		return nil, err
	}
	tok, err := s.svc.ResolveToken(tipjar.Asset(p.Asset), p.CustomAddress, p.CustomDecimals)
	if err != nil {
		return nil, serviceError(err)
	}
	bal, err := s.svc.TokenBalance(ctx, tok)
	if err != nil {
		return nil, serviceError(err)
	}
	return NewBalanceResult(bal), nil
}

func (s *Server) handleTipCheck(ctx context.Context, req *Request) (interface{}, *Error) {
	var p CheckParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	res, err := s.svc.Check(ctx, tipjar.Quote{
		Asset:          tipjar.Asset(p.Asset),
		CustomAddress:  p.CustomAddress,
		CustomDecimals: p.CustomDecimals,
		Amount:         p.Amount,
	})
	if err != nil {
		return nil, serviceError(err)
	}
	return NewCheckResult(res), nil
}

func (s *Server) handleTipSend(ctx context.Context, req *Request) (interface{}, *Error) {
	var p SendParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	rc, err := s.svc.Send(ctx, tipjar.TipRequest{
		Asset:          tipjar.Asset(p.Asset),
		CustomAddress:  p.CustomAddress,
		CustomDecimals: p.CustomDecimals,
		Recipient:      p.Recipient,
		Amount:         p.Amount,
		Note:           p.Note,
	})
	if err != nil {
		return nil, serviceError(err)
	}
	return NewReceiptResult(rc), nil
}

func (s *Server) handleTipStatus(_ *Request) (interface{}, *Error) {
	return NewSendStatusResult(s.svc.LastSend(), s.svc.Network()), nil
}

// serviceError converts a service error into a JSON-RPC error carrying the
// user-facing message and a machine-readable reason.
func serviceError(err error) *Error {
	reason := tipjar.Reason(err)
	code := CodeRejected
	switch reason {
	case "not_connected":
		code = CodeNotConnected
	case "busy":
		code = CodeBusy
	case "revert":
		code = CodeReverted
	case "upstream":
		code = CodeUpstream
	}
	return &Error{Code: code, Message: tipjar.UserMessage(err), Data: reason}
}
