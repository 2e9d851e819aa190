package tipjar

import (
	"math/big"
	"strings"

	"github.com/0xpierson/tipjar/pkg/amount"
)

// Status is the lifecycle of a send form.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Form holds the state of one send form between keystrokes. A Form is not
// safe for concurrent use.
type Form struct {
	token  Token
	amount string

	// Decimals reported by the token contract; -1 until known.
	onChainDecimals int
	// Balance in smallest units; nil until known.
	balance *big.Int

	status Status
	txID   string
	err    error
}

// NewForm returns an idle form for tok.
func NewForm(tok Token) *Form {
	return &Form{
		token:           tok,
		onChainDecimals: -1,
		status:          StatusIdle,
	}
}

// Token returns the selected token.
func (f *Form) Token() Token { return f.token }

// SetToken switches the selected token and forgets what was read for the
// previous one. The typed amount is kept.
func (f *Form) SetToken(tok Token) bool {
	if f.status == StatusSending {
		return false
	}
	f.token = tok
	f.ClearBalance()
	return true
}

// SetAmount stores the sanitized form of raw. Input is ignored while a tip is
// being sent.
func (f *Form) SetAmount(raw string) bool {
	if f.status == StatusSending {
		return false
	}
	f.amount = amount.SanitizeInput(raw)
	return true
}

// SetQuickAmount stores one of the preset amounts as typed.
func (f *Form) SetQuickAmount(v string) bool {
	if f.status == StatusSending {
		return false
	}
	f.amount = v
	return true
}

// Amount returns the amount as currently shown in the input.
func (f *Form) Amount() string { return f.amount }

// SetBalance records the token balance and on-chain decimals.
func (f *Form) SetBalance(units *big.Int, decimals int) {
	f.balance = units
	f.onChainDecimals = decimals
}

// ClearBalance forgets the balance and on-chain decimals.
func (f *Form) ClearBalance() {
	f.balance = nil
	f.onChainDecimals = -1
}

// Balance returns the known balance, or nil.
func (f *Form) Balance() *big.Int { return f.balance }

// Decimals returns the precision used for the amount: the on-chain value when
// known, else the configured one. ok is false when that precision is unusable.
func (f *Form) Decimals() (int, bool) {
	d := f.token.Decimals
	if f.onChainDecimals >= 0 {
		d = f.onChainDecimals
	}
	return d, amount.ValidDecimals(d)
}

// Units parses the amount at the given precision.
func (f *Form) Units(decimals int) *big.Int {
	if strings.TrimSpace(f.amount) == "" {
		return new(big.Int)
	}
	return amount.ParseUnits(f.amount, decimals)
}

// ParsedUnits parses the amount at the form's precision, or returns zero when
// that precision is unusable.
func (f *Form) ParsedUnits() *big.Int {
	d, ok := f.Decimals()
	if !ok {
		return new(big.Int)
	}
	return f.Units(d)
}

// ExceedsBalance reports whether the amount is known to exceed the balance.
func (f *Form) ExceedsBalance() bool {
	if f.balance == nil {
		return false
	}
	if _, ok := f.Decimals(); !ok {
		return false
	}
	return f.ParsedUnits().Cmp(f.balance) > 0
}

// CanSubmit reports whether the send button is enabled.
func (f *Form) CanSubmit() bool {
	if f.status == StatusSending || strings.TrimSpace(f.amount) == "" {
		return false
	}
	return !f.ExceedsBalance()
}

// Begin moves the form to sending. It fails with ErrBusy if a send is
// already in flight.
func (f *Form) Begin() error {
	if f.status == StatusSending {
		return ErrBusy
	}
	f.status = StatusSending
	f.txID = ""
	f.err = nil
	return nil
}

// Succeed records a broadcast tip and clears the amount.
func (f *Form) Succeed(txID string) {
	f.status = StatusDone
	f.txID = txID
	f.err = nil
	f.amount = ""
}

// Fail records a failed send. The amount is kept so it can be corrected.
func (f *Form) Fail(err error) {
	f.status = StatusError
	f.err = err
}

// Status returns the current lifecycle state.
func (f *Form) Status() Status { return f.status }

// TxID returns the last broadcast transaction ID.
func (f *Form) TxID() string { return f.txID }

// Err returns the last send error.
func (f *Form) Err() error { return f.err }
