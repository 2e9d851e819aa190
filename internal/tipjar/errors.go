package tipjar

import (
	"errors"
	"fmt"

	"github.com/0xpierson/tipjar/config"
)

// Validation errors returned by Send, in the order they are checked.
var (
	ErrNotConnected        = errors.New("wallet not connected")
	ErrNoRecipient         = errors.New("recipient is empty")
	ErrNoAmount            = errors.New("amount is empty")
	ErrUnknownAsset        = errors.New("unknown asset")
	ErrNoTokenAddress      = errors.New("token address not configured")
	ErrInvalidDecimals     = errors.New("invalid token decimals")
	ErrZeroAmount          = errors.New("amount must be greater than zero")
	ErrExceedsBalance      = errors.New("amount exceeds balance")
	ErrAmountTooLarge      = errors.New("amount does not fit in 256 bits")
	ErrNoteTooLong         = errors.New("note too long")
	ErrNoPublicKey         = errors.New("wallet public key unavailable")
	ErrInvalidRecipient    = errors.New("recipient address invalid")
	ErrUnresolvedRecipient = errors.New("recipient address unresolved")
	ErrInvalidToken        = errors.New("invalid token configuration")
	ErrBusy                = errors.New("a tip is already being sent")
)

// RecipientError reports a recipient that failed validation or resolution on
// a given network.
type RecipientError struct {
	Address string
	Network config.NetworkParams
	Kind    error // ErrInvalidRecipient or ErrUnresolvedRecipient
	Err     error
}

func (e *RecipientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v %q: %v", e.Kind, e.Address, e.Err)
	}
	return fmt.Sprintf("%v %q", e.Kind, e.Address)
}

func (e *RecipientError) Is(target error) bool { return target == e.Kind }

func (e *RecipientError) Unwrap() error { return e.Err }

// RevertError is a transfer rejected by the contract.
type RevertError struct {
	Simulated bool
	Reason    string
}

func (e *RevertError) Error() string {
	if e.Simulated {
		return "Transfer would fail: " + e.Reason
	}
	return "Transaction reverted: " + e.Reason
}

// UserMessage renders err as the sentence shown to the person sending a tip.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rec *RecipientError
	if errors.As(err, &rec) {
		net := rec.Network.Name
		if rec.Kind == ErrUnresolvedRecipient {
			return fmt.Sprintf("Could not resolve the tip jar address to an OPNet Address. "+
				"Make sure this address exists on OPNet %s and has on-chain activity, then try again.", net)
		}
		return fmt.Sprintf("Tip jar address is not valid on OPNet %s. "+
			"Please use a valid %s1... address created on OPNet %s.", net, rec.Network.HRP, net)
	}
	var rev *RevertError
	if errors.As(err, &rev) {
		return rev.Error()
	}

	switch {
	case errors.Is(err, ErrNotConnected):
		return "Connect your wallet first."
	case errors.Is(err, ErrNoRecipient):
		return "Enter the tip jar address."
	case errors.Is(err, ErrNoAmount):
		return "Enter an amount to tip."
	case errors.Is(err, ErrNoTokenAddress):
		return "Token address is not configured. Please set it in environment/config."
	case errors.Is(err, ErrInvalidDecimals):
		return "Invalid token decimals configuration."
	case errors.Is(err, ErrZeroAmount):
		return "Token amount must be greater than 0."
	case errors.Is(err, ErrExceedsBalance):
		return "Token amount exceeds available balance."
	case errors.Is(err, ErrAmountTooLarge):
		return "Token amount is too large."
	case errors.Is(err, ErrNoteTooLong):
		return "Tip note is too long."
	case errors.Is(err, ErrNoPublicKey):
		return "Wallet public key information is not available. Please reconnect your wallet."
	case errors.Is(err, ErrBusy):
		return "A tip is already being sent."
	}
	return err.Error()
}
