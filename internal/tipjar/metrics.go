package tipjar

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// TipsSentTotal counts broadcast tips by token.
	TipsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipjar",
			Name:      "tips_sent_total",
			Help:      "Total tips broadcast by token.",
		},
		[]string{"token"},
	)

	// TipsFailedTotal counts rejected or failed tips by reason.
	TipsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipjar",
			Name:      "tips_failed_total",
			Help:      "Total tips that failed validation or broadcast, by reason.",
		},
		[]string{"reason"},
	)

	// RPCDuration observes upstream JSON-RPC latency by endpoint and method.
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tipjar",
			Name:      "rpc_duration_seconds",
			Help:      "Upstream JSON-RPC call duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	// RPCErrorsTotal counts failed upstream calls by endpoint and method.
	RPCErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tipjar",
			Name:      "rpc_errors_total",
			Help:      "Total failed upstream JSON-RPC calls.",
		},
		[]string{"endpoint", "method"},
	)

	// WalletConnected is 1 while the bridge reports a connected wallet.
	WalletConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tipjar",
			Name:      "wallet_connected",
			Help:      "Whether a wallet is connected to the bridge.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		TipsSentTotal,
		TipsFailedTotal,
		RPCDuration,
		RPCErrorsTotal,
		WalletConnected,
	)
}

// ObserveRPC returns an rpcclient observer that records latency and errors
// for calls to endpoint ("provider" or "bridge").
func ObserveRPC(endpoint string) func(method string, d time.Duration, err error) {
	return func(method string, d time.Duration, err error) {
		RPCDuration.WithLabelValues(endpoint, method).Observe(d.Seconds())
		if err != nil {
			RPCErrorsTotal.WithLabelValues(endpoint, method).Inc()
		}
	}
}

// Reason maps a Send error to a short, low-cardinality label used in metrics
// and RPC error data.
func Reason(err error) string {
	for _, r := range []struct {
		err    error
		reason string
	}{
		{ErrNotConnected, "not_connected"},
		{ErrNoRecipient, "no_recipient"},
		{ErrNoAmount, "no_amount"},
		{ErrUnknownAsset, "unknown_asset"},
		{ErrNoTokenAddress, "no_token_address"},
		{ErrInvalidDecimals, "invalid_decimals"},
		{ErrZeroAmount, "zero_amount"},
		{ErrExceedsBalance, "exceeds_balance"},
		{ErrAmountTooLarge, "amount_too_large"},
		{ErrNoteTooLong, "note_too_long"},
		{ErrNoPublicKey, "no_public_key"},
		{ErrInvalidRecipient, "invalid_recipient"},
		{ErrUnresolvedRecipient, "unresolved_recipient"},
		{ErrInvalidToken, "invalid_token"},
		{ErrBusy, "busy"},
	} {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	var rev *RevertError
	if errors.As(err, &rev) {
		return "revert"
	}
	return "upstream"
}
