// Package node wires the tip jar daemon together: logging, the upstream
// provider and wallet bridge clients, the tip service and its RPC server.
package node

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/0xpierson/tipjar/config"
	klog "github.com/0xpierson/tipjar/internal/log"
	"github.com/0xpierson/tipjar/internal/rpc"
	"github.com/0xpierson/tipjar/internal/rpcclient"
	"github.com/0xpierson/tipjar/internal/tipjar"
)

// DefaultWalletPoll is how often the connected wallet is checked.
const DefaultWalletPoll = 15 * time.Second

// Node is a fully-initialized tip jar daemon.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	provider *rpcclient.Provider
	bridge   *rpcclient.Bridge
	svc      *tipjar.Service

	rpcServer *rpc.Server

	walletPoll time.Duration

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new Node. It sets up logging, the upstream
// clients, the service and the RPC server but does not start serving or
// polling. Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := expandHome(cfg.Log.File)
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "tipjar.log")
	}
	if err := klog.Init(cfg.Log.Level, cfg.Log.JSON, logFile); err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	params := cfg.Params()
	logger.Info().
		Str("network", string(params.Name)).
		Str("provider", cfg.Provider.URL).
		Str("bridge", cfg.Bridge.URL).
		Str("asset", cfg.Tip.DefaultAsset).
		Msg("Starting tip jar")

	// ── 2. Upstream clients ─────────────────────────────────────────
	providerClient := rpcclient.NewWithTimeout(cfg.Provider.URL, cfg.Provider.Timeout).
		WithLogger(klog.Provider).
		WithObserver(tipjar.ObserveRPC("provider"))
	bridgeClient := rpcclient.NewWithTimeout(cfg.Bridge.URL, cfg.Bridge.Timeout).
		WithLogger(klog.Bridge).
		WithObserver(tipjar.ObserveRPC("bridge"))

	n := &Node{
		cfg:        cfg,
		logger:     logger,
		provider:   rpcclient.NewProvider(providerClient),
		bridge:     rpcclient.NewBridge(bridgeClient),
		walletPoll: DefaultWalletPoll,
	}

	// ── 3. Service ──────────────────────────────────────────────────
	n.svc = tipjar.NewService(cfg, n.provider, n.bridge)

	// ── 4. RPC server ───────────────────────────────────────────────
	if cfg.Server.Enabled {
		addr := net.JoinHostPort(cfg.Server.Addr, strconv.Itoa(cfg.Server.Port))
		n.rpcServer = rpc.New(addr, n.svc, cfg.Server)
	}

	n.ctx, n.cancel = context.WithCancel(context.Background())
	return n, nil
}

// Service returns the tip service.
func (n *Node) Service() *tipjar.Service {
	return n.svc
}

// Start binds the RPC server and launches the wallet poller.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return err
		}
		n.logger.Info().
			Str("addr", n.rpcServer.Addr()).
			Bool("metrics", n.cfg.Server.Metrics).
			Msg("RPC server listening")
	}

	if n.walletPoll > 0 {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			n.runWalletWatch(n.walletPoll)
		}()
	}

	n.logger.Info().Msg("Tip jar started")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	n.cancel()
	n.wg.Wait()

	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC server shutdown")
		}
	}

	n.logger.Info().Msg("Goodbye!")
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// runWalletWatch polls the bridge and logs wallet connects and disconnects.
func (n *Node) runWalletWatch(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last string
	for {
		last = n.checkWallet(last)
		select {
		case <-n.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// checkWallet compares the connected account with last and returns the
// current address ("" when disconnected or unreachable).
func (n *Node) checkWallet(last string) string {
	ctx, cancel := context.WithTimeout(n.ctx, n.cfg.Bridge.Timeout)
	defer cancel()

	acct, err := n.svc.Account(ctx)
	switch {
	case errors.Is(err, tipjar.ErrNotConnected):
		tipjar.WalletConnected.Set(0)
		if last != "" {
			n.logger.Info().Msg("Wallet disconnected")
		}
		return ""
	case err != nil:
		tipjar.WalletConnected.Set(0)
		if n.ctx.Err() == nil {
			n.logger.Debug().Err(err).Msg("Wallet bridge unreachable")
		}
		return ""
	}

	tipjar.WalletConnected.Set(1)
	if acct.Address != last {
		n.logger.Info().
			Str("address", acct.Address).
			Str("wallet", acct.WalletType).
			Bool("keys", acct.HasKeys()).
			Msg("Wallet connected")
	}
	return acct.Address
}
