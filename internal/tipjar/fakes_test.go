package tipjar

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/0xpierson/tipjar/config"
	"github.com/0xpierson/tipjar/internal/rpcclient"
)

const (
	testSender    = "opt1pqqqsyqcyq5rqwzqfpg9scrgwpugpzysnzs23v9ccrydpk8qarc0sw72sdw"
	testRecipient = "opt1p424242424242424242424242424242424242424242424242424qc37ctu"
	testResolved  = "0x" + "aa" + "bb" + "cc"
	testOwner     = "0x1111111111111111111111111111111111111111111111111111111111111111"

	testTimeout = 2 * time.Second
	testTick    = 10 * time.Millisecond
)

type fakeProvider struct {
	balance    *big.Int
	balanceErr error
	keys       map[string]string
	keyErr     error
}

func (p *fakeProvider) GetBalance(_ context.Context, _ string) (*big.Int, error) {
	if p.balanceErr != nil {
		return nil, p.balanceErr
	}
	return p.balance, nil
}

func (p *fakeProvider) GetPublicKeyInfo(_ context.Context, address string) (string, error) {
	if p.keyErr != nil {
		return "", p.keyErr
	}
	v, ok := p.keys[address]
	if !ok {
		return "", rpcclient.ErrUnknownAddress
	}
	return v, nil
}

type fakeBridge struct {
	mu sync.Mutex

	account    *rpcclient.Account
	accountErr error
	decimals   map[string]int
	balances   map[string]*big.Int
	readErr    error
	simRevert  string
	sendRevert string
	txID       string

	// block, when set, holds SendTransfer until closed.
	block chan struct{}

	simulated []rpcclient.TransferCall
	sent      []rpcclient.TransferCall
	params    []rpcclient.TxParams
}

func (b *fakeBridge) Account(context.Context) (*rpcclient.Account, error) {
	return b.account, b.accountErr
}

func (b *fakeBridge) Decimals(_ context.Context, token string) (int, error) {
	if b.readErr != nil {
		return 0, b.readErr
	}
	return b.decimals[token], nil
}

func (b *fakeBridge) BalanceOf(_ context.Context, token, _ string) (*big.Int, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}
	if v, ok := b.balances[token]; ok {
		return v, nil
	}
	return new(big.Int), nil
}

func (b *fakeBridge) SimulateTransfer(_ context.Context, call rpcclient.TransferCall) (*rpcclient.Simulation, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.simulated = append(b.simulated, call)
	return &rpcclient.Simulation{Revert: b.simRevert}, nil
}

func (b *fakeBridge) SendTransfer(_ context.Context, call rpcclient.TransferCall, params rpcclient.TxParams) (*rpcclient.TransferReceipt, error) {
	if b.block != nil {
		<-b.block
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, call)
	b.params = append(b.params, params)
	return &rpcclient.TransferReceipt{TransactionID: b.txID, Revert: b.sendRevert}, nil
}

// testFixture is a connected wallet holding 10 PILL and 0.5 BTC.
type testFixture struct {
	cfg      *config.Config
	provider *fakeProvider
	bridge   *fakeBridge
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	cfg := config.DefaultTestnet()
	pill := config.PillToken.Address
	moto := config.MotoToken.Address
	return &testFixture{
		cfg: cfg,
		provider: &fakeProvider{
			balance: big.NewInt(50_000_000),
			keys:    map[string]string{testRecipient: testResolved},
		},
		bridge: &fakeBridge{
			account: &rpcclient.Account{
				Address:        testSender,
				PublicKey:      "0x02" + testOwner[4:],
				HashedMLDSAKey: testOwner,
			},
			decimals: map[string]int{pill: 8, moto: 8},
			balances: map[string]*big.Int{
				pill: big.NewInt(1_000_000_000),
				moto: big.NewInt(0),
			},
			txID: "f00dfeed",
		},
	}
}

func (f *testFixture) service() *Service {
	return NewService(f.cfg, f.provider, f.bridge)
}
