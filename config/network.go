package config

import "fmt"

// NetworkParams are the fixed per-network endpoints and address prefixes.
type NetworkParams struct {
	Name        NetworkType
	RPCURL      string
	HRP         string // bech32 human-readable part of segwit addresses
	ExplorerNet string // opscan "network" query value
}

var networkParams = map[NetworkType]NetworkParams{
	Regtest: {Name: Regtest, RPCURL: "https://regtest.opnet.org", HRP: "bcrt", ExplorerNet: "op_regtest"},
	Testnet: {Name: Testnet, RPCURL: "https://testnet.opnet.org", HRP: "opt", ExplorerNet: "op_testnet"},
	Mainnet: {Name: Mainnet, RPCURL: "https://mainnet.opnet.org", HRP: "bc", ExplorerNet: "op_mainnet"},
}

// ParamsFor returns the parameters for network, falling back to testnet.
func ParamsFor(network NetworkType) NetworkParams {
	if p, ok := networkParams[network]; ok {
		return p
	}
	return networkParams[Testnet]
}

// KnownNetwork reports whether network has parameters.
func KnownNetwork(network NetworkType) bool {
	_, ok := networkParams[network]
	return ok
}

// ExplorerTxURL returns the opscan page for a transaction.
func (p NetworkParams) ExplorerTxURL(txID string) string {
	return fmt.Sprintf("https://opscan.org/transactions/%s?network=%s", txID, p.ExplorerNet)
}

// Token is an OP20 token the tip jar offers.
type Token struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	Decimals int    `json:"decimals"`
}

// Built-in testnet tokens.
var (
	PillToken = Token{
		ID:       "PILL",
		Symbol:   "PILL",
		Name:     "PILL",
		Address:  "0xb09fc29c112af8293539477e23d8df1d3126639642767d707277131352040cbb",
		Decimals: 8,
	}
	MotoToken = Token{
		ID:       "MOTO",
		Symbol:   "MOTO",
		Name:     "MOTO",
		Address:  "0xfd4473840751d58d9f8b73bdd57d6c5260453d5518bd7cd02d0a4cf3df9bf4dd",
		Decimals: 8,
	}
)

// DefaultTokens returns a fresh copy of the built-in token list.
func DefaultTokens() []Token {
	return []Token{PillToken, MotoToken}
}
