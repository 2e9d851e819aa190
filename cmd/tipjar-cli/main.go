// tipjar-cli is a command-line client for a running tipjard.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/0xpierson/tipjar/config"
	"github.com/0xpierson/tipjar/internal/rpc"
	"github.com/0xpierson/tipjar/internal/rpcclient"
	"github.com/0xpierson/tipjar/pkg/amount"
)

// sendTimeout covers the wallet prompt on the bridge side.
const sendTimeout = 5 * time.Minute

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Parse global flags that appear before the subcommand.
	rpcURL := fmt.Sprintf("http://127.0.0.1:%d", config.DefaultServerPort)

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client := rpcclient.New(rpcURL)
	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "status":
		cmdStatus(client)
	case "wallet":
		cmdWallet(client)
	case "tokens":
		cmdTokens(client)
	case "balance":
		cmdBalance(client, cmdArgs)
	case "check":
		cmdCheck(client, cmdArgs)
	case "send":
		cmdSend(client, cmdArgs)
	case "jar":
		cmdJar(client, cmdArgs)
	case "sanitize":
		cmdSanitize(cmdArgs)
	case "parse":
		cmdParse(cmdArgs)
	case "format":
		cmdFormat(cmdArgs)
	case "version", "--version":
		fmt.Printf("tipjar-cli %s\n", config.Version)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: tipjar-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         tipjard endpoint (default: http://127.0.0.1:%d)

Commands:
  status                          Show network, wallet and last tip
  wallet                          Show the connected wallet and BTC balance
  tokens                          List the tokens offered for tips
  balance [--asset <A>]           Show the wallet balance of a token
  check --amount <n> [--asset <A>]
                                  Preview a tip amount against the balance
  send --to <addr> --amount <n> [--asset <A>] [--note <text>] [--yes]
                                  Send a tip
  jar <addr>                      Show the share link and QR code for a jar

  sanitize <input>                Clean up a typed amount
  parse <value> --decimals <d>    Convert an amount to smallest units
  format <units> --decimals <d> [--display <n>|--full]
                                  Convert smallest units to an amount

Asset flags (balance, check, send):
  --asset <A>                     PILL, MOTO or CUSTOM (default: daemon setting)
  --token <0x...>                 Contract address when --asset CUSTOM
  --token-decimals <d>            Token decimals when --asset CUSTOM
`, config.DefaultServerPort)
}

// assetFlags registers the token selection flags on fs.
func assetFlags(fs *flag.FlagSet) *rpc.AssetParam {
	p := &rpc.AssetParam{}
	fs.StringVar(&p.Asset, "asset", "", "Asset (PILL, MOTO, CUSTOM)")
	fs.StringVar(&p.CustomAddress, "token", "", "Custom token contract address")
	fs.StringVar(&p.CustomDecimals, "token-decimals", "", "Custom token decimals")
	return p
}

func call(client *rpcclient.Client, timeout time.Duration, method string, params, result interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Call(ctx, method, params, result); err != nil {
		var rpcErr *rpcclient.RPCError
		if errors.As(err, &rpcErr) {
			fatal("%s", rpcErr.Message)
		}
		fatal("%s: %v", method, err)
	}
}

// ── status ──────────────────────────────────────────────────────────────

func cmdStatus(client *rpcclient.Client) {
	var tokens rpc.TokensResult
	call(client, rpcclient.DefaultTimeout, "tip_tokens", nil, &tokens)
	var wallet rpc.WalletInfoResult
	call(client, rpcclient.DefaultTimeout, "wallet_getInfo", nil, &wallet)

	var last rpc.SendStatusResult
	call(client, rpcclient.DefaultTimeout, "tip_status", nil, &last)

	fmt.Printf("Network:  %s\n", tokens.Network)
	fmt.Printf("Asset:    %s\n", tokens.DefaultAsset)
	if wallet.Connected {
		fmt.Printf("Wallet:   %s\n", wallet.Short)
	} else {
		fmt.Println("Wallet:   not connected")
	}

	switch last.Status {
	case "sending":
		fmt.Printf("Last tip: sending %s %s\n", last.Amount, last.Token)
	case "done":
		fmt.Printf("Last tip: %s\n", last.TxID)
		if last.ExplorerURL != "" {
			fmt.Printf("          %s\n", last.ExplorerURL)
		}
	case "error":
		fmt.Printf("Last tip: failed: %s\n", last.Error)
	}
}

// ── wallet ──────────────────────────────────────────────────────────────

func cmdWallet(client *rpcclient.Client) {
	var wallet rpc.WalletInfoResult
	call(client, rpcclient.DefaultTimeout, "wallet_getInfo", nil, &wallet)

	if !wallet.Connected {
		fmt.Println("No wallet connected.")
		return
	}
	fmt.Printf("Address:  %s\n", wallet.Address)
	if wallet.WalletType != "" {
		fmt.Printf("Wallet:   %s\n", wallet.WalletType)
	}
	fmt.Printf("Network:  %s\n", wallet.Network)
	if wallet.BTC != nil {
		fmt.Printf("Balance:  %s BTC\n", wallet.BTC.Display)
	} else {
		fmt.Println("Balance:  unavailable")
	}
}

// ── tokens ──────────────────────────────────────────────────────────────

func cmdTokens(client *rpcclient.Client) {
	var res rpc.TokensResult
	call(client, rpcclient.DefaultTimeout, "tip_tokens", nil, &res)

	fmt.Printf("%-8s %-10s %-4s %s\n", "ID", "SYMBOL", "DEC", "ADDRESS")
	for _, t := range res.Tokens {
		marker := ""
		if t.ID == res.DefaultAsset {
			marker = " (default)"
		}
		fmt.Printf("%-8s %-10s %-4d %s%s\n", t.ID, t.Symbol, t.Decimals, t.Address, marker)
	}
	fmt.Printf("\nQuick amounts: %s\n", strings.Join(res.QuickAmounts, ", "))
}

// ── balance ─────────────────────────────────────────────────────────────

func cmdBalance(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("balance", flag.ExitOnError)
	asset := assetFlags(fs)
	fs.Parse(args)

	var bal rpc.BalanceResult
	call(client, rpcclient.DefaultTimeout, "tip_getBalance", asset, &bal)
	fmt.Printf("%s %s\n", bal.Display, bal.Symbol)
}

// ── check ───────────────────────────────────────────────────────────────

func cmdCheck(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	asset := assetFlags(fs)
	amt := fs.String("amount", "", "Amount to tip (e.g. 1.5)")
	fs.Parse(args)

	if *amt == "" {
		fatal("Usage: tipjar-cli check --amount <n> [--asset <A>]")
	}

	res := check(client, *asset, *amt)
	printCheck(res)
}

func check(client *rpcclient.Client, asset rpc.AssetParam, amt string) *rpc.CheckResult {
	var res rpc.CheckResult
	call(client, rpcclient.DefaultTimeout, "tip_check", rpc.CheckParam{AssetParam: asset, Amount: amt}, &res)
	return &res
}

func printCheck(res *rpc.CheckResult) {
	fmt.Printf("Token:    %s (%s)\n", res.Token.Name, res.Token.Symbol)
	if res.DecimalsValid {
		fmt.Printf("Amount:   %s %s (%s units)\n", res.Display, res.Token.Symbol, res.Units)
	} else {
		fmt.Printf("Amount:   %s (invalid decimals %d)\n", res.Amount, res.Decimals)
	}
	switch {
	case !res.Connected:
		fmt.Println("Balance:  wallet not connected")
	case res.Balance == nil:
		fmt.Println("Balance:  unavailable")
	default:
		fmt.Printf("Balance:  %s %s\n", res.Balance.Display, res.Balance.Symbol)
	}
	if res.ExceedsBalance {
		fmt.Println("Warning:  amount exceeds balance")
	}
}

// ── send ────────────────────────────────────────────────────────────────

func cmdSend(client *rpcclient.Client, args []string) {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	asset := assetFlags(fs)
	to := fs.String("to", "", "Tip jar address")
	amt := fs.String("amount", "", "Amount to tip (e.g. 1.5)")
	note := fs.String("note", "", "Optional note")
	yes := fs.Bool("yes", false, "Do not ask for confirmation")
	fs.Parse(args)

	if *to == "" || *amt == "" {
		fatal("Usage: tipjar-cli send --to <addr> --amount <n> [--asset <A>] [--note <text>] [--yes]")
	}

	preview := check(client, *asset, *amt)
	printCheck(preview)
	fmt.Printf("To:       %s\n", *to)

	if !*yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fatal("refusing to send without a terminal; pass --yes to confirm")
		}
		ok, err := confirm(os.Stdin, os.Stderr, "Send this tip? [y/N] ")
		if err != nil {
			fatal("read confirmation: %v", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return
		}
	}

	var rc rpc.ReceiptResult
	call(client, sendTimeout, "tip_send", rpc.SendParam{
		AssetParam: *asset,
		Recipient:  *to,
		Amount:     *amt,
		Note:       *note,
	}, &rc)

	fmt.Printf("Sent %s %s\n", rc.Display, rc.Token)
	fmt.Printf("Tx:       %s\n", rc.TxID)
	if rc.ExplorerURL != "" {
		fmt.Printf("Explorer: %s\n", rc.ExplorerURL)
	}
}

// confirm prints prompt to w and reports whether the answer read from r is yes.
func confirm(r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, prompt)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	return isYes(line), nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// ── jar ─────────────────────────────────────────────────────────────────

func cmdJar(client *rpcclient.Client, args []string) {
	if len(args) < 1 {
		fatal("Usage: tipjar-cli jar <address>")
	}

	var info struct {
		Address string `json:"address"`
		Short   string `json:"short"`
		Link    string `json:"link"`
		QRCode  string `json:"qr_code"`
	}
	call(client, rpcclient.DefaultTimeout, "jar_getInfo", rpc.AddressParam{Address: args[0]}, &info)

	fmt.Printf("Jar:      %s\n", info.Short)
	fmt.Printf("Link:     %s\n", info.Link)
	fmt.Printf("QR code:  %s\n", info.QRCode)
}

// ── amounts ─────────────────────────────────────────────────────────────

func cmdSanitize(args []string) {
	if len(args) < 1 {
		fatal("Usage: tipjar-cli sanitize <input>")
	}
	fmt.Println(amount.SanitizeInput(strings.Join(args, " ")))
}

func cmdParse(args []string) {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	decimals := fs.Int("decimals", 8, "Token decimals")
	fs.Parse(reorder(args))

	if fs.NArg() < 1 {
		fatal("Usage: tipjar-cli parse <value> --decimals <d>")
	}
	if !amount.ValidDecimals(*decimals) {
		fatal("decimals must be between 0 and %d", amount.MaxDecimals)
	}
	fmt.Println(amount.ParseUnits(fs.Arg(0), *decimals).String())
}

func cmdFormat(args []string) {
	fs := flag.NewFlagSet("format", flag.ExitOnError)
	decimals := fs.Int("decimals", 8, "Token decimals")
	display := fs.Int("display", amount.DefaultDisplayDecimals, "Fractional digits to show")
	full := fs.Bool("full", false, "Show every significant digit")
	fs.Parse(reorder(args))

	if fs.NArg() < 1 {
		fatal("Usage: tipjar-cli format <units> --decimals <d> [--display <n>|--full]")
	}
	if !amount.ValidDecimals(*decimals) {
		fatal("decimals must be between 0 and %d", amount.MaxDecimals)
	}
	units, ok := new(big.Int).SetString(fs.Arg(0), 0)
	if !ok {
		fatal("invalid units %q", fs.Arg(0))
	}
	if *full {
		fmt.Println(amount.FormatFull(units, *decimals))
		return
	}
	fmt.Println(amount.FormatUnits(units, *decimals, *display))
}

// reorder moves flags ahead of positional arguments so "parse 1.5 --decimals 18"
// works with the standard flag package.
func reorder(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		a := args[i]
		if !strings.HasPrefix(a, "-") || a == "-" {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if !strings.Contains(a, "=") && i+1 < len(args) && !isBoolFlag(a) {
			flags = append(flags, args[i+1])
			i++
		}
	}
	return append(flags, positional...)
}

func isBoolFlag(name string) bool {
	return strings.TrimLeft(name, "-") == "full"
}

// ── Error helper ────────────────────────────────────────────────────────

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
