package command

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	bin "github.com/gagliardetto/binary"
	solanago "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-cli/internal/config"
	"solana-cli/internal/helius"
	"solana-cli/internal/solana"
	"solana-cli/internal/solana/stub"
	"solana-cli/internal/wallet"
)

type rpcCall struct {
	ID     uint64          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// arg decodes positional parameter i into v; named parameters are ignored.
func (c rpcCall) arg(i int, v interface{}) {
	var positional []json.RawMessage
	if json.Unmarshal(c.Params, &positional) != nil || i >= len(positional) {
		return
	}
	json.Unmarshal(positional[i], v)
}

type node struct {
	mu      sync.Mutex
	calls   []string
	handler func(call rpcCall) interface{}
	server  *httptest.Server
}

func newNode(t *testing.T, handler func(call rpcCall) interface{}) *node {
	t.Helper()
	n := &node{handler: handler}
	n.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		n.mu.Lock()
		n.calls = append(n.calls, call.Method)
		n.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      call.ID,
			"result":  n.handler(call),
		})
	}))
	t.Cleanup(n.server.Close)
	return n
}

func (n *node) called(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, m := range n.calls {
		if m == method {
			count++
		}
	}
	return count
}

func contextResult(value interface{}) map[string]interface{} {
	return map[string]interface{}{"context": map[string]interface{}{"slot": 1}, "value": value}
}

func account(owner, data string) map[string]interface{} {
	return map[string]interface{}{
		"lamports":   2_039_280,
		"owner":      owner,
		"data":       []string{data, "base64"},
		"executable": false,
		"rentEpoch":  361,
		"space":      len(data),
	}
}

func writeConfig(t *testing.T, rpcURL, keypairPath string) string {
	t.Helper()
	content := fmt.Sprintf("json_rpc_url: %q\nwebsocket_url: \"ws://127.0.0.1:1\"\nkeypair_path: %q\ncommitment: confirmed\n", rpcURL, keypairPath)
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func writeKeypair(t *testing.T) (string, solanago.PrivateKey) {
	t.Helper()
	key := solanago.NewWallet().PrivateKey
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path, key
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(config.EnvConfirmPoll, "10ms")
	t.Setenv(config.EnvConfirmTimeout, "5s")

	var stdout, stderr bytes.Buffer
	err := NewApp(&stdout, &stderr).Run(append([]string{"solana-cli"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestBalance(t *testing.T) {
	addr := solanago.NewWallet().PublicKey().String()
	n := newNode(t, func(call rpcCall) interface{} {
		return contextResult(1_500_000_000)
	})
	cfg := writeConfig(t, n.server.URL, "/unused")

	stdout, _, err := run(t, "--config", cfg, "balance", addr)
	require.NoError(t, err)
	assert.Equal(t, addr+": ◎1.500000000\n", stdout)
}

func TestBalance_URLFlagOverridesConfig(t *testing.T) {
	n := newNode(t, func(call rpcCall) interface{} { return contextResult(1) })
	cfg := writeConfig(t, "http://127.0.0.1:1", "/unused")

	_, _, err := run(t, "--config", cfg, "--url", n.server.URL, "balance", solanago.NewWallet().PublicKey().String())
	require.NoError(t, err)
	assert.Equal(t, 1, n.called("getBalance"))
}

func TestBalance_InvalidAddress(t *testing.T) {
	_, _, err := run(t, "--config", writeConfig(t, "http://127.0.0.1:1", "/unused"), "balance", "nope")
	assert.ErrorContains(t, err, "invalid address")
}

func TestAccount(t *testing.T) {
	mint := solanago.NewWallet().PublicKey().String()
	owner := solanago.NewWallet().PublicKey().String()
	tokenAcct := solanago.NewWallet().PublicKey().String()
	plain := solanago.NewWallet().PublicKey().String()

	n := newNode(t, func(call rpcCall) interface{} {
		var addr string
		call.arg(0, &addr)
		switch addr {
		case tokenAcct:
			return contextResult(account(solana.TokenProgramID.String(), stub.TokenAccountData(mint, owner, 1_500)))
		case mint:
			return contextResult(account(solana.TokenProgramID.String(), stub.MintData(6, true)))
		case plain:
			return contextResult(account("11111111111111111111111111111111", base64.StdEncoding.EncodeToString([]byte{1, 2, 3})))
		default:
			return contextResult(nil)
		}
	})
	cfg := writeConfig(t, n.server.URL, "/unused")

	stdout, _, err := run(t, "--config", cfg, "account", tokenAcct)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Public Key: "+tokenAcct)
	assert.Contains(t, stdout, "SPL Token Account:")
	assert.Contains(t, stdout, "  Owner: "+owner)
	assert.Contains(t, stdout, "  Amount: 1500")
	assert.Contains(t, stdout, "Length: 165 (0xa5) bytes")

	stdout, _, err = run(t, "--config", cfg, "account", mint)
	require.NoError(t, err)
	assert.Contains(t, stdout, "SPL Mint:")
	assert.Contains(t, stdout, "  Decimals: 6")
	assert.Contains(t, stdout, "  Mint Authority: (not set)")

	stdout, _, err = run(t, "--config", cfg, "account", plain)
	require.NoError(t, err)
	assert.Contains(t, stdout, "01 02 03")

	_, _, err = run(t, "--config", cfg, "account", solanago.NewWallet().PublicKey().String())
	assert.ErrorIs(t, err, solana.ErrAccountNotFound)
}

// chainForTransactions answers the calls made while sending a transaction and
// keeps the last submitted wire transaction.
func chainForTransactions(t *testing.T, wire *string) *node {
	var mu sync.Mutex
	return newNode(t, func(call rpcCall) interface{} {
		switch call.Method {
		case "getLatestBlockhash":
			return contextResult(map[string]interface{}{"blockhash": solanago.Hash{7}.String(), "lastValidBlockHeight": 10})
		case "getMinimumBalanceForRentExemption":
			return 1_461_600
		case "sendTransaction":
			var w string
			call.arg(0, &w)
			mu.Lock()
			*wire = w
			mu.Unlock()
			raw, _ := base64.StdEncoding.DecodeString(w)
			var tx solanago.Transaction
			if err := tx.UnmarshalWithDecoder(bin.NewBinDecoder(raw)); err != nil {
				t.Errorf("decode tx: %v", err)
				return nil
			}
			return tx.Signatures[0].String()
		case "getSignatureStatuses":
			return contextResult([]interface{}{map[string]interface{}{
				"slot": 5, "confirmations": nil, "err": nil, "confirmationStatus": "confirmed",
			}})
		default:
			t.Errorf("unexpected method %s", call.Method)
			return nil
		}
	})
}

func TestTransfer(t *testing.T) {
	var wire string
	n := chainForTransactions(t, &wire)
	keypair, key := writeKeypair(t)
	to := solanago.NewWallet().PublicKey()

	stdout, _, err := run(t, "--config", writeConfig(t, n.server.URL, keypair), "transfer", to.String(), "0.5")
	require.NoError(t, err)
	assert.Contains(t, stdout, fmt.Sprintf("Transferring 0.5 SOL from %s to %s", key.PublicKey(), to))
	assert.Contains(t, stdout, "Transaction Signature: ")
	assert.GreaterOrEqual(t, n.called("getSignatureStatuses"), 1)

	raw, err := base64.StdEncoding.DecodeString(wire)
	require.NoError(t, err)
	var tx solanago.Transaction
	require.NoError(t, tx.UnmarshalWithDecoder(bin.NewBinDecoder(raw)))
	data := []byte(tx.Message.Instructions[0].Data)
	assert.Equal(t, uint64(500_000_000), binary.LittleEndian.Uint64(data[4:12]))
}

func TestTransfer_InvalidAmount(t *testing.T) {
	keypair, _ := writeKeypair(t)
	cfg := writeConfig(t, "http://127.0.0.1:1", keypair)

	_, _, err := run(t, "--config", cfg, "transfer", solanago.NewWallet().PublicKey().String(), "-2")
	assert.ErrorIs(t, err, wallet.ErrInvalidAmount)

	_, _, err = run(t, "--config", cfg, "transfer", solanago.NewWallet().PublicKey().String())
	assert.ErrorContains(t, err, "expects 2 argument(s)")
}

func TestTransfer_MissingKeypair(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1", filepath.Join(t.TempDir(), "missing.json"))
	_, _, err := run(t, "--config", cfg, "transfer", solanago.NewWallet().PublicKey().String(), "1")
	assert.ErrorContains(t, err, "read keypair file")
}

func TestMintToken(t *testing.T) {
	var wire string
	n := chainForTransactions(t, &wire)
	keypair, _ := writeKeypair(t)

	stdout, _, err := run(t, "--config", writeConfig(t, n.server.URL, keypair), "mint-token", "--decimals", "6")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Mint account(")
	assert.Contains(t, stdout, "Transaction Signature: ")
	assert.Equal(t, 1, n.called("getMinimumBalanceForRentExemption"))

	raw, err := base64.StdEncoding.DecodeString(wire)
	require.NoError(t, err)
	var tx solanago.Transaction
	require.NoError(t, tx.UnmarshalWithDecoder(bin.NewBinDecoder(raw)))
	require.Len(t, tx.Message.Instructions, 2)
	assert.Equal(t, byte(6), []byte(tx.Message.Instructions[1].Data)[1])
}

func TestMintToken_DecimalsOutOfRange(t *testing.T) {
	keypair, _ := writeKeypair(t)
	_, _, err := run(t, "--config", writeConfig(t, "http://127.0.0.1:1", keypair), "mint-token", "--decimals", "300")
	assert.ErrorContains(t, err, "at most 255")
}

func TestTokenAnalysis_MissingAPIKey(t *testing.T) {
	t.Setenv(helius.APIKeyEnv, "")
	cfg := writeConfig(t, "http://127.0.0.1:1", "/unused")
	_, _, err := run(t, "--config", cfg, "token-analysis", solanago.NewWallet().PublicKey().String())
	assert.ErrorIs(t, err, helius.ErrMissingAPIKey)
}

func TestTokenAnalysis_HoldersOnly(t *testing.T) {
	mint := solanago.NewWallet().PublicKey().String()
	ownerX := solanago.NewWallet().PublicKey().String()
	ownerY := solanago.NewWallet().PublicKey().String()
	accounts := map[string]string{
		solanago.NewWallet().PublicKey().String(): stub.TokenAccountData(mint, ownerX, 700),
		solanago.NewWallet().PublicKey().String(): stub.TokenAccountData(mint, ownerY, 300),
	}
	var largest []interface{}
	for addr := range accounts {
		largest = append(largest, map[string]interface{}{
			"address": addr, "amount": fmt.Sprint(accountAmount(accounts[addr])), "decimals": 2,
		})
	}

	n := newNode(t, func(call rpcCall) interface{} {
		switch call.Method {
		case "getAccountInfo":
			var addr string
			call.arg(0, &addr)
			if addr == mint {
				return contextResult(account(solana.TokenProgramID.String(), stub.MintData(2, true)))
			}
			return contextResult(nil)
		case "getTokenSupply":
			return contextResult(map[string]interface{}{"amount": "100000", "decimals": 2, "uiAmountString": "1000"})
		case "getTokenLargestAccounts":
			return contextResult(largest)
		case "getMultipleAccounts":
			var keys []string
			call.arg(0, &keys)
			out := make([]interface{}, len(keys))
			for i, k := range keys {
				out[i] = account(solana.TokenProgramID.String(), accounts[k])
			}
			return contextResult(out)
		case "getAsset":
			return nil
		default:
			t.Errorf("unexpected method %s", call.Method)
			return nil
		}
	})
	t.Setenv(config.EnvHeliusURL, n.server.URL)
	xlsx := filepath.Join(t.TempDir(), "report.xlsx")

	stdout, stderr, err := run(t,
		"--config", writeConfig(t, n.server.URL, "/unused"),
		"--stats",
		"token-analysis", "--api-key", "k", "--holders-only", "--xlsx", xlsx, mint,
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "(top 2 of 2)")
	assert.Contains(t, stdout, "On-chain supply: 1000.000000")
	assert.Contains(t, stdout, "1. "+ownerX+" holds 7.000000")
	assert.Contains(t, stdout, "Total (all 2 holders): 10.000000")
	assert.Contains(t, stderr, "Report written to "+xlsx)
	assert.Contains(t, stderr, "=== Run statistics ===")
	assert.Contains(t, stderr, "rpc_calls_total")
	assert.FileExists(t, xlsx)
	assert.Equal(t, 1, n.called("getMultipleAccounts"))

	csvPath := filepath.Join(t.TempDir(), "holders.csv")
	stdout, stderr, err = run(t,
		"--config", writeConfig(t, n.server.URL, "/unused"),
		"token-analysis", "--api-key", "k", "--holders-only", "--format", "markdown", "--csv", csvPath, mint,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "## Top holders")
	assert.Contains(t, stdout, "| 1 | `"+ownerX+"` | 7.000000 |")
	assert.Contains(t, stderr, "Holders written to "+csvPath)
	assert.FileExists(t, csvPath)
}

func TestTokenAnalysis_InvalidFormat(t *testing.T) {
	cfg := writeConfig(t, "http://127.0.0.1:1", "/unused")
	_, _, err := run(t, "--config", cfg, "token-analysis", "--format", "html", solanago.NewWallet().PublicKey().String())
	assert.ErrorContains(t, err, "invalid --format")
}

func accountAmount(data string) uint64 {
	raw, _ := base64.StdEncoding.DecodeString(data)
	return binary.LittleEndian.Uint64(raw[64:72])
}
