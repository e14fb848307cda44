package solana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"solana-cli/internal/jsonrpc"
)

type rpcCall struct {
	ID     uint64            `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

// newRPCServer answers every call with handler's result.
func newRPCServer(t *testing.T, handler func(call rpcCall) interface{}) (*Client, func()) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var call rpcCall
		if err := json.NewDecoder(r.Body).Decode(&call); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      call.ID,
			"result":  handler(call),
		})
	}))
	return NewClient(jsonrpc.NewClient(server.URL), ""), server.Close
}

func contextResult(value interface{}) map[string]interface{} {
	return map[string]interface{}{
		"context": map[string]interface{}{"slot": 1},
		"value":   value,
	}
}

func TestClient_GetBalance(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		if call.Method != "getBalance" {
			t.Errorf("expected getBalance, got %s", call.Method)
		}
		var opts map[string]string
		json.Unmarshal(call.Params[1], &opts)
		if opts["commitment"] != CommitmentConfirmed {
			t.Errorf("expected confirmed commitment, got %v", opts)
		}
		return contextResult(2_500_000_000)
	})
	defer done()

	lamports, err := client.GetBalance(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if lamports != 2_500_000_000 {
		t.Errorf("expected 2500000000, got %d", lamports)
	}
}

func TestClient_GetAccountInfo(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult(map[string]interface{}{
			"lamports":   1_000,
			"owner":      "11111111111111111111111111111111",
			"data":       []string{"AQID", "base64"},
			"executable": false,
			"rentEpoch":  361,
			"space":      3,
		})
	})
	defer done()

	info, err := client.GetAccountInfo(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}
	if info == nil {
		t.Fatal("expected account, got nil")
	}
	if info.Lamports != 1_000 || info.Space != 3 {
		t.Errorf("unexpected account: %+v", info)
	}
	data, err := info.DataBytes()
	if err != nil {
		t.Fatalf("DataBytes: %v", err)
	}
	if len(data) != 3 || data[0] != 1 || data[2] != 3 {
		t.Errorf("unexpected data: %v", data)
	}
}

func TestClient_GetAccountInfo_Missing(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult(nil)
	})
	defer done()

	info, err := client.GetAccountInfo(context.Background(), "addr1")
	if err != nil {
		t.Fatalf("GetAccountInfo: %v", err)
	}
	if info != nil {
		t.Errorf("expected nil for missing account, got %+v", info)
	}
}

func TestClient_GetMultipleAccounts_Chunked(t *testing.T) {
	var calls atomic.Int32
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		calls.Add(1)
		var keys []string
		json.Unmarshal(call.Params[0], &keys)
		if len(keys) > maxMultipleAccounts {
			t.Errorf("chunk too large: %d", len(keys))
		}
		values := make([]interface{}, len(keys))
		for i := range keys {
			if i%2 == 0 {
				values[i] = map[string]interface{}{"lamports": 1, "owner": "o", "data": []string{"", "base64"}}
			}
		}
		return contextResult(values)
	})
	defer done()

	keys := make([]string, 150)
	for i := range keys {
		keys[i] = "k"
	}

	accounts, err := client.GetMultipleAccounts(context.Background(), keys)
	if err != nil {
		t.Fatalf("GetMultipleAccounts: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
	if len(accounts) != 150 {
		t.Fatalf("expected 150 accounts, got %d", len(accounts))
	}
	if accounts[0] == nil || accounts[1] != nil {
		t.Errorf("request order not preserved")
	}
}

func TestClient_GetMultipleAccounts_LengthMismatch(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult([]interface{}{})
	})
	defer done()

	if _, err := client.GetMultipleAccounts(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("expected error for short response")
	}
}

func TestClient_GetTokenLargestAccounts(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult([]map[string]interface{}{
			{"address": "acc1", "amount": "1000", "decimals": 2, "uiAmount": 10.0, "uiAmountString": "10"},
			{"address": "acc2", "amount": "0", "decimals": 2, "uiAmount": 0.0, "uiAmountString": "0"},
		})
	})
	defer done()

	balances, err := client.GetTokenLargestAccounts(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetTokenLargestAccounts: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected 2 balances, got %d", len(balances))
	}
	raw, err := balances[0].Raw()
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if balances[0].Address != "acc1" || raw.IntPart() != 1000 || balances[0].Decimals != 2 {
		t.Errorf("unexpected balance: %+v", balances[0])
	}
}

func TestClient_GetTokenSupply(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult(map[string]interface{}{
			"amount": "123456789", "decimals": 6, "uiAmountString": "123.456789",
		})
	})
	defer done()

	supply, err := client.GetTokenSupply(context.Background(), "mint1")
	if err != nil {
		t.Fatalf("GetTokenSupply: %v", err)
	}
	if supply.UIAmountString != "123.456789" || supply.Decimals != 6 {
		t.Errorf("unexpected supply: %+v", supply)
	}
}

func TestClient_GetLatestBlockhash(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult(map[string]interface{}{
			"blockhash":            "EkSnNWid2cvwEVnVx9aBqawnmiCNiDgp3gUdkDPTKN1N",
			"lastValidBlockHeight": 3090,
		})
	})
	defer done()

	bh, err := client.GetLatestBlockhash(context.Background())
	if err != nil {
		t.Fatalf("GetLatestBlockhash: %v", err)
	}
	if bh.LastValidBlockHeight != 3090 {
		t.Errorf("expected 3090, got %d", bh.LastValidBlockHeight)
	}
}

func TestClient_GetLatestBlockhash_Empty(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult(map[string]interface{}{})
	})
	defer done()

	if _, err := client.GetLatestBlockhash(context.Background()); err == nil {
		t.Error("expected error for empty blockhash")
	}
}

func TestClient_GetMinimumBalanceForRentExemption(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		var size uint64
		json.Unmarshal(call.Params[0], &size)
		if size != MintAccountSize {
			t.Errorf("expected size %d, got %d", MintAccountSize, size)
		}
		return 1_461_600
	})
	defer done()

	rent, err := client.GetMinimumBalanceForRentExemption(context.Background(), MintAccountSize)
	if err != nil {
		t.Fatalf("GetMinimumBalanceForRentExemption: %v", err)
	}
	if rent != 1_461_600 {
		t.Errorf("expected 1461600, got %d", rent)
	}
}

func TestClient_SendTransaction(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		var wire string
		json.Unmarshal(call.Params[0], &wire)
		if wire != "AQID" {
			t.Errorf("unexpected wire: %s", wire)
		}
		var opts map[string]string
		json.Unmarshal(call.Params[1], &opts)
		if opts["encoding"] != "base64" {
			t.Errorf("expected base64 encoding, got %v", opts)
		}
		return "5sig"
	})
	defer done()

	sig, err := client.SendTransaction(context.Background(), "AQID")
	if err != nil {
		t.Fatalf("SendTransaction: %v", err)
	}
	if sig != "5sig" {
		t.Errorf("expected 5sig, got %s", sig)
	}
}

func TestClient_GetSignatureStatuses(t *testing.T) {
	client, done := newRPCServer(t, func(call rpcCall) interface{} {
		return contextResult([]interface{}{
			map[string]interface{}{"slot": 10, "confirmations": nil, "err": nil, "confirmationStatus": "finalized"},
			nil,
		})
	})
	defer done()

	statuses, err := client.GetSignatureStatuses(context.Background(), []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("GetSignatureStatuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if !statuses[0].Reached(CommitmentConfirmed) {
		t.Error("finalized should satisfy confirmed")
	}
	if statuses[1].Reached(CommitmentProcessed) {
		t.Error("unknown signature should not satisfy any commitment")
	}
}

func TestClient_RPCErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]interface{}{"code": -32602, "message": "Invalid param"},
		})
	}))
	defer server.Close()

	client := NewClient(jsonrpc.NewClient(server.URL), CommitmentFinalized)
	_, err := client.GetBalance(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error")
	}
	var rpcErr *jsonrpc.Error
	if !errors.As(err, &rpcErr) || rpcErr.Code != -32602 {
		t.Errorf("expected wrapped jsonrpc.Error, got %v", err)
	}
}

func TestFormatSOL(t *testing.T) {
	tests := []struct {
		lamports uint64
		want     string
	}{
		{0, "◎0.000000000"},
		{1, "◎0.000000001"},
		{1_500_000_000, "◎1.500000000"},
		{18_446_744_073_709_551_615, "◎18446744073.709551615"},
	}
	for _, tt := range tests {
		if got := FormatSOL(tt.lamports); got != tt.want {
			t.Errorf("FormatSOL(%d) = %s, want %s", tt.lamports, got, tt.want)
		}
	}
}

func TestSignatureStatus_Reached(t *testing.T) {
	s := &SignatureStatus{ConfirmationStatus: CommitmentProcessed}
	if !s.Reached(CommitmentProcessed) {
		t.Error("processed should satisfy processed")
	}
	if s.Reached(CommitmentConfirmed) {
		t.Error("processed should not satisfy confirmed")
	}
}
