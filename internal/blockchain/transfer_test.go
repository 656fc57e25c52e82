package blockchain

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
)

func TestSolLamportsConversion(t *testing.T) {
	cases := []struct {
		sol      string
		lamports uint64
	}{
		{"1", 1_000_000_000},
		{"0.5", 500_000_000},
		{"1.25", 1_250_000_000},
		{"0.000000001", 1},
	}

	for _, tc := range cases {
		amount, _ := decimal.NewFromString(tc.sol)
		if got := SolToLamports(amount); got != tc.lamports {
			t.Errorf("SolToLamports(%s) = %d, want %d", tc.sol, got, tc.lamports)
		}
		if back := LamportsToSol(tc.lamports); !back.Equal(amount) {
			t.Errorf("LamportsToSol(%d) = %s, want %s", tc.lamports, back, tc.sol)
		}
	}
}

func TestBuildTransferTx(t *testing.T) {
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()
	memo := []byte(`{"type":"bet"}`)

	var blockhash solana.Hash
	copy(blockhash[:], bytes.Repeat([]byte{7}, 32))

	tx, err := buildTransferTx(from, to, 500_000_000, memo, blockhash)
	if err != nil {
		t.Fatalf("buildTransferTx failed: %v", err)
	}

	if len(tx.Message.Instructions) != 2 {
		t.Fatalf("expected transfer + memo instructions, got %d", len(tx.Message.Instructions))
	}

	// The sender pays fees
	if len(tx.Message.AccountKeys) == 0 || !tx.Message.AccountKeys[0].Equals(from) {
		t.Errorf("expected sender %s as fee payer, got %v", from, tx.Message.AccountKeys)
	}

	transferProgram, err := tx.Message.Program(tx.Message.Instructions[0].ProgramIDIndex)
	if err != nil {
		t.Fatalf("failed to resolve transfer program: %v", err)
	}
	if !transferProgram.Equals(system.ProgramID) {
		t.Errorf("first instruction program %s, want system program", transferProgram)
	}

	memoProgram, err := tx.Message.Program(tx.Message.Instructions[1].ProgramIDIndex)
	if err != nil {
		t.Fatalf("failed to resolve memo program: %v", err)
	}
	if !memoProgram.Equals(memoProgramID) {
		t.Errorf("second instruction program %s, want memo program", memoProgram)
	}

	if !bytes.Equal(tx.Message.Instructions[1].Data, memo) {
		t.Errorf("memo data %q, want %q", tx.Message.Instructions[1].Data, memo)
	}

	if tx.Message.RecentBlockhash != blockhash {
		t.Errorf("blockhash %s, want %s", tx.Message.RecentBlockhash, blockhash)
	}
}

func TestBuildTransferTxWithoutMemo(t *testing.T) {
	from := solana.NewWallet().PublicKey()
	to := solana.NewWallet().PublicKey()

	tx, err := buildTransferTx(from, to, 1_000, nil, solana.Hash{})
	if err != nil {
		t.Fatalf("buildTransferTx failed: %v", err)
	}

	if len(tx.Message.Instructions) != 1 {
		t.Errorf("expected a lone transfer instruction, got %d", len(tx.Message.Instructions))
	}
}

func TestTransferMemoEncode(t *testing.T) {
	memo := TransferMemo{
		Type:     "payout",
		BetID:    "bet-1",
		RaceID:   "race-1",
		DriverID: "driver-1",
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(memo.Encode(), &decoded); err != nil {
		t.Fatalf("memo is not valid JSON: %v", err)
	}

	if decoded["type"] != "payout" {
		t.Errorf("type %v, want payout", decoded["type"])
	}
	if decoded["betId"] != "bet-1" {
		t.Errorf("betId %v, want bet-1", decoded["betId"])
	}
	if _, present := decoded["userId"]; present {
		t.Error("expected zero userId to be omitted")
	}
}

func TestValidateWalletAddress(t *testing.T) {
	client := NewSolanaClient("https://api.devnet.solana.com", "")

	valid := solana.NewWallet().PublicKey().String()
	if !client.ValidateWalletAddress(valid) {
		t.Errorf("expected %s to validate", valid)
	}
	if client.ValidateWalletAddress("not-a-wallet") {
		t.Error("expected garbage input to fail validation")
	}
	if client.ValidateWalletAddress("") {
		t.Error("expected empty input to fail validation")
	}
}
