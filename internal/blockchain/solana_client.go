package blockchain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

const (
	// LamportsPerSOL is the number of lamports in one SOL
	LamportsPerSOL = 1_000_000_000

	// confirmPollInterval is how often signature statuses are polled
	confirmPollInterval = 2 * time.Second

	// confirmTimeout bounds how long a submitted transfer is waited on
	confirmTimeout = 90 * time.Second
)

// memoProgramID is the on-chain memo program used to attach opaque
// bet/payout metadata to transfers
var memoProgramID = solana.MustPublicKeyFromBase58("Memo1UhkJRfHyvLMcVucJwxXeuD728EqVDDwQDxFMNo")

// SolanaClient handles Solana blockchain interactions: building stake and
// payout transfers, submitting them, and checking balances and signatures.
type SolanaClient struct {
	rpcClient   *rpc.Client
	endpoint    string
	houseWallet *solana.Wallet
}

// NewSolanaClient creates a Solana client against the given RPC endpoint.
// The house wallet private key is optional; without it the client can still
// build and verify transactions but cannot sign payouts.
func NewSolanaClient(endpoint, housePrivateKey string) *SolanaClient {
	client := &SolanaClient{
		rpcClient: rpc.New(endpoint),
		endpoint:  endpoint,
	}

	if housePrivateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(housePrivateKey)
		if err != nil {
			log.Printf("Warning: failed to load house wallet: %v", err)
		} else {
			client.houseWallet = wallet
			log.Printf("House wallet loaded: %s", wallet.PublicKey())
		}
	}

	return client
}

// SolToLamports converts a SOL amount to lamports
func SolToLamports(amount decimal.Decimal) uint64 {
	return uint64(amount.Mul(decimal.NewFromInt(LamportsPerSOL)).IntPart())
}

// LamportsToSol converts lamports to a SOL amount
func LamportsToSol(lamports uint64) decimal.Decimal {
	return decimal.NewFromInt(int64(lamports)).Div(decimal.NewFromInt(LamportsPerSOL))
}

// ValidateWalletAddress validates a Solana wallet address format
func (s *SolanaClient) ValidateWalletAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// GetBalance gets the SOL balance for a wallet
func (s *SolanaClient) GetBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid wallet address: %w", err)
	}

	balance, err := s.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	return LamportsToSol(balance.Value), nil
}

// BuildTransfer builds an unsigned single-instruction SOL transfer with an
// optional memo, stamped with a fresh blockhash and the sender as fee payer
func (s *SolanaClient) BuildTransfer(
	ctx context.Context,
	fromAddress, toAddress string,
	amount decimal.Decimal,
	memo []byte,
) (*solana.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("transfer amount must be positive, got %s", amount)
	}

	from, err := solana.PublicKeyFromBase58(fromAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	to, err := solana.PublicKeyFromBase58(toAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	blockhash, err := s.GetRecentBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	return buildTransferTx(from, to, SolToLamports(amount), memo, blockhash)
}

// BuildTransferBase64 builds an unsigned transfer and serializes it for a
// browser wallet to sign
func (s *SolanaClient) BuildTransferBase64(
	ctx context.Context,
	fromAddress, toAddress string,
	amount decimal.Decimal,
	memo []byte,
) (string, error) {
	tx, err := s.BuildTransfer(ctx, fromAddress, toAddress, amount, memo)
	if err != nil {
		return "", err
	}

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// SubmitSignedTransaction deserializes a wallet-signed transaction, sends it
// and waits for confirmation. Returns the transaction signature.
func (s *SolanaClient) SubmitSignedTransaction(ctx context.Context, rawBase64 string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(rawBase64)
	if err != nil {
		return "", fmt.Errorf("invalid transaction encoding: %w", err)
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return "", fmt.Errorf("failed to decode transaction: %w", err)
	}

	sig, err := s.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	if err := s.ConfirmTransaction(ctx, sig); err != nil {
		return "", err
	}

	return sig.String(), nil
}

// SubmitHouseTransfer builds, signs with the house wallet, submits and
// confirms a house-to-destination SOL transfer. Used for payouts.
func (s *SolanaClient) SubmitHouseTransfer(
	ctx context.Context,
	destination string,
	amount decimal.Decimal,
	memo []byte,
) (string, error) {
	if s.houseWallet == nil {
		return "", fmt.Errorf("house wallet private key not configured")
	}

	tx, err := s.BuildTransfer(ctx, s.houseWallet.PublicKey().String(), destination, amount, memo)
	if err != nil {
		return "", err
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(s.houseWallet.PublicKey()) {
			return &s.houseWallet.PrivateKey
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := s.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	if err := s.ConfirmTransaction(ctx, sig); err != nil {
		return "", err
	}

	return sig.String(), nil
}

// SendTransaction sends a signed transaction to the network
func (s *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := s.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false,
			PreflightCommitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}

// GetRecentBlockhash gets the latest blockhash
func (s *SolanaClient) GetRecentBlockhash(ctx context.Context) (solana.Hash, error) {
	resp, err := s.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return resp.Value.Blockhash, nil
}

// ConfirmTransaction polls signature statuses until the transaction reaches
// confirmed or finalized commitment, the transaction fails on-chain, or the
// bounded wait elapses
func (s *SolanaClient) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		status, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			log.Printf("Warning: signature status check failed for %s: %v", sig, err)
		} else if len(status.Value) > 0 && status.Value[0] != nil {
			st := status.Value[0]
			if st.Err != nil {
				return fmt.Errorf("transaction %s failed on-chain: %v", sig, st.Err)
			}
			if st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				st.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for confirmation of %s: %w", sig, ctx.Err())
		case <-ticker.C:
		}
	}
}

// VerifyTransaction checks whether a transaction exists and did not fail.
// It is an existence check only; callers needing commitment depth should
// use ConfirmTransaction.
func (s *SolanaClient) VerifyTransaction(ctx context.Context, signature string) (bool, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature: %w", err)
	}

	status, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, fmt.Errorf("failed to get signature status: %w", err)
	}

	if len(status.Value) == 0 || status.Value[0] == nil {
		return false, nil
	}

	if status.Value[0].Err != nil {
		return false, fmt.Errorf("transaction execution failed")
	}

	return true, nil
}
