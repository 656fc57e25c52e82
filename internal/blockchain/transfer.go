package blockchain

import (
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// TransferMemo is the opaque metadata attached to stake and payout
// transfers for auditability. It is not enforced on-chain.
type TransferMemo struct {
	Type     string `json:"type"`
	BetID    string `json:"betId,omitempty"`
	UserID   uint   `json:"userId,omitempty"`
	RaceID   string `json:"raceId"`
	DriverID string `json:"driverId"`
}

// Encode serializes the memo payload
func (m TransferMemo) Encode() []byte {
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return data
}

// buildTransferTx assembles a transaction from a system transfer instruction
// and an optional memo instruction, with the sender paying fees
func buildTransferTx(
	from, to solana.PublicKey,
	lamports uint64,
	memo []byte,
	blockhash solana.Hash,
) (*solana.Transaction, error) {
	instructions := []solana.Instruction{
		system.NewTransferInstruction(lamports, from, to).Build(),
	}

	if len(memo) > 0 {
		instructions = append(instructions, solana.NewInstruction(
			memoProgramID,
			solana.AccountMetaSlice{},
			memo,
		))
	}

	tx, err := solana.NewTransaction(
		instructions,
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transfer transaction: %w", err)
	}

	return tx, nil
}
