package monitor

import (
	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

// VoteProgram is the on-chain program whose instructions record validator votes.
const VoteProgram = "Vote111111111111111111111111111111111111111"

// UnknownSignature is substituted when a transaction carries no signatures.
const UnknownSignature = "unknown"

// ScanBlockVoters extracts voting activity from a block's transaction list.
// For every instruction whose program id is the vote program, the
// instruction's first referenced account is taken as the voting account.
// Voters holds the deduplicated set; VoteTransactions keeps every occurrence
// in block order, paired with the originating transaction's first signature.
// Malformed instructions with out-of-range account indexes are skipped, and a
// block with zero transactions yields an empty result; the scan itself never fails.
func ScanBlockVoters(slot int64, transactions []rpc.BlockTransaction) *SlotVoterInfo {
	voters := make(map[string]struct{})
	var voteTransactions []VoteTransactionInfo

	for _, blockTx := range transactions {
		tx := blockTx.Transaction
		signature := UnknownSignature
		if len(tx.Signatures) > 0 {
			signature = tx.Signatures[0]
		}

		accountKeys := tx.Message.AccountKeys
		for _, instruction := range tx.Message.Instructions {
			if instruction.ProgramIdIndex < 0 || instruction.ProgramIdIndex >= len(accountKeys) {
				continue
			}
			if accountKeys[instruction.ProgramIdIndex] != VoteProgram || len(instruction.Accounts) == 0 {
				continue
			}
			voteAccountIndex := instruction.Accounts[0]
			if voteAccountIndex < 0 || voteAccountIndex >= len(accountKeys) {
				continue
			}
			voteAccount := accountKeys[voteAccountIndex]
			voters[voteAccount] = struct{}{}
			voteTransactions = append(voteTransactions, VoteTransactionInfo{
				VoteAccount: voteAccount,
				Signature:   signature,
			})
		}
	}

	return &SlotVoterInfo{
		Slot:             slot,
		Voters:           voters,
		VoteTransactions: voteTransactions,
		TotalVoters:      len(voters),
	}
}
