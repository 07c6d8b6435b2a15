package monitor

import (
	"time"

	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

type (
	// SlotInfo is the network's current position: the confirmed slot, the
	// absolute slot reported by epoch info, and the current epoch.
	SlotInfo struct {
		CurrentSlot  int64
		AbsoluteSlot int64
		Epoch        int64
	}

	// ValidatorInfo is a validator's voting and staking snapshot. A fetch
	// replaces the prior snapshot wholesale; there is no incremental merge.
	ValidatorInfo struct {
		Identity    Pubkey
		VoteAccount Pubkey
		// Commission percentage, 0-100.
		Commission int64
		LastVote   int64
		RootSlot   int64
		// VoteCredits is the cumulative credit total of the latest epoch entry.
		VoteCredits int64
		// EpochCredits is the history of [epoch, credits, previousCredits] triples.
		EpochCredits [][]int64
		// ActivatedStake in lamports.
		ActivatedStake int64
		Version        string
		Delinquent     bool
		// SkipRate is the estimated percentage of unvoted slots in the latest epoch.
		SkipRate float64
	}

	// GossipNodeInfo is a network peer's advertised endpoints.
	GossipNodeInfo struct {
		Pubkey       Pubkey
		Gossip       string
		Tpu          string
		Rpc          string
		TpuQuic      string
		Version      string
		FeatureSet   uint32
		ShredVersion uint16
	}

	// VoteTransactionInfo pairs a voting account with the transaction it voted in.
	VoteTransactionInfo struct {
		VoteAccount string
		Signature   string
	}

	// SlotVoterInfo is the voting activity observed in one block.
	SlotVoterInfo struct {
		Slot int64
		// Voters is the deduplicated set of vote account keys.
		Voters map[string]struct{}
		// VoteTransactions preserves per-transaction provenance, duplicates included.
		VoteTransactions []VoteTransactionInfo
		// TotalVoters equals len(Voters) at construction time.
		TotalVoters int
	}

	// LeaderSlot is a single leader assignment. Time is a projection from the
	// network slot rate, not authoritative history.
	LeaderSlot struct {
		Epoch int64
		Slot  int64
		Time  time.Time
		// TimeDiff is the human-readable delta from the query-time snapshot.
		TimeDiff string
	}

	// LeaderScheduleInfo is a validator's leader assignments for one epoch.
	// NextLeaderSlot is selected relative to the query's current-time snapshot
	// and goes stale as time passes; callers should recompute display deltas.
	LeaderScheduleInfo struct {
		ValidatorIdentity string
		TargetEpoch       int64
		// LeaderSlots is sorted ascending by absolute slot.
		LeaderSlots    []LeaderSlot
		TotalSlots     int
		NextLeaderSlot *LeaderSlot
	}
)

// newValidatorInfo converts a fetched vote account. An unparseable key becomes
// the zero key rather than failing the batch.
func newValidatorInfo(account rpc.VoteAccount, delinquent bool) ValidatorInfo {
	credits, skipRate := CalculateSkipRate(account.EpochCredits)
	return ValidatorInfo{
		Identity:       ParsePubkeyOrZero(account.NodePubkey),
		VoteAccount:    ParsePubkeyOrZero(account.VotePubkey),
		Commission:     account.Commission,
		LastVote:       account.LastVote,
		RootSlot:       account.RootSlot,
		VoteCredits:    credits,
		EpochCredits:   account.EpochCredits,
		ActivatedStake: account.ActivatedStake,
		Version:        "Unknown",
		Delinquent:     delinquent,
		SkipRate:       skipRate,
	}
}

// newGossipNodeInfo converts a fetched contact info entry, defaulting absent fields.
func newGossipNodeInfo(node rpc.ContactInfo) GossipNodeInfo {
	info := GossipNodeInfo{
		Pubkey: ParsePubkeyOrZero(node.Pubkey),
		Gossip: "Unknown",
	}
	if node.Gossip != nil {
		info.Gossip = *node.Gossip
	}
	if node.Tpu != nil {
		info.Tpu = *node.Tpu
	}
	if node.Rpc != nil {
		info.Rpc = *node.Rpc
	}
	if node.TpuQuic != nil {
		info.TpuQuic = *node.TpuQuic
	}
	if node.Version != nil {
		info.Version = *node.Version
	}
	if node.FeatureSet != nil {
		info.FeatureSet = *node.FeatureSet
	}
	if node.ShredVersion != nil {
		info.ShredVersion = *node.ShredVersion
	}
	return info
}
