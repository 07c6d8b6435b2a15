package rpc

type (
	EpochInfo struct {
		// AbsoluteSlot is the current slot.
		AbsoluteSlot int64 `json:"absoluteSlot"`
		// BlockHeight is the current block height.
		BlockHeight int64 `json:"blockHeight"`
		// Epoch is the current epoch.
		Epoch int64 `json:"epoch"`
		// SlotIndex is the current slot relative to the start of the current epoch.
		SlotIndex int64 `json:"slotIndex"`
		// SlotsInEpoch is the number of slots in this epoch.
		SlotsInEpoch int64 `json:"slotsInEpoch"`
		// TransactionCount is the total number of transactions processed without error since genesis.
		TransactionCount int64 `json:"transactionCount"`
	}

	EpochSchedule struct {
		// SlotsPerEpoch is the maximum number of slots in each epoch.
		SlotsPerEpoch int64 `json:"slotsPerEpoch"`
		// LeaderScheduleSlotOffset is the number of slots before the beginning of an epoch to
		// calculate a leader schedule for that epoch.
		LeaderScheduleSlotOffset int64 `json:"leaderScheduleSlotOffset"`
		// Warmup indicates whether epochs start short and grow.
		Warmup bool `json:"warmup"`
		// FirstNormalEpoch is the first normal-length epoch, log2(slotsPerEpoch) - log2(MINIMUM_SLOTS_PER_EPOCH).
		FirstNormalEpoch int64 `json:"firstNormalEpoch"`
		// FirstNormalSlot is MINIMUM_SLOTS_PER_EPOCH * (2^FirstNormalEpoch - 1).
		FirstNormalSlot int64 `json:"firstNormalSlot"`
	}

	VoteAccount struct {
		ActivatedStake int64 `json:"activatedStake"`
		Commission     int64 `json:"commission"`
		// EpochCredits is the latest history of earned credits, as a list of
		// [epoch, credits, previousCredits] triples.
		EpochCredits     [][]int64 `json:"epochCredits"`
		EpochVoteAccount bool      `json:"epochVoteAccount"`
		LastVote         int64     `json:"lastVote"`
		NodePubkey       string    `json:"nodePubkey"`
		RootSlot         int64     `json:"rootSlot"`
		VotePubkey       string    `json:"votePubkey"`
	}

	VoteAccounts struct {
		Current    []VoteAccount `json:"current"`
		Delinquent []VoteAccount `json:"delinquent"`
	}

	// ContactInfo describes a node participating in the gossip network.
	ContactInfo struct {
		Pubkey       string  `json:"pubkey"`
		Gossip       *string `json:"gossip"`
		Tpu          *string `json:"tpu"`
		TpuQuic      *string `json:"tpuQuic"`
		Rpc          *string `json:"rpc"`
		Version      *string `json:"version"`
		FeatureSet   *uint32 `json:"featureSet"`
		ShredVersion *uint16 `json:"shredVersion"`
	}

	// TransactionInstruction references its program and accounts by index into
	// the containing message's AccountKeys.
	TransactionInstruction struct {
		ProgramIdIndex int    `json:"programIdIndex"`
		Accounts       []int  `json:"accounts"`
		Data           string `json:"data"`
	}

	TransactionMessage struct {
		AccountKeys  []string                 `json:"accountKeys"`
		Instructions []TransactionInstruction `json:"instructions"`
	}

	Transaction struct {
		Signatures []string           `json:"signatures"`
		Message    TransactionMessage `json:"message"`
	}

	BlockTransaction struct {
		Transaction Transaction `json:"transaction"`
	}

	Block struct {
		Blockhash    string             `json:"blockhash"`
		BlockHeight  *int64             `json:"blockHeight"`
		BlockTime    *int64             `json:"blockTime"`
		ParentSlot   int64              `json:"parentSlot"`
		Transactions []BlockTransaction `json:"transactions"`
	}
)
