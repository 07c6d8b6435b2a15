package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

const (
	testNodekey = "B97CCUW3AEZFGy6uUg6zUdnNYvnVq5VG8PUtb2HayTDD"
	testVotekey = "3ZT31jkAGhUaw8jsy4bTknwBMP8i4Eueh52By4zXcsVw"
)

func newTestMonitor(t *testing.T, results map[string]any) (*MockServerFixture, *Monitor) {
	t.Helper()
	mock := rpc.NewMockServer(t, results, nil)
	logs := NewLogStore(100)
	m := New(mock.URL(), logs, WithHTTPTimeout(time.Second), WithWorkers(2),
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }))
	t.Cleanup(m.Close)
	return &MockServerFixture{Server: mock, Logs: logs}, m
}

// MockServerFixture bundles the mock node with the log store under test.
type MockServerFixture struct {
	Server *rpc.MockServer
	Logs   *LogStore
}

func (f *MockServerFixture) assertBracketed(t *testing.T, op string, final EntryKind) {
	t.Helper()
	entries := f.Logs.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, KindRequest, entries[0].Kind)
	assert.Equal(t, op, entries[0].Operation)
	assert.Equal(t, final, entries[1].Kind)
	assert.Equal(t, op, entries[1].Operation)
	assert.False(t, entries[1].Time.Before(entries[0].Time))
}

func TestMonitor_FetchSlotInfo(t *testing.T) {
	fixture, m := newTestMonitor(t, map[string]any{
		"getSlot": 995,
		"getEpochInfo": map[string]int64{
			"absoluteSlot": 1000, "epoch": 27, "slotIndex": 200, "slotsInEpoch": 432_000,
		},
	})

	info, err := m.FetchSlotInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &SlotInfo{CurrentSlot: 995, AbsoluteSlot: 1000, Epoch: 27}, info)
	fixture.assertBracketed(t, "getSlot + getEpochInfo", KindResponse)
}

func TestMonitor_FetchSlotInfo_TransportError(t *testing.T) {
	logs := NewLogStore(100)
	m := New("http://127.0.0.1:1", logs, WithHTTPTimeout(100*time.Millisecond), WithWorkers(1))
	t.Cleanup(m.Close)

	_, err := m.FetchSlotInfo(context.Background())
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindTransport, opErr.Kind)
	assert.Equal(t, "getSlot + getEpochInfo", opErr.Op)
	assert.Equal(t, "http://127.0.0.1:1", opErr.URL)

	entries := logs.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, KindRequest, entries[0].Kind)
	assert.Equal(t, KindError, entries[1].Kind)
}

func TestMonitor_FetchValidators(t *testing.T) {
	fixture, m := newTestMonitor(t, map[string]any{
		"getVoteAccounts": map[string]any{
			"current": []map[string]any{
				{
					"nodePubkey":     testNodekey,
					"votePubkey":     testVotekey,
					"commission":     5,
					"lastVote":       999,
					"rootSlot":       950,
					"activatedStake": 42 * rpc.LamportsInSol,
					"epochCredits":   [][]int64{{760, 100, 0}, {761, 216_100, 100}},
				},
			},
			"delinquent": []map[string]any{
				{
					"nodePubkey":     "bad key",
					"votePubkey":     testVotekey,
					"commission":     100,
					"lastVote":       10,
					"rootSlot":       5,
					"activatedStake": 1,
					"epochCredits":   [][]int64{},
				},
			},
		},
	})

	validators, err := m.FetchValidators(context.Background())
	require.NoError(t, err)
	require.Len(t, validators, 2)

	current := validators[0]
	assert.Equal(t, MustParsePubkey(testNodekey), current.Identity)
	assert.Equal(t, MustParsePubkey(testVotekey), current.VoteAccount)
	assert.Equal(t, int64(5), current.Commission)
	assert.Equal(t, int64(216_100), current.VoteCredits)
	assert.InDelta(t, 50, current.SkipRate, 1e-9)
	assert.False(t, current.Delinquent)

	// unparseable identity defaults to the zero key, never failing the batch
	delinquent := validators[1]
	assert.True(t, delinquent.Identity.IsZero())
	assert.True(t, delinquent.Delinquent)
	assert.Zero(t, delinquent.SkipRate)

	fixture.assertBracketed(t, "getVoteAccounts", KindResponse)
}

func TestMonitor_FetchClusterNodes(t *testing.T) {
	gossip, version := "10.0.0.1:8001", "2.0.15"
	fixture, m := newTestMonitor(t, map[string]any{
		"getClusterNodes": []map[string]any{
			{"pubkey": testNodekey, "gossip": gossip, "version": version},
			{"pubkey": "unparseable"},
		},
	})

	nodes, err := m.FetchClusterNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, MustParsePubkey(testNodekey), nodes[0].Pubkey)
	assert.Equal(t, gossip, nodes[0].Gossip)
	assert.Equal(t, version, nodes[0].Version)

	assert.True(t, nodes[1].Pubkey.IsZero())
	assert.Equal(t, "Unknown", nodes[1].Gossip)

	fixture.assertBracketed(t, "getClusterNodes", KindResponse)
}

func TestMonitor_FindVotersInSlot(t *testing.T) {
	fixture, m := newTestMonitor(t, map[string]any{
		"getBlock": map[string]any{
			"blockhash":  "hash",
			"parentSlot": 99,
			"transactions": []map[string]any{
				{
					"transaction": map[string]any{
						"signatures": []string{"sig-1"},
						"message": map[string]any{
							"accountKeys": []string{testVotekey, VoteProgram},
							"instructions": []map[string]any{
								{"programIdIndex": 1, "accounts": []int{0}},
							},
						},
					},
				},
			},
		},
	})

	info, err := m.FindVotersInSlot(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), info.Slot)
	assert.Equal(t, 1, info.TotalVoters)
	assert.Contains(t, info.Voters, testVotekey)
	require.Len(t, info.VoteTransactions, 1)
	assert.Equal(t, VoteTransactionInfo{VoteAccount: testVotekey, Signature: "sig-1"}, info.VoteTransactions[0])

	fixture.assertBracketed(t, "getBlock", KindResponse)
}

func TestMonitor_FindVotersInSlot_SkippedSlot(t *testing.T) {
	mock := rpc.NewMockServer(t, nil, map[string]*rpc.Error{
		"getBlock": {Code: rpc.SlotSkippedCode, Message: "Slot 100 was skipped"},
	})
	logs := NewLogStore(100)
	m := New(mock.URL(), logs, WithHTTPTimeout(time.Second), WithWorkers(1))
	t.Cleanup(m.Close)

	_, err := m.FindVotersInSlot(context.Background(), 100)
	require.Error(t, err)

	// a skipped slot is reported distinctly from a transport failure
	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindNotFound, opErr.Kind)

	var rpcErr *rpc.Error
	require.True(t, errors.As(err, &rpcErr))
	assert.Equal(t, rpc.SlotSkippedCode, rpcErr.Code)

	entries := logs.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, KindError, entries[1].Kind)
}

func leaderScheduleResults(schedule map[string][]int64) map[string]any {
	return map[string]any{
		"getSlot": 1000,
		"getEpochInfo": map[string]int64{
			"absoluteSlot": 1000, "epoch": 27, "slotIndex": 200, "slotsInEpoch": 432_000,
		},
		"getEpochSchedule": map[string]any{
			"slotsPerEpoch": 432_000, "firstNormalSlot": 524_256, "firstNormalEpoch": 14,
		},
		"getLeaderSchedule": schedule,
	}
}

func TestMonitor_FetchLeaderSchedule(t *testing.T) {
	fixture, m := newTestMonitor(t, leaderScheduleResults(map[string][]int64{
		// relative to the epoch start slot of 800; deliberately unsorted
		testNodekey: {300, 150, 250},
	}))

	info, err := m.FetchLeaderSchedule(context.Background(), testNodekey, nil)
	require.NoError(t, err)
	assert.Equal(t, testNodekey, info.ValidatorIdentity)
	assert.Equal(t, int64(27), info.TargetEpoch)
	assert.Equal(t, 3, info.TotalSlots)

	// sorted ascending by absolute slot (epoch start 800 + relative index)
	require.Len(t, info.LeaderSlots, 3)
	assert.Equal(t, int64(950), info.LeaderSlots[0].Slot)
	assert.Equal(t, int64(1050), info.LeaderSlots[1].Slot)
	assert.Equal(t, int64(1100), info.LeaderSlots[2].Slot)

	// slot 950 is 50 slots behind the current slot of 1000, so 20s in the past
	now := time.Unix(1_700_000_000, 0)
	assert.Equal(t, now.Add(-20*time.Second), info.LeaderSlots[0].Time)
	assert.Equal(t, "20s ago", info.LeaderSlots[0].TimeDiff)
	assert.Equal(t, "20s", info.LeaderSlots[1].TimeDiff)

	// the next upcoming slot is the first one after the query-time snapshot
	require.NotNil(t, info.NextLeaderSlot)
	assert.Equal(t, int64(1050), info.NextLeaderSlot.Slot)

	fixture.assertBracketed(t, "getLeaderSchedule", KindResponse)
}

func TestMonitor_FetchLeaderSchedule_AbsentIdentity(t *testing.T) {
	fixture, m := newTestMonitor(t, leaderScheduleResults(map[string][]int64{
		testVotekey: {1, 2, 3},
	}))

	info, err := m.FetchLeaderSchedule(context.Background(), testNodekey, nil)
	require.NoError(t, err)
	assert.Zero(t, info.TotalSlots)
	assert.Empty(t, info.LeaderSlots)
	assert.Nil(t, info.NextLeaderSlot)

	fixture.assertBracketed(t, "getLeaderSchedule", KindResponse)
}

func TestMonitor_FetchLeaderSchedule_NullSchedule(t *testing.T) {
	fixture, m := newTestMonitor(t, leaderScheduleResults(nil))

	info, err := m.FetchLeaderSchedule(context.Background(), testNodekey, nil)
	require.NoError(t, err)
	assert.Zero(t, info.TotalSlots)
	assert.Nil(t, info.NextLeaderSlot)

	fixture.assertBracketed(t, "getLeaderSchedule", KindResponse)
}

func TestMonitor_FetchLeaderSchedule_ExplicitEpoch(t *testing.T) {
	_, m := newTestMonitor(t, leaderScheduleResults(map[string][]int64{
		testNodekey: {0},
	}))

	epoch := int64(20)
	info, err := m.FetchLeaderSchedule(context.Background(), testNodekey, &epoch)
	require.NoError(t, err)
	assert.Equal(t, int64(20), info.TargetEpoch)
	require.Len(t, info.LeaderSlots, 1)
	// epoch 20 starts at firstNormalSlot + 19 * slotsPerEpoch
	assert.Equal(t, int64(524_256+19*432_000), info.LeaderSlots[0].Slot)
	assert.Equal(t, int64(20), info.LeaderSlots[0].Epoch)
}

func TestMonitor_FetchLeaderSchedule_BadIdentity(t *testing.T) {
	fixture, m := newTestMonitor(t, leaderScheduleResults(nil))

	_, err := m.FetchLeaderSchedule(context.Background(), "not-a-pubkey", nil)
	require.Error(t, err)

	var opErr *OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, KindParse, opErr.Kind)

	fixture.assertBracketed(t, "getLeaderSchedule", KindError)
}

func TestMonitor_ConcurrentOperations(t *testing.T) {
	_, m := newTestMonitor(t, map[string]any{
		"getSlot": 995,
		"getEpochInfo": map[string]int64{
			"absoluteSlot": 1000, "epoch": 27, "slotIndex": 200, "slotsInEpoch": 432_000,
		},
		"getClusterNodes": []map[string]any{{"pubkey": testNodekey}},
	})

	done := make(chan error, 8)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := m.FetchSlotInfo(context.Background())
			done <- err
		}()
		go func() {
			_, err := m.FetchClusterNodes(context.Background())
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}

	// each operation is individually bracketed even under interleaving
	counts := m.Logs().CountByKind()
	assert.Equal(t, 8, counts[KindRequest])
	assert.Equal(t, 8, counts[KindResponse])
	assert.Zero(t, counts[KindError])
}
