// Package monitor is the data-acquisition and derivation core of the
// validator monitor. It issues RPC calls on a worker pool so callers never
// block, converts raw node responses into stable records, derives metrics
// such as skip rate and leader-slot timing, and records an auditable
// request/response/error trail in a shared LogStore.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultWorkers     = 8
)

type options struct {
	httpTimeout time.Duration
	workers     int
	now         func() time.Time
}

// Option configures a Monitor at construction.
type Option func(*options)

// WithHTTPTimeout sets the per-call HTTP timeout of the underlying client.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(o *options) { o.httpTimeout = timeout }
}

// WithWorkers sets the size of the worker pool blocking calls are dispatched to.
func WithWorkers(workers int) Option {
	return func(o *options) { o.workers = workers }
}

// WithClock overrides wall-clock sampling, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Monitor orchestrates RPC queries against one endpoint. It is a lightweight
// handle: copies share the log store, the worker pool and the HTTP client,
// and duplicate no connection state. Every operation records exactly one
// request entry before network I/O and exactly one response or error entry
// after, and performs the round trip on the pool so the calling goroutine's
// scheduler stays responsive.
type Monitor struct {
	rpcURL string
	logs   *LogStore
	client *rpc.Client
	pool   pond.Pool
	now    func() time.Time
}

// New creates a Monitor for the given endpoint, logging to the provided store.
func New(rpcURL string, logs *LogStore, opts ...Option) *Monitor {
	o := options{httpTimeout: defaultHTTPTimeout, workers: defaultWorkers, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Monitor{
		rpcURL: rpcURL,
		logs:   logs,
		client: rpc.NewRPCClient(rpcURL, o.httpTimeout),
		pool:   pond.NewPool(o.workers),
		now:    o.now,
	}
}

// URL returns the endpoint this monitor queries. It is fixed for the
// monitor's lifetime.
func (m *Monitor) URL() string {
	return m.rpcURL
}

// Logs returns the shared log store.
func (m *Monitor) Logs() *LogStore {
	return m.logs
}

// Close stops the worker pool, waiting for in-flight calls to complete.
func (m *Monitor) Close() {
	m.pool.StopAndWait()
}

func (m *Monitor) opError(op string, err error) error {
	return &OpError{Op: op, URL: m.rpcURL, Kind: classifyRPCError(err), Err: err}
}

// FetchSlotInfo returns the node's current slot and epoch position.
func (m *Monitor) FetchSlotInfo(ctx context.Context) (*SlotInfo, error) {
	const op = "getSlot + getEpochInfo"
	m.logs.Request(op, m.rpcURL, fmt.Sprintf("endpoint: %s", m.rpcURL))

	var info *SlotInfo
	err := m.pool.SubmitErr(func() error {
		currentSlot, err := m.client.GetSlot(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		epochInfo, err := m.client.GetEpochInfo(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		info = &SlotInfo{CurrentSlot: currentSlot, AbsoluteSlot: epochInfo.AbsoluteSlot, Epoch: epochInfo.Epoch}
		return nil
	}).Wait()
	if err != nil {
		m.logs.Error(op, m.rpcURL, err.Error())
		return nil, m.opError(op, err)
	}

	m.logs.Response(op, m.rpcURL,
		fmt.Sprintf("current: %d, latest: %d, epoch: %d", info.CurrentSlot, info.AbsoluteSlot, info.Epoch),
		"200 OK",
	)
	return info, nil
}

// FetchValidators returns a fresh snapshot of every voting validator,
// current and delinquent, with derived skip rates. One unparseable key in
// the batch becomes a zero key instead of failing the fetch.
func (m *Monitor) FetchValidators(ctx context.Context) ([]ValidatorInfo, error) {
	const op = "getVoteAccounts"
	m.logs.Request(op, m.rpcURL, fmt.Sprintf("endpoint: %s", m.rpcURL))

	var validators []ValidatorInfo
	err := m.pool.SubmitErr(func() error {
		voteAccounts, err := m.client.GetVoteAccounts(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		validators = make([]ValidatorInfo, 0, len(voteAccounts.Current)+len(voteAccounts.Delinquent))
		for _, account := range voteAccounts.Current {
			validators = append(validators, newValidatorInfo(account, false))
		}
		for _, account := range voteAccounts.Delinquent {
			validators = append(validators, newValidatorInfo(account, true))
		}
		return nil
	}).Wait()
	if err != nil {
		m.logs.Error(op, m.rpcURL, err.Error())
		return nil, m.opError(op, err)
	}

	m.logs.Response(op, m.rpcURL, fmt.Sprintf("Found %d validators", len(validators)), "200 OK")
	return validators, nil
}

// FetchClusterNodes returns every peer advertised in the gossip network.
func (m *Monitor) FetchClusterNodes(ctx context.Context) ([]GossipNodeInfo, error) {
	const op = "getClusterNodes"
	m.logs.Request(op, m.rpcURL, fmt.Sprintf("endpoint: %s", m.rpcURL))

	var nodes []GossipNodeInfo
	err := m.pool.SubmitErr(func() error {
		clusterNodes, err := m.client.GetClusterNodes(ctx)
		if err != nil {
			return err
		}
		nodes = make([]GossipNodeInfo, 0, len(clusterNodes))
		for _, node := range clusterNodes {
			nodes = append(nodes, newGossipNodeInfo(node))
		}
		return nil
	}).Wait()
	if err != nil {
		m.logs.Error(op, m.rpcURL, err.Error())
		return nil, m.opError(op, err)
	}

	m.logs.Response(op, m.rpcURL, fmt.Sprintf("Found %d gossip nodes", len(nodes)), "200 OK")
	return nodes, nil
}

// FindVotersInSlot fetches the block at the given slot and extracts its
// voting activity. A slot with no block (skipped, or purged from the node's
// ledger) fails with KindNotFound, distinct from transport failures.
func (m *Monitor) FindVotersInSlot(ctx context.Context, slot int64) (*SlotVoterInfo, error) {
	const op = "getBlock"
	m.logs.Request(op, m.rpcURL, fmt.Sprintf("slot: %d", slot))

	var voterInfo *SlotVoterInfo
	err := m.pool.SubmitErr(func() error {
		block, err := m.client.GetBlock(ctx, rpc.CommitmentConfirmed, slot, "full")
		if err != nil {
			return err
		}
		voterInfo = ScanBlockVoters(slot, block.Transactions)
		return nil
	}).Wait()
	if err != nil {
		m.logs.Error(op, m.rpcURL, err.Error())
		return nil, m.opError(op, err)
	}

	m.logs.Response(op, m.rpcURL,
		fmt.Sprintf("Found %d voters in slot %d", voterInfo.TotalVoters, voterInfo.Slot),
		"200 OK",
	)
	return voterInfo, nil
}

// FetchLeaderSchedule returns the validator's leader assignments for the
// target epoch, defaulting to the current epoch when targetEpoch is nil.
// An identity absent from the schedule is a successful empty result, not an
// error. Slot timestamps and deltas are projected from the query-time
// snapshot and become stale as time passes.
func (m *Monitor) FetchLeaderSchedule(
	ctx context.Context, identity string, targetEpoch *int64,
) (*LeaderScheduleInfo, error) {
	const op = "getLeaderSchedule"
	if targetEpoch != nil {
		m.logs.Request(op, m.rpcURL, fmt.Sprintf("identity: %s, epoch: %d", identity, *targetEpoch))
	} else {
		m.logs.Request(op, m.rpcURL, fmt.Sprintf("identity: %s, epoch: current", identity))
	}

	if _, err := ParsePubkey(identity); err != nil {
		m.logs.Error(op, m.rpcURL, err.Error())
		return nil, &OpError{Op: op, URL: m.rpcURL, Kind: KindParse, Err: err}
	}

	var scheduleInfo *LeaderScheduleInfo
	err := m.pool.SubmitErr(func() error {
		currentSlot, err := m.client.GetSlot(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		now := m.now()
		epochInfo, err := m.client.GetEpochInfo(ctx, rpc.CommitmentFinalized)
		if err != nil {
			return err
		}
		epochSchedule, err := m.client.GetEpochSchedule(ctx)
		if err != nil {
			return err
		}

		epochToFetch := epochInfo.Epoch
		if targetEpoch != nil {
			epochToFetch = *targetEpoch
		}
		epochStartSlot := EpochStartSlot(
			epochToFetch,
			epochInfo.Epoch,
			epochInfo.AbsoluteSlot,
			epochInfo.SlotIndex,
			epochSchedule.SlotsPerEpoch,
			epochSchedule.FirstNormalSlot,
		)

		// the schedule is addressed by any slot inside the target epoch
		querySlot := currentSlot
		if targetEpoch != nil {
			querySlot = epochStartSlot
		}
		schedule, err := m.client.GetLeaderSchedule(ctx, rpc.CommitmentFinalized, querySlot)
		if err != nil {
			return err
		}

		scheduleInfo = buildLeaderScheduleInfo(
			identity, epochToFetch, epochStartSlot, schedule[identity], currentSlot, now,
		)
		return nil
	}).Wait()
	if err != nil {
		m.logs.Error(op, m.rpcURL, err.Error())
		return nil, m.opError(op, err)
	}

	m.logs.Response(op, m.rpcURL,
		fmt.Sprintf(
			"Found %d leader slots for %s in epoch %d",
			scheduleInfo.TotalSlots, scheduleInfo.ValidatorIdentity, scheduleInfo.TargetEpoch,
		),
		"200 OK",
	)
	return scheduleInfo, nil
}

// buildLeaderScheduleInfo converts relative leader-slot indexes into sorted
// absolute slots with projected timestamps, and selects the next upcoming
// slot relative to the given instant.
func buildLeaderScheduleInfo(
	identity string, epoch, epochStartSlot int64, relativeSlots []int64, currentSlot int64, now time.Time,
) *LeaderScheduleInfo {
	info := &LeaderScheduleInfo{ValidatorIdentity: identity, TargetEpoch: epoch}

	nowTimestamp := now.Unix()
	for _, relativeSlot := range relativeSlots {
		absoluteSlot := epochStartSlot + relativeSlot
		slotTime := SlotTime(absoluteSlot, currentSlot, now)
		info.LeaderSlots = append(info.LeaderSlots, LeaderSlot{
			Epoch:    epoch,
			Slot:     absoluteSlot,
			Time:     slotTime,
			TimeDiff: FormatTimeDelta(nowTimestamp, slotTime.Unix()),
		})
	}

	sort.Slice(info.LeaderSlots, func(i, j int) bool {
		return info.LeaderSlots[i].Slot < info.LeaderSlots[j].Slot
	})
	info.TotalSlots = len(info.LeaderSlots)

	for i := range info.LeaderSlots {
		if info.LeaderSlots[i].Time.Unix() > nowTimestamp {
			next := info.LeaderSlots[i]
			info.NextLeaderSlot = &next
			break
		}
	}
	return info
}
