package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/nodewatch/solana-monitor/pkg/monitor"
	"github.com/nodewatch/solana-monitor/pkg/rpc"
	"github.com/nodewatch/solana-monitor/pkg/slog"
)

const (
	StateLabel    = "state"
	NodekeyLabel  = "nodekey"
	VotekeyLabel  = "votekey"
	VersionLabel  = "version"
	IdentityLabel = "identity"
	EpochLabel    = "epoch"
	KindLabel     = "kind"

	StateCurrent    = "current"
	StateDelinquent = "delinquent"
)

// MonitorCollector drives the monitor's fetch operations on every scrape and
// exposes the derived records as prometheus metrics.
type MonitorCollector struct {
	monitor   *monitor.Monitor
	rpcClient *rpc.Client
	config    *MonitorConfig
	logger    *zap.SugaredLogger

	/// descriptors:
	NodeVersion            *GaugeDesc
	NodeIsHealthy          *GaugeDesc
	NodeNumSlotsBehind     *GaugeDesc
	ClusterSlot            *GaugeDesc
	ClusterEpoch           *GaugeDesc
	ClusterValidatorCount  *GaugeDesc
	ClusterGossipNodeCount *GaugeDesc
	ValidatorActiveStake   *GaugeDesc
	ValidatorLastVote      *GaugeDesc
	ValidatorRootSlot      *GaugeDesc
	ValidatorCommission    *GaugeDesc
	ValidatorSkipRate      *GaugeDesc
	ValidatorDelinquent    *GaugeDesc
	LeaderSlotsTotal       *GaugeDesc
	NextLeaderSlot         *GaugeDesc
	LogEntries             *GaugeDesc
}

func NewMonitorCollector(m *monitor.Monitor, rpcClient *rpc.Client, config *MonitorConfig) *MonitorCollector {
	return &MonitorCollector{
		monitor:   m,
		rpcClient: rpcClient,
		config:    config,
		logger:    slog.Get(),
		NodeVersion: NewGaugeDesc(
			"solana_node_version",
			"Node version of solana",
			VersionLabel,
		),
		NodeIsHealthy: NewGaugeDesc(
			"solana_node_is_healthy",
			"Whether the node is healthy",
		),
		NodeNumSlotsBehind: NewGaugeDesc(
			"solana_node_num_slots_behind",
			"The number of slots that the node is behind the latest cluster confirmed slot.",
		),
		ClusterSlot: NewGaugeDesc(
			"solana_cluster_slot",
			"Current confirmed slot of the cluster",
		),
		ClusterEpoch: NewGaugeDesc(
			"solana_cluster_epoch",
			"Current epoch of the cluster",
		),
		ClusterValidatorCount: NewGaugeDesc(
			"solana_cluster_validator_count",
			fmt.Sprintf(
				"Total number of validators in the cluster, grouped by %s ('%s' or '%s')",
				StateLabel, StateCurrent, StateDelinquent,
			),
			StateLabel,
		),
		ClusterGossipNodeCount: NewGaugeDesc(
			"solana_cluster_gossip_node_count",
			"Total number of nodes advertised in the gossip network",
		),
		ValidatorActiveStake: NewGaugeDesc(
			"solana_validator_active_stake",
			fmt.Sprintf("Active stake (in SOL) per validator (represented by %s and %s)", VotekeyLabel, NodekeyLabel),
			VotekeyLabel, NodekeyLabel,
		),
		ValidatorLastVote: NewGaugeDesc(
			"solana_validator_last_vote",
			fmt.Sprintf("Last voted-on slot per validator (represented by %s and %s)", VotekeyLabel, NodekeyLabel),
			VotekeyLabel, NodekeyLabel,
		),
		ValidatorRootSlot: NewGaugeDesc(
			"solana_validator_root_slot",
			fmt.Sprintf("Root slot per validator (represented by %s and %s)", VotekeyLabel, NodekeyLabel),
			VotekeyLabel, NodekeyLabel,
		),
		ValidatorCommission: NewGaugeDesc(
			"solana_validator_commission",
			fmt.Sprintf("Validator commission, as a percentage (represented by %s and %s)", VotekeyLabel, NodekeyLabel),
			VotekeyLabel, NodekeyLabel,
		),
		ValidatorSkipRate: NewGaugeDesc(
			"solana_validator_skip_rate",
			fmt.Sprintf(
				"Estimated percentage of unvoted slots in the latest epoch (represented by %s and %s)",
				VotekeyLabel, NodekeyLabel,
			),
			VotekeyLabel, NodekeyLabel,
		),
		ValidatorDelinquent: NewGaugeDesc(
			"solana_validator_delinquent",
			fmt.Sprintf("Whether a validator (represented by %s and %s) is delinquent", VotekeyLabel, NodekeyLabel),
			VotekeyLabel, NodekeyLabel,
		),
		LeaderSlotsTotal: NewGaugeDesc(
			"solana_validator_leader_slots_total",
			fmt.Sprintf("Number of leader slots assigned to %s in %s", IdentityLabel, EpochLabel),
			IdentityLabel, EpochLabel,
		),
		NextLeaderSlot: NewGaugeDesc(
			"solana_validator_next_leader_slot",
			fmt.Sprintf("Next upcoming leader slot of %s (0 when none remain)", IdentityLabel),
			IdentityLabel,
		),
		LogEntries: NewGaugeDesc(
			"solana_monitor_log_entries",
			fmt.Sprintf("Number of retained request/response log entries, grouped by %s", KindLabel),
			KindLabel,
		),
	}
}

func (c *MonitorCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, desc := range []*GaugeDesc{
		c.NodeVersion, c.NodeIsHealthy, c.NodeNumSlotsBehind,
		c.ClusterSlot, c.ClusterEpoch, c.ClusterValidatorCount, c.ClusterGossipNodeCount,
		c.ValidatorActiveStake, c.ValidatorLastVote, c.ValidatorRootSlot, c.ValidatorCommission,
		c.ValidatorSkipRate, c.ValidatorDelinquent, c.LeaderSlotsTotal, c.NextLeaderSlot, c.LogEntries,
	} {
		ch <- desc.Desc
	}
}

func (c *MonitorCollector) Collect(ch chan<- prometheus.Metric) {
	ctx := context.Background()
	c.collectVersion(ctx, ch)
	c.collectHealth(ctx, ch)
	c.collectSlotInfo(ctx, ch)
	c.collectValidators(ctx, ch)
	c.collectClusterNodes(ctx, ch)
	c.collectLeaderSchedule(ctx, ch)
	c.collectLogCounts(ch)
}

func (c *MonitorCollector) collectVersion(ctx context.Context, ch chan<- prometheus.Metric) {
	version, err := c.rpcClient.GetVersion(ctx)
	if err != nil {
		c.logger.Errorf("failed to get version: %v", err)
		ch <- c.NodeVersion.NewInvalidMetric(err)
		return
	}
	ch <- c.NodeVersion.MustNewConstMetric(1, version)
}

func (c *MonitorCollector) collectHealth(ctx context.Context, ch chan<- prometheus.Metric) {
	health, err := c.rpcClient.GetHealth(ctx)
	isHealthy, isHealthyErr, numSlotsBehind, numSlotsBehindErr := ExtractHealthAndNumSlotsBehind(health, err)
	if isHealthyErr != nil {
		c.logger.Errorf("failed to determine node health: %v", isHealthyErr)
		ch <- c.NodeIsHealthy.NewInvalidMetric(isHealthyErr)
	} else {
		ch <- c.NodeIsHealthy.MustNewConstMetric(BoolToFloat64(isHealthy))
	}

	if numSlotsBehindErr != nil {
		c.logger.Errorf("failed to determine number of slots behind: %v", numSlotsBehindErr)
		ch <- c.NodeNumSlotsBehind.NewInvalidMetric(numSlotsBehindErr)
	} else {
		ch <- c.NodeNumSlotsBehind.MustNewConstMetric(float64(numSlotsBehind))
	}
}

func (c *MonitorCollector) collectSlotInfo(ctx context.Context, ch chan<- prometheus.Metric) {
	info, err := c.monitor.FetchSlotInfo(ctx)
	if err != nil {
		c.logger.Errorf("failed to fetch slot info: %v", err)
		return
	}
	ch <- c.ClusterSlot.MustNewConstMetric(float64(info.CurrentSlot))
	ch <- c.ClusterEpoch.MustNewConstMetric(float64(info.Epoch))
}

func (c *MonitorCollector) collectValidators(ctx context.Context, ch chan<- prometheus.Metric) {
	validators, err := c.monitor.FetchValidators(ctx)
	if err != nil {
		c.logger.Errorf("failed to fetch validators: %v", err)
		return
	}

	var current, delinquent float64
	for _, validator := range validators {
		if validator.Delinquent {
			delinquent++
		} else {
			current++
		}

		nodekey := validator.Identity.String()
		if !c.config.ComprehensiveValidatorTracking && !slices.Contains(c.config.Nodekeys, nodekey) {
			continue
		}
		votekey := validator.VoteAccount.String()
		ch <- c.ValidatorActiveStake.MustNewConstMetric(
			float64(validator.ActivatedStake)/rpc.LamportsInSol, votekey, nodekey,
		)
		ch <- c.ValidatorLastVote.MustNewConstMetric(float64(validator.LastVote), votekey, nodekey)
		ch <- c.ValidatorRootSlot.MustNewConstMetric(float64(validator.RootSlot), votekey, nodekey)
		ch <- c.ValidatorCommission.MustNewConstMetric(float64(validator.Commission), votekey, nodekey)
		ch <- c.ValidatorSkipRate.MustNewConstMetric(validator.SkipRate, votekey, nodekey)
		delinquentValue := 0.0
		if validator.Delinquent {
			delinquentValue = 1
		}
		ch <- c.ValidatorDelinquent.MustNewConstMetric(delinquentValue, votekey, nodekey)
	}

	ch <- c.ClusterValidatorCount.MustNewConstMetric(current, StateCurrent)
	ch <- c.ClusterValidatorCount.MustNewConstMetric(delinquent, StateDelinquent)
}

func (c *MonitorCollector) collectClusterNodes(ctx context.Context, ch chan<- prometheus.Metric) {
	nodes, err := c.monitor.FetchClusterNodes(ctx)
	if err != nil {
		c.logger.Errorf("failed to fetch cluster nodes: %v", err)
		return
	}
	ch <- c.ClusterGossipNodeCount.MustNewConstMetric(float64(len(nodes)))
}

func (c *MonitorCollector) collectLeaderSchedule(ctx context.Context, ch chan<- prometheus.Metric) {
	if c.config.LeaderIdentity == "" {
		return
	}
	schedule, err := c.monitor.FetchLeaderSchedule(ctx, c.config.LeaderIdentity, nil)
	if err != nil {
		c.logger.Errorf("failed to fetch leader schedule: %v", err)
		return
	}
	ch <- c.LeaderSlotsTotal.MustNewConstMetric(
		float64(schedule.TotalSlots), schedule.ValidatorIdentity, strconv.FormatInt(schedule.TargetEpoch, 10),
	)
	nextSlot := 0.0
	if schedule.NextLeaderSlot != nil {
		nextSlot = float64(schedule.NextLeaderSlot.Slot)
	}
	ch <- c.NextLeaderSlot.MustNewConstMetric(nextSlot, schedule.ValidatorIdentity)
}

func (c *MonitorCollector) collectLogCounts(ch chan<- prometheus.Metric) {
	counts := c.monitor.Logs().CountByKind()
	for _, kind := range []monitor.EntryKind{
		monitor.KindRequest, monitor.KindResponse, monitor.KindError, monitor.KindUpdate,
	} {
		ch <- c.LogEntries.MustNewConstMetric(float64(counts[kind]), string(kind))
	}
}
