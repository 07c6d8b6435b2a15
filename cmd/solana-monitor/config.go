package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/nodewatch/solana-monitor/pkg/monitor"
	"github.com/nodewatch/solana-monitor/pkg/slog"
)

type (
	arrayFlags []string

	MonitorConfig struct {
		HttpTimeout                    time.Duration
		RpcUrl                         string
		ListenAddress                  string
		Nodekeys                       []string
		LeaderIdentity                 string
		LogCapacity                    int
		ComprehensiveValidatorTracking bool
	}
)

func (i *arrayFlags) String() string {
	return fmt.Sprint(*i)
}

func (i *arrayFlags) Set(value string) error {
	*i = append(*i, value)
	return nil
}

func NewMonitorConfig(
	httpTimeout time.Duration,
	rpcUrl string,
	cluster string,
	listenAddress string,
	nodekeys []string,
	leaderIdentity string,
	logCapacity int,
	comprehensiveValidatorTracking bool,
) (*MonitorConfig, error) {
	logger := slog.Get()
	logger.Infow(
		"Setting up monitor config with",
		"httpTimeout", httpTimeout.Seconds(),
		"rpcUrl", rpcUrl,
		"cluster", cluster,
		"listenAddress", listenAddress,
		"nodekeys", nodekeys,
		"leaderIdentity", leaderIdentity,
		"logCapacity", logCapacity,
		"comprehensiveValidatorTracking", comprehensiveValidatorTracking,
	)

	if rpcUrl == "" {
		switch monitor.Cluster(cluster) {
		case monitor.ClusterMainnet, monitor.ClusterTestnet:
			rpcUrl = monitor.Cluster(cluster).URL()
		default:
			return nil, fmt.Errorf("unknown cluster %q (want %q or %q)", cluster, monitor.ClusterMainnet, monitor.ClusterTestnet)
		}
	}

	for _, nodekey := range nodekeys {
		if _, err := monitor.ParsePubkey(nodekey); err != nil {
			return nil, fmt.Errorf("invalid -nodekey: %w", err)
		}
	}
	if leaderIdentity != "" {
		if _, err := monitor.ParsePubkey(leaderIdentity); err != nil {
			return nil, fmt.Errorf("invalid -leader-identity: %w", err)
		}
	}

	config := MonitorConfig{
		HttpTimeout:                    httpTimeout,
		RpcUrl:                         rpcUrl,
		ListenAddress:                  listenAddress,
		Nodekeys:                       nodekeys,
		LeaderIdentity:                 leaderIdentity,
		LogCapacity:                    logCapacity,
		ComprehensiveValidatorTracking: comprehensiveValidatorTracking,
	}
	return &config, nil
}

func NewMonitorConfigFromCLI() (*MonitorConfig, error) {
	var (
		httpTimeout                    int
		rpcUrl                         string
		cluster                        string
		listenAddress                  string
		nodekeys                       arrayFlags
		leaderIdentity                 string
		logCapacity                    int
		comprehensiveValidatorTracking bool
	)
	flag.IntVar(
		&httpTimeout,
		"http-timeout",
		30,
		"HTTP timeout to use, in seconds.",
	)
	flag.StringVar(
		&rpcUrl,
		"rpc-url",
		"",
		"Solana RPC URL (including protocol and path), "+
			"e.g., 'http://localhost:8899' or 'https://api.mainnet-beta.solana.com'. "+
			"Overrides -cluster when set.",
	)
	flag.StringVar(
		&cluster,
		"cluster",
		string(monitor.ClusterMainnet),
		"Well-known cluster to monitor ('mainnet' or 'testnet'), used when -rpc-url is not set.",
	)
	flag.StringVar(
		&listenAddress,
		"listen-address",
		":8080",
		"Listen address for the metrics endpoint.",
	)
	flag.Var(
		&nodekeys,
		"nodekey",
		"Identity account of a validator to report per-validator metrics for - can be set multiple times.",
	)
	flag.StringVar(
		&leaderIdentity,
		"leader-identity",
		"",
		"Validator identity to fetch the leader schedule for.",
	)
	flag.IntVar(
		&logCapacity,
		"log-capacity",
		monitor.DefaultLogCapacity,
		"Maximum number of request/response log entries retained; older entries are evicted first.",
	)
	flag.BoolVar(
		&comprehensiveValidatorTracking,
		"comprehensive-validator-tracking",
		false,
		"Set this flag to report per-validator metrics for every validator in the cluster. "+
			"Warning: this will lead to potentially thousands of Prometheus metrics.",
	)
	flag.Parse()

	return NewMonitorConfig(
		time.Duration(httpTimeout)*time.Second,
		rpcUrl,
		cluster,
		listenAddress,
		nodekeys,
		leaderIdentity,
		logCapacity,
		comprehensiveValidatorTracking,
	)
}
