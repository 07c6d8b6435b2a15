package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodewatch/solana-monitor/pkg/monitor"
	"github.com/nodewatch/solana-monitor/pkg/rpc"
	"github.com/nodewatch/solana-monitor/pkg/slog"
)

func main() {
	slog.Init()
	logger := slog.Get()

	config, err := NewMonitorConfigFromCLI()
	if err != nil {
		logger.Fatal(err)
	}
	if config.ComprehensiveValidatorTracking {
		logger.Warn(
			"Comprehensive validator tracking will lead to potentially thousands of " +
				"Prometheus metrics being created on every scrape.",
		)
	}

	logs := monitor.NewLogStore(config.LogCapacity)
	m := monitor.New(config.RpcUrl, logs, monitor.WithHTTPTimeout(config.HttpTimeout))
	defer m.Close()
	logs.Update("monitor", "Monitoring "+config.RpcUrl, "OK")

	rpcClient := rpc.NewRPCClient(config.RpcUrl, config.HttpTimeout)
	collector := NewMonitorCollector(m, rpcClient, config)
	prometheus.MustRegister(collector)

	http.Handle("/metrics", promhttp.Handler())
	logger.Infof("listening on %s", config.ListenAddress)
	logger.Fatal(http.ListenAndServe(config.ListenAddress, nil))
}
