package monitor

import (
	"fmt"

	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

// Cluster identifies a well-known Solana network.
type Cluster string

const (
	ClusterMainnet Cluster = "mainnet"
	ClusterTestnet Cluster = "testnet"
)

// URL returns the public RPC endpoint for the cluster.
func (c Cluster) URL() string {
	switch c {
	case ClusterTestnet:
		return "https://api.testnet.solana.com"
	default:
		return "https://api.mainnet-beta.solana.com"
	}
}

// Name returns the display name for the cluster.
func (c Cluster) Name() string {
	switch c {
	case ClusterTestnet:
		return "Testnet"
	default:
		return "Mainnet"
	}
}

// FormatStake renders a lamport amount as SOL.
func FormatStake(lamports int64) string {
	return fmt.Sprintf("%.2f SOL", float64(lamports)/float64(rpc.LamportsInSol))
}

// FormatSkipRate renders a skip rate as a percentage.
func FormatSkipRate(skipRate float64) string {
	return fmt.Sprintf("%.2f%%", skipRate)
}
