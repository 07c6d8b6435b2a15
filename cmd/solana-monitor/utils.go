package main

import (
	"errors"
	"fmt"

	"github.com/nodewatch/solana-monitor/pkg/rpc"
)

func BoolToFloat64(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// ExtractHealthAndNumSlotsBehind interprets a getHealth result. An unhealthy
// node reports through the error channel, optionally carrying how many slots
// it lags behind the cluster (see https://solana.com/docs/rpc/http/gethealth).
func ExtractHealthAndNumSlotsBehind(health string, getHealthErr error) (
	isHealthy bool, isHealthyErr error, numSlotsBehind int64, numSlotsBehindErr error,
) {
	if health != "ok" {
		// a non-"ok" result must come with an error
		if getHealthErr == nil {
			err := fmt.Errorf("health check did not return 'ok' (%s) but no error", health)
			return false, err, 0, err
		}

		var rpcError *rpc.Error
		if ok := errors.As(getHealthErr, &rpcError); !ok || rpcError.Code != rpc.NodeUnhealthyCode {
			err := fmt.Errorf("failed to call getHealth: %w", getHealthErr)
			return false, err, 0, err
		}

		// a generic node-unhealthy error carries no lag information
		if rpcError.Data == nil {
			return false, nil, 0, fmt.Errorf("unhealthy node but cannot determine numSlotsBehind: %w", getHealthErr)
		}

		var errorData rpc.NodeUnhealthyErrorData
		if err := rpc.UnpackRpcErrorData(rpcError, &errorData); err != nil {
			return false, nil, 0, fmt.Errorf("failed to unpack RPC error data: %w", err)
		}
		return false, nil, errorData.NumSlotsBehind, nil
	}

	if getHealthErr != nil {
		err := fmt.Errorf("health check returned 'ok' and error: %w", getHealthErr)
		return false, err, 0, err
	}
	return true, nil, 0, nil
}
