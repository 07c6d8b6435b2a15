package rpc

import (
	"encoding/json"
	"fmt"
)

// JSON-RPC error codes returned by Solana nodes.
// See https://github.com/anza-xyz/agave/blob/master/rpc-client-api/src/custom_error.rs
const (
	BlockCleanedUpCode             = -32001
	BlockNotAvailableCode          = -32004
	NodeUnhealthyCode              = -32005
	SlotSkippedCode                = -32007
	LongTermStorageSlotSkippedCode = -32009
)

type (
	// Error is a JSON-RPC error object, annotated with the method that produced it.
	Error struct {
		Code    int            `json:"code"`
		Message string         `json:"message"`
		Data    map[string]any `json:"data,omitempty"`
		Method  string         `json:"-"`
	}

	// NodeUnhealthyErrorData is the Data payload of a NodeUnhealthyCode error.
	NodeUnhealthyErrorData struct {
		NumSlotsBehind int64 `json:"numSlotsBehind"`
	}
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s rpc error (code: %d): %s", e.Method, e.Code, e.Message)
}

// SlotNotFoundCode returns whether the code identifies a slot for which no block
// can be served, i.e. a skipped slot or one purged from the node's ledger.
func SlotNotFoundCode(code int) bool {
	switch code {
	case BlockCleanedUpCode, BlockNotAvailableCode, SlotSkippedCode, LongTermStorageSlotSkippedCode:
		return true
	}
	return false
}

// UnpackRpcErrorData decodes the Data field of an rpc error into the provided target.
func UnpackRpcErrorData[T any](rpcErr *Error, formattedData T) error {
	bytesData, err := json.Marshal(rpcErr.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s rpc error data: %w", rpcErr.Method, err)
	}
	if err = json.Unmarshal(bytesData, formattedData); err != nil {
		return fmt.Errorf("failed to unmarshal %s rpc error data: %w", rpcErr.Method, err)
	}
	return nil
}
