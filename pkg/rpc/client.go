// Package rpc implements a minimal JSON-RPC client for the Solana HTTP API,
// covering the methods needed to monitor validators, gossip nodes, blocks
// and leader schedules.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type (
	Client struct {
		HttpClient  http.Client
		RpcUrl      string
		HttpTimeout time.Duration
	}

	rpcRequest struct {
		Version string `json:"jsonrpc"`
		ID      int    `json:"id"`
		Method  string `json:"method"`
		Params  []any  `json:"params"`
	}

	Commitment string
)

const (
	// LamportsInSol is the number of lamports in 1 SOL.
	LamportsInSol = 1_000_000_000

	// CommitmentProcessed level represents a transaction that has been received by the cluster.
	CommitmentProcessed Commitment = "processed"
	// CommitmentConfirmed level represents a transaction that has been confirmed by the cluster.
	CommitmentConfirmed Commitment = "confirmed"
	// CommitmentFinalized level represents a transaction that has been finalized by the cluster.
	CommitmentFinalized Commitment = "finalized"
)

func NewRPCClient(rpcAddr string, httpTimeout time.Duration) *Client {
	return &Client{HttpClient: http.Client{}, RpcUrl: rpcAddr, HttpTimeout: httpTimeout}
}

func (c *Client) rpcRequest(ctx context.Context, data []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.HttpTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RpcUrl, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("content-type", "application/json")

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

type response[T any] struct {
	Result T      `json:"result"`
	Error  Error  `json:"error"`
	Id     int    `json:"id"`
	Rpc    string `json:"jsonrpc"`
}

func getResponse[T any](
	ctx context.Context, client *Client, method string, params []any, rpcResponse *response[T],
) error {
	request := &rpcRequest{Version: "2.0", ID: 1, Method: method, Params: params}
	buffer, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	data, err := client.rpcRequest(ctx, buffer)
	if err != nil {
		return fmt.Errorf("%s RPC call failed: %w", method, err)
	}
	if err = json.Unmarshal(data, rpcResponse); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if rpcResponse.Error.Code != 0 {
		rpcResponse.Error.Method = method
		return &rpcResponse.Error
	}
	return nil
}

// GetSlot returns the slot that has reached the given commitment level.
// See API docs: https://solana.com/docs/rpc/http/getslot
func (c *Client) GetSlot(ctx context.Context, commitment Commitment) (int64, error) {
	var resp response[int64]
	if err := getResponse(ctx, c, "getSlot", []any{commitmentConfig(commitment)}, &resp); err != nil {
		return 0, err
	}
	return resp.Result, nil
}

// GetEpochInfo returns information about the current epoch.
// See API docs: https://solana.com/docs/rpc/http/getepochinfo
func (c *Client) GetEpochInfo(ctx context.Context, commitment Commitment) (*EpochInfo, error) {
	var resp response[EpochInfo]
	if err := getResponse(ctx, c, "getEpochInfo", []any{commitmentConfig(commitment)}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// GetEpochSchedule returns the epoch schedule information from this cluster's genesis config.
// See API docs: https://solana.com/docs/rpc/http/getepochschedule
func (c *Client) GetEpochSchedule(ctx context.Context) (*EpochSchedule, error) {
	var resp response[EpochSchedule]
	if err := getResponse(ctx, c, "getEpochSchedule", []any{}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// GetVoteAccounts returns the account info and associated stake for all the voting accounts
// in the current bank.
// See API docs: https://solana.com/docs/rpc/http/getvoteaccounts
func (c *Client) GetVoteAccounts(ctx context.Context, commitment Commitment) (*VoteAccounts, error) {
	var resp response[VoteAccounts]
	if err := getResponse(ctx, c, "getVoteAccounts", []any{commitmentConfig(commitment)}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// GetClusterNodes returns information about all the nodes participating in the cluster.
// See API docs: https://solana.com/docs/rpc/http/getclusternodes
func (c *Client) GetClusterNodes(ctx context.Context) ([]ContactInfo, error) {
	var resp response[[]ContactInfo]
	if err := getResponse(ctx, c, "getClusterNodes", []any{}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetBlock returns identity and transaction information about a confirmed block in the ledger.
// See API docs: https://solana.com/docs/rpc/http/getblock
func (c *Client) GetBlock(
	ctx context.Context, commitment Commitment, slot int64, transactionDetails string,
) (*Block, error) {
	if commitment == CommitmentProcessed {
		return nil, fmt.Errorf("commitment %v is not supported for getBlock", CommitmentProcessed)
	}
	config := map[string]any{
		"encoding":                       "json",
		"commitment":                     string(commitment),
		"transactionDetails":             transactionDetails,
		"rewards":                        false,
		"maxSupportedTransactionVersion": 0,
	}
	var resp response[Block]
	if err := getResponse(ctx, c, "getBlock", []any{slot, config}, &resp); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// GetLeaderSchedule returns the leader schedule for the epoch containing the given slot.
// The schedule maps each validator identity to the slot indexes (relative to the first slot
// of the epoch) it is scheduled to lead.
// See API docs: https://solana.com/docs/rpc/http/getleaderschedule
func (c *Client) GetLeaderSchedule(
	ctx context.Context, commitment Commitment, slot int64,
) (map[string][]int64, error) {
	var resp response[map[string][]int64]
	if err := getResponse(ctx, c, "getLeaderSchedule", []any{slot, commitmentConfig(commitment)}, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// GetVersion returns the current Solana version running on the node.
// See API docs: https://solana.com/docs/rpc/http/getversion
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	var resp response[struct {
		Version string `json:"solana-core"`
	}]
	if err := getResponse(ctx, c, "getVersion", []any{}, &resp); err != nil {
		return "", err
	}
	return resp.Result.Version, nil
}

// GetHealth returns the current health of the node. A healthy node is one that is within
// a blockhash-based slot distance from the latest cluster confirmed slot.
// See API docs: https://solana.com/docs/rpc/http/gethealth
func (c *Client) GetHealth(ctx context.Context) (string, error) {
	var resp response[string]
	if err := getResponse(ctx, c, "getHealth", []any{}, &resp); err != nil {
		return "", err
	}
	return resp.Result, nil
}

func commitmentConfig(commitment Commitment) map[string]string {
	return map[string]string{"commitment": string(commitment)}
}
