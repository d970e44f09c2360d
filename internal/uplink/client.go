// Package uplink is the gRPC client for the record sync server.
package uplink

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"

	callsyncv1 "github.com/sebas/callkeeper/pkg/callsync/v1"
)

// Config holds uplink client configuration.
type Config struct {
	Address           string
	DeviceID          string
	ConnectTimeout    time.Duration
	KeepaliveInterval time.Duration
	KeepaliveTimeout  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:           "localhost:9815",
		ConnectTimeout:    10 * time.Second,
		KeepaliveInterval: 30 * time.Second,
		KeepaliveTimeout:  10 * time.Second,
	}
}

// Client talks to the sync server.
type Client struct {
	conn     *grpc.ClientConn
	client   callsyncv1.CallSyncClient
	deviceID string
}

// NewClient creates a connected uplink client.
func NewClient(cfg Config) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.KeepaliveInterval,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
	}

	conn, err := grpc.NewClient(cfg.Address, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sync client for %s: %w", cfg.Address, err)
	}

	slog.Info("[Uplink] Sync client ready", "address", cfg.Address)
	return &Client{
		conn:     conn,
		client:   callsyncv1.NewCallSyncClient(conn),
		deviceID: cfg.DeviceID,
	}, nil
}

// PushRecords uploads work call records.
func (c *Client) PushRecords(ctx context.Context, records []callsyncv1.RecordPayload) error {
	resp, err := c.client.PushRecords(ctx, &callsyncv1.PushRequest{
		DeviceID: c.deviceID,
		Records:  records,
	})
	if err != nil {
		return fmt.Errorf("PushRecords RPC failed: %w", err)
	}
	slog.Debug("[Uplink] Records pushed", "count", len(records), "accepted", resp.Accepted)
	return nil
}

// PushAnonymized uploads anonymized personal call shapes.
func (c *Client) PushAnonymized(ctx context.Context, calls []callsyncv1.AnonymizedCall) error {
	resp, err := c.client.PushAnonymized(ctx, &callsyncv1.AnonymizedBatch{
		DeviceID: c.deviceID,
		Calls:    calls,
	})
	if err != nil {
		return fmt.Errorf("PushAnonymized RPC failed: %w", err)
	}
	slog.Debug("[Uplink] Anonymized calls pushed", "count", len(calls), "accepted", resp.Accepted)
	return nil
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// IsRetryable classifies an upload failure: transport and server-side
// conditions are retryable, request-shaped rejections are permanent.
func IsRetryable(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		// Not a gRPC status; treat as a connectivity problem.
		return true
	}
	switch st.Code() {
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.ResourceExhausted,
		codes.Aborted,
		codes.Internal,
		codes.Unknown:
		return true
	default:
		return false
	}
}
