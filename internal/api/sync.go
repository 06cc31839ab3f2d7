package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/existflow/zebra/internal/model"
)

// SyncRequest carries the device identity, the last acknowledged
// checkpoint, and the full pending-change snapshot in one request.
type SyncRequest struct {
	DeviceID        string          `json:"device_id"`
	LastSyncTime    string          `json:"last_sync_time,omitempty"`
	LocalSessions   []model.Session `json:"local_sessions"`
	LocalProjects   []model.Project `json:"local_projects"`
	DeletedSessions []string        `json:"deleted_sessions"`
	DeletedProjects []string        `json:"deleted_projects"`
}

// SyncResponse returns the server-authoritative state changed since the
// request checkpoint, plus the new checkpoint.
type SyncResponse struct {
	LastSyncTime   string          `json:"last_sync_time"`
	ServerSessions []model.Session `json:"server_sessions"`
	ServerProjects []model.Project `json:"server_projects"`
}

// Sync performs one reconciliation round trip
func (c *Client) Sync(ctx context.Context, req SyncRequest) (*SyncResponse, error) {
	data, err := c.do(ctx, http.MethodPost, "api/sync", req)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("%w: empty sync response", ErrDecode)
	}
	var resp SyncResponse
	if err := decodeInto(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
