package api

import (
	"context"
	"strings"

	"github.com/existflow/zebra/internal/model"
)

// GetFile fetches a file attachment as an opaque byte payload. A sentinel
// or empty id short-circuits to nil without touching the network.
func (c *Client) GetFile(ctx context.Context, fileID string) ([]byte, error) {
	if model.IsSentinel(fileID) {
		return nil, nil
	}
	return c.doBlob(ctx, "api/files/"+fileID, "application/octet-stream")
}

// GetAudio fetches an audio clip as an opaque byte payload. Older records
// store the full audio path instead of the bare id.
func (c *Client) GetAudio(ctx context.Context, audioID string) ([]byte, error) {
	if model.IsSentinel(audioID) {
		return nil, nil
	}
	audioID = strings.TrimPrefix(audioID, "/audio/")
	audioID = strings.TrimPrefix(audioID, "audio/")
	return c.doBlob(ctx, "api/audio/"+audioID, "audio/*")
}
