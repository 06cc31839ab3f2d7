package localstore

import "github.com/google/uuid"

// State table keys. These mirror the persisted client state the sync
// protocol depends on, so renaming one is a breaking change for existing
// installs.
const (
	KeyDeviceID       = "device_id"
	KeyStorageMode    = "storage_mode"
	KeyAuthToken      = "auth_token"
	KeyUserEmail      = "user_email"
	KeyLastSyncTime   = "last_sync_time"
	KeyPendingQueue   = "pending_changes"
	KeyTimerState     = "timer_state"
	KeyCurrentProject = "current_project"
)

// Storage modes
const (
	ModeLocal = "local"
	ModeCloud = "cloud"
)

// DeviceID returns the stable device identifier, generating and persisting
// one on first use.
func (s *Store) DeviceID() string {
	if id, ok := s.State(KeyDeviceID); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	_ = s.SetState(KeyDeviceID, id)
	return id
}

// Mode returns the active storage mode, defaulting to local
func (s *Store) Mode() string {
	if m, ok := s.State(KeyStorageMode); ok && m == ModeCloud {
		return ModeCloud
	}
	return ModeLocal
}

// SetMode switches the storage mode
func (s *Store) SetMode(mode string) error {
	return s.SetState(KeyStorageMode, mode)
}
