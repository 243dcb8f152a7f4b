// Package postgres implements the Will Engine, Asset Registry, and Guardian
// Registry State interfaces on top of gorm and PostgreSQL, for operators who
// need the engine's records to survive a process restart. state/memory
// remains the reference implementation used by the component tests; this
// package is what cmd/willd wires up in production.
package postgres

import (
	"time"

	"gorm.io/gorm"
)

// willModel is the gorm row for a single native/will.Will record.
type willModel struct {
	ID                uint64 `gorm:"primaryKey"`
	Owner             string `gorm:"size:90;index"`
	Beneficiaries     string `gorm:"type:text"` // JSON-encoded []string of bech32 principals
	Guardians         string `gorm:"type:text"` // JSON-encoded []string of bech32 principals
	BeneficiaryShares string `gorm:"type:text"` // JSON-encoded []uint16, "null" or empty means nil (equal split)
	GuardianThreshold uint8
	EncryptedCID      string `gorm:"size:128"`
	PayloadHash       string `gorm:"size:64"` // hex-encoded [32]byte
	HeartbeatTimeout  int64  // nanoseconds, mirrors time.Duration
	LastHeartbeat     time.Time
	VaultAddress      string `gorm:"size:90"` // empty means unset
	ApprovalsBitmap   uint32
	ReleaseRequested  bool
	ReleaseRequestTS  time.Time
	Released          bool `gorm:"index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (willModel) TableName() string { return "wills" }

// willCounter holds the single-row next_will_id sequence. gorm's AutoMigrate
// doesn't give us a raw sequence without a dedicated table, so we model it
// explicitly and advance it inside a transaction.
type willCounter struct {
	ID     uint8 `gorm:"primaryKey"` // always 1
	NextID uint64
}

func (willCounter) TableName() string { return "will_counters" }

// ringEntry is one slot of the pending-check ring buffer, ordered by
// Position.
type ringEntry struct {
	Position uint64 `gorm:"primaryKey;autoIncrement"`
	WillID   uint64 `gorm:"index"`
}

func (ringEntry) TableName() string { return "will_ring_entries" }

// ringCursor holds the single-row scheduler cursor into will_ring_entries.
type ringCursor struct {
	ID     uint8 `gorm:"primaryKey"` // always 1
	Cursor int
}

func (ringCursor) TableName() string { return "will_ring_cursors" }

// depositModel is the gorm row for a single native/assets.Deposit record.
type depositModel struct {
	WillID    uint64 `gorm:"primaryKey;index:idx_deposit_will"`
	Index     uint32 `gorm:"primaryKey"`
	Class     uint8
	Token     string `gorm:"size:128"`
	TokenID   string `gorm:"size:128"` // decimal-encoded *big.Int, empty if unused
	Amount    string `gorm:"size:128"` // decimal-encoded *big.Int, empty if unused
	Depositor string `gorm:"size:90"`
	Released  bool
}

func (depositModel) TableName() string { return "asset_deposits" }

// willDepositorModel records the first depositor recorded for a will id.
type willDepositorModel struct {
	WillID    uint64 `gorm:"primaryKey"`
	Depositor string `gorm:"size:90"`
}

func (willDepositorModel) TableName() string { return "will_depositors" }

// willBalanceModel tracks the running native-value balance escrowed per will.
type willBalanceModel struct {
	WillID  uint64 `gorm:"primaryKey"`
	Balance string `gorm:"size:128"` // decimal-encoded *big.Int
}

func (willBalanceModel) TableName() string { return "will_balances" }

// globalCounterModel holds singleton accumulators, keyed by name, such as
// the process-wide total_native_held tracked by the Asset Registry.
type globalCounterModel struct {
	Name  string `gorm:"primaryKey;size:64"`
	Value string `gorm:"size:128"` // decimal-encoded *big.Int
}

func (globalCounterModel) TableName() string { return "global_counters" }

// guardianModel is the gorm row for a single native/guardian.Profile record.
type guardianModel struct {
	Principal          string `gorm:"primaryKey;size:90"`
	Active             bool
	Verified           bool
	MetadataURI        string `gorm:"type:text"`
	PublicKeyHash      string `gorm:"size:64"` // hex-encoded [32]byte
	CommitmentRoot     string `gorm:"size:64"` // hex-encoded [32]byte
	Reputation         int32
	TotalWills         uint32
	SuccessfulReleases uint32
	RegistrationTime   time.Time
	Commitments        string `gorm:"type:text"` // JSON-encoded []string of hex-encoded tags
	UpdatedAt          time.Time
}

func (guardianModel) TableName() string { return "guardians" }

// AutoMigrate performs schema migration for every table this package owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&willModel{},
		&willCounter{},
		&ringEntry{},
		&ringCursor{},
		&depositModel{},
		&willDepositorModel{},
		&willBalanceModel{},
		&globalCounterModel{},
		&guardianModel{},
	)
}
