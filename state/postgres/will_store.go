package postgres

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"willvault/crypto"
	"willvault/native/will"
)

// WillStore implements will.State against a *gorm.DB.
type WillStore struct {
	db *gorm.DB
}

// NewWillStore constructs a WillStore. AutoMigrate must have been run
// against db first.
func NewWillStore(db *gorm.DB) *WillStore {
	return &WillStore{db: db}
}

func (s *WillStore) NextWillID() (uint64, error) {
	var next uint64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var counter willCounter
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&counter, "id = ?", 1).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				counter = willCounter{ID: 1, NextID: 1}
				if err := tx.Create(&counter).Error; err != nil {
					return err
				}
			} else {
				return err
			}
		}
		next = counter.NextID
		counter.NextID++
		return tx.Save(&counter).Error
	})
	if err != nil {
		return 0, fmt.Errorf("postgres: next will id: %w", err)
	}
	return next, nil
}

func (s *WillStore) Put(w *will.Will) error {
	model, err := willToModel(w)
	if err != nil {
		return fmt.Errorf("postgres: encode will: %w", err)
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return fmt.Errorf("postgres: put will %d: %w", w.ID, err)
	}
	return nil
}

func (s *WillStore) Get(id uint64) (*will.Will, error) {
	var model willModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, will.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get will %d: %w", id, err)
	}
	return modelToWill(&model)
}

func (s *WillStore) List() ([]*will.Will, error) {
	var models []willModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("postgres: list wills: %w", err)
	}
	out := make([]*will.Will, 0, len(models))
	for i := range models {
		w, err := modelToWill(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (s *WillStore) Enqueue(id uint64) error {
	if err := s.db.Create(&ringEntry{WillID: id}).Error; err != nil {
		return fmt.Errorf("postgres: enqueue will %d: %w", id, err)
	}
	return nil
}

func (s *WillStore) RingSnapshot() ([]uint64, int, error) {
	var entries []ringEntry
	if err := s.db.Order("position asc").Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("postgres: ring snapshot: %w", err)
	}
	ids := make([]uint64, len(entries))
	for i, e := range entries {
		ids[i] = e.WillID
	}

	var cursor ringCursor
	if err := s.db.First(&cursor, "id = ?", 1).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ids, 0, nil
		}
		return nil, 0, fmt.Errorf("postgres: ring cursor: %w", err)
	}
	return ids, cursor.Cursor, nil
}

func (s *WillStore) AdvanceCursor(n int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&ringEntry{}).Count(&count).Error; err != nil {
			return err
		}
		var cursor ringCursor
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&cursor, "id = ?", 1).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			cursor = ringCursor{ID: 1}
		}
		if count > 0 {
			cursor.Cursor = (cursor.Cursor + n) % int(count)
		} else {
			cursor.Cursor = 0
		}
		return tx.Save(&cursor).Error
	})
}

func (s *WillStore) PruneReleased() error {
	return s.db.Exec(`
		DELETE FROM will_ring_entries
		WHERE will_id IN (SELECT id FROM wills WHERE released = true)
	`).Error
}

func willToModel(w *will.Will) (*willModel, error) {
	beneficiaries, err := encodePrincipals(w.Beneficiaries)
	if err != nil {
		return nil, err
	}
	guardians, err := encodePrincipals(w.Guardians)
	if err != nil {
		return nil, err
	}
	shares, err := json.Marshal(w.BeneficiaryShares)
	if err != nil {
		return nil, err
	}
	vault := ""
	if w.VaultAddress != nil {
		vault = w.VaultAddress.String()
	}
	return &willModel{
		ID:                w.ID,
		Owner:             w.Owner.String(),
		Beneficiaries:     beneficiaries,
		Guardians:         guardians,
		BeneficiaryShares: string(shares),
		GuardianThreshold: w.GuardianThreshold,
		EncryptedCID:      w.EncryptedCID,
		PayloadHash:       hex.EncodeToString(w.PayloadHash[:]),
		HeartbeatTimeout:  int64(w.HeartbeatTimeout),
		LastHeartbeat:     w.LastHeartbeat,
		VaultAddress:      vault,
		ApprovalsBitmap:   w.ApprovalsBitmap,
		ReleaseRequested:  w.ReleaseRequested,
		ReleaseRequestTS:  w.ReleaseRequestTS,
		Released:          w.Released,
		CreatedAt:         w.CreatedAt,
	}, nil
}

func modelToWill(m *willModel) (*will.Will, error) {
	owner, err := crypto.DecodePrincipal(m.Owner)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode owner: %w", err)
	}
	beneficiaries, err := decodePrincipals(m.Beneficiaries)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode beneficiaries: %w", err)
	}
	guardians, err := decodePrincipals(m.Guardians)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode guardians: %w", err)
	}
	var shares []uint16
	if m.BeneficiaryShares != "" && m.BeneficiaryShares != "null" {
		if err := json.Unmarshal([]byte(m.BeneficiaryShares), &shares); err != nil {
			return nil, fmt.Errorf("postgres: decode beneficiary shares: %w", err)
		}
	}
	payloadHashBytes, err := hex.DecodeString(m.PayloadHash)
	if err != nil || len(payloadHashBytes) != 32 {
		return nil, fmt.Errorf("postgres: decode payload hash: invalid hex")
	}
	var payloadHash [32]byte
	copy(payloadHash[:], payloadHashBytes)

	var vault *crypto.Principal
	if m.VaultAddress != "" {
		v, err := crypto.DecodePrincipal(m.VaultAddress)
		if err != nil {
			return nil, fmt.Errorf("postgres: decode vault address: %w", err)
		}
		vault = &v
	}

	return &will.Will{
		ID:                m.ID,
		Owner:             owner,
		Beneficiaries:     beneficiaries,
		Guardians:         guardians,
		GuardianThreshold: m.GuardianThreshold,
		EncryptedCID:      m.EncryptedCID,
		PayloadHash:       payloadHash,
		HeartbeatTimeout:  timeDuration(m.HeartbeatTimeout),
		LastHeartbeat:     m.LastHeartbeat,
		VaultAddress:      vault,
		ApprovalsBitmap:   m.ApprovalsBitmap,
		ReleaseRequested:  m.ReleaseRequested,
		ReleaseRequestTS:  m.ReleaseRequestTS,
		Released:          m.Released,
		CreatedAt:         m.CreatedAt,
		BeneficiaryShares: shares,
	}, nil
}

func encodePrincipals(ps []crypto.Principal) (string, error) {
	strs := make([]string, len(ps))
	for i, p := range ps {
		strs[i] = p.String()
	}
	encoded, err := json.Marshal(strs)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func decodePrincipals(encoded string) ([]crypto.Principal, error) {
	if encoded == "" || encoded == "null" {
		return nil, nil
	}
	var strs []string
	if err := json.Unmarshal([]byte(encoded), &strs); err != nil {
		return nil, err
	}
	out := make([]crypto.Principal, len(strs))
	for i, s := range strs {
		p, err := crypto.DecodePrincipal(s)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}
