package postgres

import (
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"willvault/crypto"
	"willvault/native/assets"
)

const totalNativeHeldCounter = "total_native_held"

// AssetStore implements assets.State against a *gorm.DB.
type AssetStore struct {
	db *gorm.DB
}

// NewAssetStore constructs an AssetStore. AutoMigrate must have been run
// against db first.
func NewAssetStore(db *gorm.DB) *AssetStore {
	return &AssetStore{db: db}
}

func (s *AssetStore) NextIndex(willID uint64) (uint32, error) {
	var count int64
	if err := s.db.Model(&depositModel{}).Where("will_id = ?", willID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("postgres: next deposit index: %w", err)
	}
	return uint32(count), nil
}

func (s *AssetStore) PutDeposit(d *assets.Deposit) error {
	model, err := depositToModel(d)
	if err != nil {
		return fmt.Errorf("postgres: encode deposit: %w", err)
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "will_id"}, {Name: "index"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return fmt.Errorf("postgres: put deposit (%d,%d): %w", d.WillID, d.Index, err)
	}
	return nil
}

func (s *AssetStore) Deposit(willID uint64, index uint32) (*assets.Deposit, error) {
	var model depositModel
	if err := s.db.First(&model, "will_id = ? AND index = ?", willID, index).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, assets.ErrDepositNotFound
		}
		return nil, fmt.Errorf("postgres: get deposit (%d,%d): %w", willID, index, err)
	}
	return modelToDeposit(&model)
}

func (s *AssetStore) Deposits(willID uint64) ([]*assets.Deposit, error) {
	var models []depositModel
	if err := s.db.Where("will_id = ?", willID).Order("index asc").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("postgres: list deposits for will %d: %w", willID, err)
	}
	out := make([]*assets.Deposit, 0, len(models))
	for i := range models {
		d, err := modelToDeposit(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *AssetStore) FirstDepositor(willID uint64) (crypto.Principal, bool, error) {
	var model willDepositorModel
	if err := s.db.First(&model, "will_id = ?", willID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return crypto.Principal{}, false, nil
		}
		return crypto.Principal{}, false, fmt.Errorf("postgres: first depositor for will %d: %w", willID, err)
	}
	p, err := crypto.DecodePrincipal(model.Depositor)
	if err != nil {
		return crypto.Principal{}, false, fmt.Errorf("postgres: decode first depositor: %w", err)
	}
	return p, true, nil
}

func (s *AssetStore) SetFirstDepositor(willID uint64, depositor crypto.Principal) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing willDepositorModel
		err := tx.First(&existing, "will_id = ?", willID).Error
		if err == nil {
			return nil // already set, subsequent deposits never change it
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return tx.Create(&willDepositorModel{WillID: willID, Depositor: depositor.String()}).Error
	})
}

func (s *AssetStore) AddNativeBalance(willID uint64, delta *big.Int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var row willBalanceModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "will_id = ?", willID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = willBalanceModel{WillID: willID, Balance: "0"}
		} else if err != nil {
			return err
		}
		current, err := decodeBig(row.Balance)
		if err != nil {
			return err
		}
		row.Balance = new(big.Int).Add(current, delta).String()
		return tx.Save(&row).Error
	})
}

func (s *AssetStore) NativeBalance(willID uint64) (*big.Int, error) {
	var row willBalanceModel
	if err := s.db.First(&row, "will_id = ?", willID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, fmt.Errorf("postgres: native balance for will %d: %w", willID, err)
	}
	return decodeBig(row.Balance)
}

func (s *AssetStore) AddTotalNativeHeld(delta *big.Int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var row globalCounterModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, "name = ?", totalNativeHeldCounter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = globalCounterModel{Name: totalNativeHeldCounter, Value: "0"}
		} else if err != nil {
			return err
		}
		current, err := decodeBig(row.Value)
		if err != nil {
			return err
		}
		row.Value = new(big.Int).Add(current, delta).String()
		return tx.Save(&row).Error
	})
}

func (s *AssetStore) TotalNativeHeld() (*big.Int, error) {
	var row globalCounterModel
	if err := s.db.First(&row, "name = ?", totalNativeHeldCounter).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return big.NewInt(0), nil
		}
		return nil, fmt.Errorf("postgres: total native held: %w", err)
	}
	return decodeBig(row.Value)
}

func depositToModel(d *assets.Deposit) (*depositModel, error) {
	model := &depositModel{
		WillID:    d.WillID,
		Index:     d.Index,
		Class:     uint8(d.Payload.Class()),
		Depositor: d.Depositor.String(),
		Released:  d.Released,
	}
	switch p := d.Payload.(type) {
	case assets.Native:
		model.Amount = encodeBig(p.Amount)
	case assets.Fungible:
		model.Token = p.Token
		model.Amount = encodeBig(p.Amount)
	case assets.Unique:
		model.Token = p.Token
		model.TokenID = encodeBig(p.TokenID)
	case assets.SemiFungible:
		model.Token = p.Token
		model.TokenID = encodeBig(p.TokenID)
		model.Amount = encodeBig(p.Amount)
	default:
		return nil, fmt.Errorf("postgres: unknown payload type %T", d.Payload)
	}
	return model, nil
}

func modelToDeposit(m *depositModel) (*assets.Deposit, error) {
	depositor, err := crypto.DecodePrincipal(m.Depositor)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode depositor: %w", err)
	}
	amount, err := decodeBig(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode amount: %w", err)
	}
	tokenID, err := decodeBig(m.TokenID)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode token id: %w", err)
	}

	var payload assets.Payload
	switch assets.Class(m.Class) {
	case assets.ClassNative:
		payload = assets.Native{Amount: amount}
	case assets.ClassFungible:
		payload = assets.Fungible{Token: m.Token, Amount: amount}
	case assets.ClassUnique:
		payload = assets.Unique{Token: m.Token, TokenID: tokenID}
	case assets.ClassSemiFungible:
		payload = assets.SemiFungible{Token: m.Token, TokenID: tokenID, Amount: amount}
	default:
		return nil, fmt.Errorf("postgres: unknown deposit class %d", m.Class)
	}

	return &assets.Deposit{
		WillID:    m.WillID,
		Index:     m.Index,
		Payload:   payload,
		Depositor: depositor,
		Released:  m.Released,
	}, nil
}
