package postgres

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"willvault/crypto"
	"willvault/native/guardian"
)

// GuardianStore implements guardian.State against a *gorm.DB.
type GuardianStore struct {
	db *gorm.DB
}

// NewGuardianStore constructs a GuardianStore. AutoMigrate must have been
// run against db first.
func NewGuardianStore(db *gorm.DB) *GuardianStore {
	return &GuardianStore{db: db}
}

func (s *GuardianStore) Get(p crypto.Principal) (*guardian.Profile, error) {
	var model guardianModel
	if err := s.db.First(&model, "principal = ?", p.String()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, guardian.ErrNotFound
		}
		return nil, fmt.Errorf("postgres: get guardian %s: %w", p.String(), err)
	}
	return modelToProfile(&model)
}

func (s *GuardianStore) Put(profile *guardian.Profile) error {
	model, err := profileToModel(profile)
	if err != nil {
		return fmt.Errorf("postgres: encode guardian: %w", err)
	}
	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "principal"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return fmt.Errorf("postgres: put guardian %s: %w", profile.Principal.String(), err)
	}
	return nil
}

func (s *GuardianStore) All() ([]*guardian.Profile, error) {
	var models []guardianModel
	if err := s.db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("postgres: list guardians: %w", err)
	}
	out := make([]*guardian.Profile, 0, len(models))
	for i := range models {
		p, err := modelToProfile(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func profileToModel(p *guardian.Profile) (*guardianModel, error) {
	tags := make([]string, len(p.Commitments))
	for i, tag := range p.Commitments {
		tags[i] = hex.EncodeToString(tag[:])
	}
	commitments, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return &guardianModel{
		Principal:          p.Principal.String(),
		Active:             p.Active,
		Verified:           p.Verified,
		MetadataURI:        p.MetadataURI,
		PublicKeyHash:      hex.EncodeToString(p.PublicKeyHash[:]),
		CommitmentRoot:     hex.EncodeToString(p.CommitmentRoot[:]),
		Reputation:         p.Reputation,
		TotalWills:         p.TotalWills,
		SuccessfulReleases: p.SuccessfulReleases,
		RegistrationTime:   p.RegistrationTime,
		Commitments:        string(commitments),
	}, nil
}

func modelToProfile(m *guardianModel) (*guardian.Profile, error) {
	principal, err := crypto.DecodePrincipal(m.Principal)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode principal: %w", err)
	}
	publicKeyHash, err := decodeHash32(m.PublicKeyHash)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode public key hash: %w", err)
	}
	commitmentRoot, err := decodeHash32(m.CommitmentRoot)
	if err != nil {
		return nil, fmt.Errorf("postgres: decode commitment root: %w", err)
	}

	var tags []string
	if m.Commitments != "" && m.Commitments != "null" {
		if err := json.Unmarshal([]byte(m.Commitments), &tags); err != nil {
			return nil, fmt.Errorf("postgres: decode commitments: %w", err)
		}
	}
	commitments := make([]guardian.CommitmentTag, len(tags))
	for i, tag := range tags {
		raw, err := hex.DecodeString(tag)
		if err != nil || len(raw) != guardian.CommitmentTagSize {
			return nil, fmt.Errorf("postgres: decode commitment tag: invalid hex")
		}
		copy(commitments[i][:], raw)
	}

	return &guardian.Profile{
		Principal:          principal,
		Active:             m.Active,
		Verified:           m.Verified,
		MetadataURI:        m.MetadataURI,
		PublicKeyHash:      publicKeyHash,
		CommitmentRoot:     commitmentRoot,
		Reputation:         m.Reputation,
		TotalWills:         m.TotalWills,
		SuccessfulReleases: m.SuccessfulReleases,
		RegistrationTime:   m.RegistrationTime,
		Commitments:        commitments,
	}, nil
}

func decodeHash32(s string) ([32]byte, error) {
	var out [32]byte
	if s == "" {
		return out, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != 32 {
		return out, fmt.Errorf("invalid hex")
	}
	copy(out[:], raw)
	return out, nil
}
