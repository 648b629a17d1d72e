package gorm

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/thebtf/recordsearch/pkg/models"
)

// StationStore manages stations, officers and the criminal register.
type StationStore struct {
	db *gorm.DB
}

// NewStationStore creates a new station store.
func NewStationStore(store *Store) *StationStore {
	return &StationStore{db: store.DB}
}

// EnsureStation returns the id of the station with code, creating it if needed.
func (s *StationStore) EnsureStation(ctx context.Context, code, name string) (int64, error) {
	var st Station
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&st).Error
	if err == nil {
		return st.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, fmt.Errorf("find station %s: %w", code, err)
	}

	st = Station{Code: code, Name: name}
	if err := s.db.WithContext(ctx).Create(&st).Error; err != nil {
		return 0, fmt.Errorf("create station %s: %w", code, err)
	}
	return st.ID, nil
}

// NewOfficer holds the fields of an officer to create.
type NewOfficer struct {
	Username     string
	PasswordHash string
	FullName     string
	BadgeNumber  string
	Role         models.Role
	StationID    int64
}

// CreateOfficer inserts an officer and returns its id.
func (s *StationStore) CreateOfficer(ctx context.Context, o NewOfficer) (int64, error) {
	row := Officer{
		StationID:    o.StationID,
		Username:     o.Username,
		PasswordHash: o.PasswordHash,
		Role:         string(o.Role),
		FullName:     o.FullName,
		BadgeNumber:  o.BadgeNumber,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create officer %s: %w", o.Username, err)
	}
	return row.ID, nil
}

// OfficerIDByUsername looks up an officer. It returns 0 when there is none.
func (s *StationStore) OfficerIDByUsername(ctx context.Context, username string) (int64, error) {
	var ids []int64
	err := s.db.WithContext(ctx).Model(&Officer{}).Where("username = ?", username).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("find officer %s: %w", username, err)
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// CreateCriminal adds a criminal to a station's register and returns its id.
func (s *StationStore) CreateCriminal(ctx context.Context, stationID int64, c models.CriminalRecord) (int64, error) {
	row := Criminal{
		StationID: stationID,
		Name:      c.Name,
		Aliases:   c.Aliases,
		Status:    c.Status,
	}
	if row.Status == "" {
		row.Status = "Wanted"
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("create criminal %s: %w", c.Name, err)
	}
	return row.ID, nil
}
