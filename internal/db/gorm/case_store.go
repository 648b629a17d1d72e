package gorm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/thebtf/recordsearch/pkg/models"
)

// ErrCaseNumberExhausted is returned when concurrent writers keep taking the
// case number CreateCase picked.
var ErrCaseNumberExhausted = errors.New("could not allocate a unique case number")

// caseNumberAttempts bounds retries after a case number collision.
const caseNumberAttempts = 3

// CaseNumberPrefix returns the case number prefix for a year.
func CaseNumberPrefix(year int) string {
	return "CASE-" + strconv.Itoa(year) + "-"
}

// FormatCaseNumber renders a case number such as CASE-2026-0007.
func FormatCaseNumber(year, seq int) string {
	return fmt.Sprintf("CASE-%d-%04d", year, seq)
}

// CaseStore writes cases and allocates their numbers.
type CaseStore struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCaseStore creates a new case store.
func NewCaseStore(store *Store) *CaseStore {
	return &CaseStore{db: store.DB, now: time.Now}
}

// NextCaseNumber returns the next free number for the year of now: one past
// the highest sequence already issued that year. Numbers are unique across
// stations.
func (s *CaseStore) NextCaseNumber(ctx context.Context, now time.Time) (string, error) {
	return nextCaseNumber(s.db.WithContext(ctx), now)
}

func nextCaseNumber(db *gorm.DB, now time.Time) (string, error) {
	year := now.UTC().Year()
	prefix := CaseNumberPrefix(year)

	var numbers []string
	err := db.Model(&Case{}).
		Where("case_number LIKE ?", prefix+"%").
		Pluck("case_number", &numbers).Error
	if err != nil {
		return "", fmt.Errorf("read case numbers: %w", err)
	}

	last := 0
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err != nil {
			continue
		}
		last = max(last, seq)
	}
	return FormatCaseNumber(year, last+1), nil
}

// NewParticipant is a person to attach to a new case.
type NewParticipant struct {
	Name    string
	Type    string
	Contact string
}

// NewCase holds the fields of a case to create.
type NewCase struct {
	CaseNumber        string
	Title             string
	OffenseType       string
	Description       string
	Location          string
	Status            string
	Priority          string
	Participants      []NewParticipant
	TeamOfficerIDs    []int64
	CriminalIDs       []int64
	StationID         int64
	CreatedByID       int64
	AssignedOfficerID int64
}

// CreateCase inserts a case with its participants, team and linked
// criminals in one transaction. An empty CaseNumber is allocated with
// NextCaseNumber and re-allocated if another writer takes it first.
func (s *CaseStore) CreateCase(ctx context.Context, nc *NewCase) (*models.CaseRecord, error) {
	if nc.StationID == 0 || nc.CreatedByID == 0 {
		return nil, fmt.Errorf("create case: station and creator are required")
	}
	if strings.TrimSpace(nc.Title) == "" {
		return nil, fmt.Errorf("create case: title is required")
	}

	allocate := nc.CaseNumber == ""
	attempts := 1
	if allocate {
		attempts = caseNumberAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		rec, err := s.createOnce(ctx, nc, allocate)
		if err == nil {
			return rec, nil
		}
		if !allocate || !isUniqueViolation(err) {
			return nil, err
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("Case number taken, retrying")
	}
	return nil, fmt.Errorf("%w: %v", ErrCaseNumberExhausted, lastErr)
}

func (s *CaseStore) createOnce(ctx context.Context, nc *NewCase, allocate bool) (*models.CaseRecord, error) {
	var created Case
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number := nc.CaseNumber
		if allocate {
			var err error
			if number, err = nextCaseNumber(tx, s.now()); err != nil {
				return err
			}
		}

		created = Case{
			StationID:         nc.StationID,
			CaseNumber:        number,
			Title:             nc.Title,
			OffenseType:       nc.OffenseType,
			Description:       nc.Description,
			Location:          nc.Location,
			Status:            nc.Status,
			Priority:          nc.Priority,
			CreatedByID:       nc.CreatedByID,
			AssignedOfficerID: nullInt64(nc.AssignedOfficerID),
		}
		if created.Status == "" {
			created.Status = "Open"
		}
		if created.Priority == "" {
			created.Priority = "Medium"
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("insert case: %w", err)
		}

		for _, p := range nc.Participants {
			if strings.TrimSpace(p.Name) == "" {
				continue
			}
			row := Participant{CaseID: created.ID, Name: p.Name, Type: p.Type, Contact: p.Contact}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert participant: %w", err)
			}
		}
		for _, id := range uniqueIDs(nc.TeamOfficerIDs) {
			if err := tx.Create(&CaseOfficer{CaseID: created.ID, OfficerID: id}).Error; err != nil {
				return fmt.Errorf("assign officer %d: %w", id, err)
			}
		}
		for _, id := range uniqueIDs(nc.CriminalIDs) {
			if err := tx.Create(&CaseCriminal{CaseID: created.ID, CriminalID: id}).Error; err != nil {
				return fmt.Errorf("link criminal %d: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rec := toCaseRecord(&created)
	return &rec, nil
}
