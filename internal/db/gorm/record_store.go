package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/thebtf/recordsearch/pkg/models"
)

// RecordStore reads station-scoped records for search and case listings.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore creates a new record store.
func NewRecordStore(store *Store) *RecordStore {
	return &RecordStore{db: store.DB}
}

// participantRow is a participant joined with its case number.
type participantRow struct {
	Name       string
	Type       string
	CaseNumber string
	ID         int64
	CaseID     int64
}

// FetchEntities returns every searchable record of the scope's station,
// ordered by id. A scope without a station sees nothing.
func (s *RecordStore) FetchEntities(ctx context.Context, scope models.Scope) (*models.EntitySet, error) {
	set := &models.EntitySet{}
	if !scope.Valid() {
		return set, nil
	}
	db := s.db.WithContext(ctx)

	var cases []Case
	if err := db.Where("station_id = ?", scope.StationID).Order("id").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("fetch cases: %w", err)
	}
	set.Cases = make([]models.CaseRecord, 0, len(cases))
	for i := range cases {
		set.Cases = append(set.Cases, toCaseRecord(&cases[i]))
	}

	var criminals []Criminal
	if err := db.Where("station_id = ?", scope.StationID).Order("id").Find(&criminals).Error; err != nil {
		return nil, fmt.Errorf("fetch criminals: %w", err)
	}
	set.Criminals = make([]models.CriminalRecord, 0, len(criminals))
	for i := range criminals {
		set.Criminals = append(set.Criminals, toCriminalRecord(&criminals[i]))
	}

	var rows []participantRow
	err := db.Table("participants").
		Select("participants.id, participants.case_id, participants.name, participants.type, cases.case_number").
		Joins("JOIN cases ON cases.id = participants.case_id").
		Where("cases.station_id = ?", scope.StationID).
		Order("participants.id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetch participants: %w", err)
	}
	set.Participants = make([]models.ParticipantRecord, 0, len(rows))
	for _, r := range rows {
		set.Participants = append(set.Participants, models.ParticipantRecord{
			ID:         r.ID,
			CaseID:     r.CaseID,
			CaseNumber: r.CaseNumber,
			Name:       r.Name,
			Type:       r.Type,
		})
	}

	var officers []Officer
	if err := db.Where("station_id = ?", scope.StationID).Order("id").Find(&officers).Error; err != nil {
		return nil, fmt.Errorf("fetch officers: %w", err)
	}
	set.Officers = make([]models.OfficerRecord, 0, len(officers))
	for i := range officers {
		set.Officers = append(set.Officers, toOfficerRecord(&officers[i]))
	}

	return set, nil
}

// CaseFilter narrows a case listing.
type CaseFilter struct {
	Status   string
	Priority string
	Limit    int
}

// ListCases returns the cases the scope may see, newest first. Admins and
// inspectors see the whole station; officers and investigating officers see
// cases they lead or are on the team of; every other role sees the cases it
// created. Suspect and victim names are filled in from participants and
// linked criminals.
func (s *RecordStore) ListCases(ctx context.Context, scope models.Scope, filter CaseFilter) ([]models.CaseRecord, error) {
	if !scope.Valid() {
		return []models.CaseRecord{}, nil
	}
	db := s.db.WithContext(ctx)

	q := db.Model(&Case{}).Where("cases.station_id = ?", scope.StationID)
	switch {
	case scope.Role.SeesAllStationCases():
	case scope.Role.SeesAssignedCases():
		team := db.Model(&CaseOfficer{}).Select("case_id").Where("officer_id = ?", scope.OfficerID)
		q = q.Where("(cases.assigned_officer_id = ? OR cases.id IN (?))", scope.OfficerID, team)
	default:
		q = q.Where("cases.created_by_id = ?", scope.OfficerID)
	}
	if filter.Status != "" {
		q = q.Where("cases.status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("cases.priority = ?", filter.Priority)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var cases []Case
	if err := q.Order("cases.created_at_epoch DESC, cases.id DESC").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}

	records := make([]models.CaseRecord, 0, len(cases))
	index := make(map[int64]int, len(cases))
	ids := make([]int64, 0, len(cases))
	for i := range cases {
		index[cases[i].ID] = len(records)
		ids = append(ids, cases[i].ID)
		records = append(records, toCaseRecord(&cases[i]))
	}
	if len(ids) == 0 {
		return records, nil
	}

	var people []Participant
	err := db.Where("case_id IN ? AND type IN ?", ids, []string{models.ParticipantSuspect, models.ParticipantVictim}).
		Order("id").
		Find(&people).Error
	if err != nil {
		return nil, fmt.Errorf("list case participants: %w", err)
	}
	for _, p := range people {
		rec := &records[index[p.CaseID]]
		if p.Type == models.ParticipantSuspect {
			rec.SuspectNames = append(rec.SuspectNames, p.Name)
		} else {
			rec.VictimNames = append(rec.VictimNames, p.Name)
		}
	}

	var linked []struct {
		Name   string
		CaseID int64
	}
	err = db.Table("case_criminals").
		Select("case_criminals.case_id, criminals.name").
		Joins("JOIN criminals ON criminals.id = case_criminals.criminal_id").
		Where("case_criminals.case_id IN ?", ids).
		Order("criminals.id").
		Scan(&linked).Error
	if err != nil {
		return nil, fmt.Errorf("list case criminals: %w", err)
	}
	for _, l := range linked {
		rec := &records[index[l.CaseID]]
		rec.SuspectNames = append(rec.SuspectNames, l.Name)
	}

	return records, nil
}
