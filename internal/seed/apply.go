package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/thebtf/recordsearch/internal/db/gorm"
	"github.com/thebtf/recordsearch/pkg/models"
)

// Result counts what Apply created.
type Result struct {
	Stations  int `json:"stations"`
	Officers  int `json:"officers"`
	Criminals int `json:"criminals"`
	Cases     int `json:"cases"`
}

// Seeder writes fixtures through the stores.
type Seeder struct {
	store    *gorm.Store
	stations *gorm.StationStore
	cases    *gorm.CaseStore
	cost     int
}

// NewSeeder creates a Seeder hashing passwords at bcrypt.DefaultCost.
func NewSeeder(store *gorm.Store) *Seeder {
	return &Seeder{
		store:    store,
		stations: gorm.NewStationStore(store),
		cases:    gorm.NewCaseStore(store),
		cost:     bcrypt.DefaultCost,
	}
}

// Apply creates the fixture's stations, officers, criminals and cases in one
// transaction: if any station fails, nothing from the fixture is kept.
// Stations and officers that already exist are reused, so a fixture can be
// applied over an earlier one; criminals and cases are always added.
func (s *Seeder) Apply(ctx context.Context, fx *Fixture) (*Result, error) {
	if err := fx.Validate(); err != nil {
		return nil, err
	}

	res := &Result{}
	err := s.store.Transaction(ctx, func(tx *gorm.Store) error {
		txs := &Seeder{
			store:    tx,
			stations: gorm.NewStationStore(tx),
			cases:    gorm.NewCaseStore(tx),
			cost:     s.cost,
		}
		for i := range fx.Stations {
			if err := txs.applyStation(ctx, &fx.Stations[i], res); err != nil {
				return fmt.Errorf("station %s: %w", fx.Stations[i].Code, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("stations", res.Stations).
		Int("officers", res.Officers).
		Int("criminals", res.Criminals).
		Int("cases", res.Cases).
		Msg("Fixture applied")
	return res, nil
}

func (s *Seeder) applyStation(ctx context.Context, st *Station, res *Result) error {
	name := st.Name
	if name == "" {
		name = st.Code
	}
	stationID, err := s.stations.EnsureStation(ctx, st.Code, name)
	if err != nil {
		return err
	}
	res.Stations++

	officers := make(map[string]int64, len(st.Officers))
	for _, o := range st.Officers {
		id, created, err := s.ensureOfficer(ctx, stationID, o)
		if err != nil {
			return fmt.Errorf("officer %s: %w", o.Username, err)
		}
		officers[o.Username] = id
		if created {
			res.Officers++
		}
	}

	criminals := make(map[string]int64, len(st.Criminals))
	for _, c := range st.Criminals {
		id, err := s.stations.CreateCriminal(ctx, stationID, models.CriminalRecord{
			Name: c.Name, Aliases: c.Aliases, Status: c.Status,
		})
		if err != nil {
			return fmt.Errorf("criminal %s: %w", c.Name, err)
		}
		criminals[c.Name] = id
		res.Criminals++
	}

	for _, c := range st.Cases {
		nc := &gorm.NewCase{
			StationID:         stationID,
			CaseNumber:        c.CaseNumber,
			Title:             c.Title,
			OffenseType:       c.OffenseType,
			Description:       c.Description,
			Location:          c.Location,
			Status:            c.Status,
			Priority:          c.Priority,
			CreatedByID:       officers[c.CreatedBy],
			AssignedOfficerID: officers[c.Lead],
		}
		for _, u := range c.Team {
			nc.TeamOfficerIDs = append(nc.TeamOfficerIDs, officers[u])
		}
		for _, name := range c.Criminals {
			nc.CriminalIDs = append(nc.CriminalIDs, criminals[name])
		}
		for _, p := range c.Participants {
			nc.Participants = append(nc.Participants, gorm.NewParticipant{Name: p.Name, Type: p.Type, Contact: p.Contact})
		}

		rec, err := s.cases.CreateCase(ctx, nc)
		if err != nil {
			return fmt.Errorf("case %q: %w", c.Title, err)
		}
		log.Debug().Str("case_number", rec.CaseNumber).Int64("station_id", stationID).Msg("Seeded case")
		res.Cases++
	}
	return nil
}

// ensureOfficer returns the id of an existing officer with the same username
// or creates one.
func (s *Seeder) ensureOfficer(ctx context.Context, stationID int64, o Officer) (int64, bool, error) {
	id, err := s.stations.OfficerIDByUsername(ctx, o.Username)
	if err != nil {
		return 0, false, err
	}
	if id != 0 {
		return id, false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(o.Password), s.cost)
	if err != nil {
		return 0, false, fmt.Errorf("hash password: %w", err)
	}
	id, err = s.stations.CreateOfficer(ctx, gorm.NewOfficer{
		StationID:    stationID,
		Username:     o.Username,
		PasswordHash: string(hash),
		FullName:     o.FullName,
		BadgeNumber:  o.BadgeNumber,
		Role:         o.Role,
	})
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
