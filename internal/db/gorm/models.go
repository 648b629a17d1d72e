package gorm

import (
	"database/sql"
	"time"

	"gorm.io/gorm"

	"github.com/thebtf/recordsearch/pkg/models"
)

// GORM Models

// Station is a police station. Every other record belongs to one.
type Station struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"not null"`
	Code           string `gorm:"uniqueIndex;not null"`
	CreatedAtEpoch int64  `gorm:"not null"`
}

func (Station) TableName() string { return "stations" }

// Officer is a station user.
type Officer struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	StationID      int64  `gorm:"index;not null"`
	Username       string `gorm:"uniqueIndex;not null"`
	PasswordHash   string `gorm:"not null"`
	Role           string `gorm:"type:text;index;not null"`
	FullName       string `gorm:"not null"`
	BadgeNumber    string
	CreatedAtEpoch int64 `gorm:"not null"`
}

func (Officer) TableName() string { return "officers" }

// Case is an investigation opened at a station.
type Case struct {
	ID                int64  `gorm:"primaryKey;autoIncrement"`
	StationID         int64  `gorm:"index:idx_cases_station_created,priority:1;not null"`
	CaseNumber        string `gorm:"size:50;uniqueIndex;not null"`
	Title             string `gorm:"not null"`
	OffenseType       string
	Description       string `gorm:"type:text"`
	Location          string
	Status            string        `gorm:"type:text;default:'Open';index"`
	Priority          string        `gorm:"type:text;default:'Medium'"`
	CreatedByID       int64         `gorm:"index;not null"`
	AssignedOfficerID sql.NullInt64 `gorm:"index"`
	CreatedAtEpoch    int64         `gorm:"index:idx_cases_station_created,priority:2,sort:desc;not null"`
}

func (Case) TableName() string { return "cases" }

// Participant is a person named in a case.
type Participant struct {
	ID      int64  `gorm:"primaryKey;autoIncrement"`
	CaseID  int64  `gorm:"index;not null"`
	Name    string `gorm:"not null"`
	Type    string `gorm:"type:text;index;not null"`
	Contact string
}

func (Participant) TableName() string { return "participants" }

// Criminal is a suspect or offender on a station's register.
type Criminal struct {
	ID             int64  `gorm:"primaryKey;autoIncrement"`
	StationID      int64  `gorm:"index;not null"`
	Name           string `gorm:"not null"`
	Aliases        string
	Status         string `gorm:"type:text;default:'Wanted'"`
	CreatedAtEpoch int64  `gorm:"not null"`
}

func (Criminal) TableName() string { return "criminals" }

// CaseCriminal links criminals to the cases they are suspected in.
type CaseCriminal struct {
	CaseID     int64 `gorm:"primaryKey"`
	CriminalID int64 `gorm:"primaryKey;index"`
}

func (CaseCriminal) TableName() string { return "case_criminals" }

// CaseOfficer is a team assignment on a case besides the lead officer.
type CaseOfficer struct {
	CaseID    int64 `gorm:"primaryKey"`
	OfficerID int64 `gorm:"primaryKey;index"`
}

func (CaseOfficer) TableName() string { return "case_officers" }

func epochNow() int64 { return time.Now().UnixMilli() }

// BeforeCreate hooks set timestamps left empty by callers.

func (s *Station) BeforeCreate(*gorm.DB) error {
	if s.CreatedAtEpoch == 0 {
		s.CreatedAtEpoch = epochNow()
	}
	return nil
}

func (o *Officer) BeforeCreate(*gorm.DB) error {
	if o.CreatedAtEpoch == 0 {
		o.CreatedAtEpoch = epochNow()
	}
	return nil
}

func (c *Case) BeforeCreate(*gorm.DB) error {
	if c.CreatedAtEpoch == 0 {
		c.CreatedAtEpoch = epochNow()
	}
	return nil
}

func (c *Criminal) BeforeCreate(*gorm.DB) error {
	if c.CreatedAtEpoch == 0 {
		c.CreatedAtEpoch = epochNow()
	}
	return nil
}

func toCaseRecord(c *Case) models.CaseRecord {
	return models.CaseRecord{
		ID:                c.ID,
		StationID:         c.StationID,
		CaseNumber:        c.CaseNumber,
		Title:             c.Title,
		OffenseType:       c.OffenseType,
		Location:          c.Location,
		Status:            c.Status,
		Priority:          c.Priority,
		AssignedOfficerID: c.AssignedOfficerID.Int64,
		CreatedByID:       c.CreatedByID,
		CreatedAtEpoch:    c.CreatedAtEpoch,
	}
}

func toCriminalRecord(c *Criminal) models.CriminalRecord {
	return models.CriminalRecord{
		ID:      c.ID,
		Name:    c.Name,
		Aliases: c.Aliases,
		Status:  c.Status,
	}
}

func toOfficerRecord(o *Officer) models.OfficerRecord {
	return models.OfficerRecord{
		ID:          o.ID,
		FullName:    o.FullName,
		Role:        models.Role(o.Role),
		BadgeNumber: o.BadgeNumber,
	}
}
