// Package models contains domain models for recordsearch.
package models

// Role is an officer's role within a station.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleInspector Role = "inspector"
	RoleOfficer   Role = "officer"
	RoleIO        Role = "io"
	RoleSHO       Role = "sho"
	RoleClerk     Role = "clerk"
	RoleMalkhana  Role = "malkhana"
	RoleForensic  Role = "forensic"
	RoleCourt     Role = "court"
)

// SeesAllStationCases reports whether the role can view every case of its station.
func (r Role) SeesAllStationCases() bool {
	return r == RoleAdmin || r == RoleInspector
}

// SeesAssignedCases reports whether the role is limited to cases it leads or assists.
func (r Role) SeesAssignedCases() bool {
	return r == RoleOfficer || r == RoleIO
}

// Scope identifies who is asking. Storage uses it to restrict every fetch to
// the caller's station and, for case listings, to the caller's assignments.
type Scope struct {
	Role      Role  `json:"role"`
	StationID int64 `json:"station_id"`
	OfficerID int64 `json:"officer_id"`
}

// Valid reports whether the scope names a station.
func (s Scope) Valid() bool {
	return s.StationID > 0
}

// Participant types recorded against a case.
const (
	ParticipantVictim      = "Victim"
	ParticipantSuspect     = "Suspect"
	ParticipantWitness     = "Witness"
	ParticipantComplainant = "Complainant"
)

// CaseRecord is a case as seen by search and listing.
type CaseRecord struct {
	CaseNumber        string   `json:"case_number"`
	Title             string   `json:"title"`
	OffenseType       string   `json:"offense_type,omitempty"`
	Location          string   `json:"location,omitempty"`
	Status            string   `json:"status"`
	Priority          string   `json:"priority"`
	SuspectNames      []string `json:"suspect_names,omitempty"`
	VictimNames       []string `json:"victim_names,omitempty"`
	ID                int64    `json:"id"`
	StationID         int64    `json:"station_id"`
	AssignedOfficerID int64    `json:"assigned_officer_id,omitempty"`
	CreatedByID       int64    `json:"created_by_id"`
	CreatedAtEpoch    int64    `json:"created_at_epoch"`
}

// CriminalRecord is a suspect or known offender registered at a station.
type CriminalRecord struct {
	Name    string `json:"name"`
	Aliases string `json:"aliases,omitempty"`
	Status  string `json:"status"`
	ID      int64  `json:"id"`
}

// ParticipantRecord is a person attached to a case.
type ParticipantRecord struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	CaseNumber string `json:"case_number,omitempty"`
	ID         int64  `json:"id"`
	CaseID     int64  `json:"case_id"`
}

// OfficerRecord is a station user.
type OfficerRecord struct {
	FullName    string `json:"full_name"`
	Role        Role   `json:"role"`
	BadgeNumber string `json:"badge_number,omitempty"`
	ID          int64  `json:"id"`
}

// EntitySet is a scoped snapshot of every searchable entity kind.
type EntitySet struct {
	Cases        []CaseRecord
	Criminals    []CriminalRecord
	Participants []ParticipantRecord
	Officers     []OfficerRecord
}

// Size returns the total number of entities in the set.
func (s *EntitySet) Size() int {
	if s == nil {
		return 0
	}
	return len(s.Cases) + len(s.Criminals) + len(s.Participants) + len(s.Officers)
}
