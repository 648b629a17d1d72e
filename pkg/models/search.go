package models

// Candidate sources produced by the enumerator. Participant, alias and
// officer sources carry a suffix and are built with the helpers below.
const (
	SourceCase             = "Case"
	SourceCaseTitle        = "Case Title"
	SourceIncidentType     = "Incident Type"
	SourceIncidentLocation = "Incident Location"
	SourceCriminal         = "Suspect/Criminal"
)

// AliasSource labels an alias candidate with the criminal's primary name.
func AliasSource(name string) string {
	return "Alias (" + name + ")"
}

// ParticipantSource labels a participant candidate with its type.
func ParticipantSource(participantType string) string {
	return participantType + " (Name)"
}

// OfficerSource labels an officer candidate with the officer's role.
func OfficerSource(role Role) string {
	return "Officer (" + string(role) + ")"
}

// Candidate is one searchable value flattened out of a domain entity.
// A single entity can contribute several candidates.
type Candidate struct {
	Name     string `json:"name"`
	Source   string `json:"source"`
	Details  string `json:"details,omitempty"`
	URL      string `json:"url,omitempty"`
	OwningID int64  `json:"id"`
}

// ScoredResult is a candidate that cleared the threshold.
type ScoredResult struct {
	Candidate
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}

// ScoredCase is a case ranked by the per-record scorer.
type ScoredCase struct {
	CaseRecord
	Score float64 `json:"score"`
	Rank  int     `json:"rank"`
}
