package search

import (
	"strconv"
	"strings"

	"github.com/thebtf/recordsearch/pkg/models"
)

// EnumerateCandidates flattens an entity snapshot into searchable candidates.
// Cases come first, then criminals, participants and officers, each in the
// order given. Blank values are skipped.
func EnumerateCandidates(set *models.EntitySet) []models.Candidate {
	if set == nil {
		return nil
	}

	out := make([]models.Candidate, 0, set.Size()*2)
	for i := range set.Cases {
		out = appendCase(out, &set.Cases[i])
	}
	for i := range set.Criminals {
		out = appendCriminal(out, &set.Criminals[i])
	}
	for i := range set.Participants {
		out = appendParticipant(out, &set.Participants[i])
	}
	for i := range set.Officers {
		out = appendOfficer(out, &set.Officers[i])
	}
	return out
}

func appendCandidate(out []models.Candidate, c models.Candidate) []models.Candidate {
	if strings.TrimSpace(c.Name) == "" {
		return out
	}
	return append(out, c)
}

func appendCase(out []models.Candidate, c *models.CaseRecord) []models.Candidate {
	url := "/cases/" + strconv.FormatInt(c.ID, 10)
	ref := "Case #" + c.CaseNumber

	out = appendCandidate(out, models.Candidate{
		Name: c.CaseNumber, Source: models.SourceCase, OwningID: c.ID, Details: c.Title, URL: url,
	})
	out = appendCandidate(out, models.Candidate{
		Name: c.Title, Source: models.SourceCaseTitle, OwningID: c.ID, Details: "#" + c.CaseNumber, URL: url,
	})
	out = appendCandidate(out, models.Candidate{
		Name: c.OffenseType, Source: models.SourceIncidentType, OwningID: c.ID, Details: ref, URL: url,
	})
	return appendCandidate(out, models.Candidate{
		Name: c.Location, Source: models.SourceIncidentLocation, OwningID: c.ID, Details: ref, URL: url,
	})
}

func appendCriminal(out []models.Candidate, c *models.CriminalRecord) []models.Candidate {
	url := "/criminals/" + strconv.FormatInt(c.ID, 10)
	details := "Status: " + c.Status

	out = appendCandidate(out, models.Candidate{
		Name: c.Name, Source: models.SourceCriminal, OwningID: c.ID, Details: details, URL: url,
	})
	return appendCandidate(out, models.Candidate{
		Name: c.Aliases, Source: models.AliasSource(c.Name), OwningID: c.ID, Details: details, URL: url,
	})
}

func appendParticipant(out []models.Candidate, p *models.ParticipantRecord) []models.Candidate {
	caseNumber := p.CaseNumber
	if caseNumber == "" {
		caseNumber = "Unknown"
	}
	return appendCandidate(out, models.Candidate{
		Name:     p.Name,
		Source:   models.ParticipantSource(p.Type),
		OwningID: p.ID,
		Details:  "Case: " + caseNumber,
		URL:      "/cases/" + strconv.FormatInt(p.CaseID, 10),
	})
}

func appendOfficer(out []models.Candidate, o *models.OfficerRecord) []models.Candidate {
	return appendCandidate(out, models.Candidate{
		Name:     o.FullName,
		Source:   models.OfficerSource(o.Role),
		OwningID: o.ID,
		Details:  o.BadgeNumber,
		URL:      "/admin/users",
	})
}
