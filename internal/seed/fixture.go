// Package seed loads station fixtures from YAML and writes them to the store.
package seed

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/thebtf/recordsearch/pkg/models"
)

// Fixture is the top-level YAML structure.
type Fixture struct {
	Stations []Station `yaml:"stations"`
}

// Station describes a station and everything recorded against it.
type Station struct {
	Code      string     `yaml:"code"`
	Name      string     `yaml:"name"`
	Officers  []Officer  `yaml:"officers"`
	Criminals []Criminal `yaml:"criminals"`
	Cases     []Case     `yaml:"cases"`
}

// Officer is a station user. Password is plain text in the fixture and
// hashed before it is stored.
type Officer struct {
	Username    string      `yaml:"username"`
	Password    string      `yaml:"password"`
	FullName    string      `yaml:"full_name"`
	BadgeNumber string      `yaml:"badge_number"`
	Role        models.Role `yaml:"role"`
}

type Criminal struct {
	Name    string `yaml:"name"`
	Aliases string `yaml:"aliases"`
	Status  string `yaml:"status"`
}

type Participant struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Contact string `yaml:"contact"`
}

// Case refers to officers by username and to criminals by name.
type Case struct {
	CaseNumber   string        `yaml:"case_number"`
	Title        string        `yaml:"title"`
	OffenseType  string        `yaml:"offense_type"`
	Description  string        `yaml:"description"`
	Location     string        `yaml:"location"`
	Status       string        `yaml:"status"`
	Priority     string        `yaml:"priority"`
	CreatedBy    string        `yaml:"created_by"`
	Lead         string        `yaml:"lead"`
	Team         []string      `yaml:"team"`
	Criminals    []string      `yaml:"criminals"`
	Participants []Participant `yaml:"participants"`
}

// Load reads the fixture at path.
// If the file does not exist, Load returns an empty Fixture (not an error).
func Load(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Fixture{}, nil
		}
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses a fixture, rejecting unknown keys.
func Decode(r io.Reader) (*Fixture, error) {
	fx := &Fixture{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return fx, nil
}

var participantTypes = map[string]bool{
	models.ParticipantVictim:      true,
	models.ParticipantSuspect:     true,
	models.ParticipantWitness:     true,
	models.ParticipantComplainant: true,
}

// Validate checks the references a fixture makes within each station.
func (fx *Fixture) Validate() error {
	for _, st := range fx.Stations {
		if strings.TrimSpace(st.Code) == "" {
			return errors.New("station code is required")
		}

		usernames := make(map[string]bool, len(st.Officers))
		for _, o := range st.Officers {
			if o.Username == "" || o.Role == "" {
				return fmt.Errorf("station %s: officer needs username and role", st.Code)
			}
			usernames[o.Username] = true
		}
		criminals := make(map[string]bool, len(st.Criminals))
		for _, c := range st.Criminals {
			criminals[c.Name] = true
		}

		for _, c := range st.Cases {
			if strings.TrimSpace(c.Title) == "" {
				return fmt.Errorf("station %s: case title is required", st.Code)
			}
			if c.CreatedBy == "" {
				return fmt.Errorf("station %s: case %q needs created_by", st.Code, c.Title)
			}
			for _, u := range append([]string{c.CreatedBy, c.Lead}, c.Team...) {
				if u != "" && !usernames[u] {
					return fmt.Errorf("station %s: case %q references unknown officer %q", st.Code, c.Title, u)
				}
			}
			for _, name := range c.Criminals {
				if !criminals[name] {
					return fmt.Errorf("station %s: case %q references unknown criminal %q", st.Code, c.Title, name)
				}
			}
			for _, p := range c.Participants {
				if !participantTypes[p.Type] {
					return fmt.Errorf("station %s: case %q has participant type %q", st.Code, c.Title, p.Type)
				}
			}
		}
	}
	return nil
}
