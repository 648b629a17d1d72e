package seed

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"github.com/thebtf/recordsearch/internal/db/gorm"
	"github.com/thebtf/recordsearch/pkg/models"
)

func testSeeder(t *testing.T) (*Seeder, *gorm.Store) {
	t.Helper()

	store, err := gorm.NewStore(gorm.Config{
		Path:     filepath.Join(t.TempDir(), "seed.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s := NewSeeder(store)
	s.cost = bcrypt.MinCost
	return s, store
}

func TestLoadMissingFile(t *testing.T) {
	fx, err := Load("/nonexistent/path/that/does/not/exist.yml")
	require.NoError(t, err)
	require.NotNil(t, fx)
	assert.Empty(t, fx.Stations)
}

func TestLoadFixture(t *testing.T) {
	fx, err := Load(filepath.Join("testdata", "station.yml"))
	require.NoError(t, err)
	require.Len(t, fx.Stations, 1)

	st := fx.Stations[0]
	assert.Equal(t, "PS-SHIVAJI", st.Code)
	assert.Len(t, st.Officers, 3)
	assert.Equal(t, models.RoleInspector, st.Officers[0].Role)
	require.Len(t, st.Cases, 2)
	assert.Equal(t, []string{"meera"}, st.Cases[0].Team)
	assert.Equal(t, "CASE-2024-0100", st.Cases[1].CaseNumber)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		errPart string
	}{
		{
			name:    "unknown field",
			yaml:    "stations:\n  - code: A\n    nickname: x\n",
			errPart: "nickname",
		},
		{
			name:    "missing code",
			yaml:    "stations:\n  - name: A\n",
			errPart: "code is required",
		},
		{
			name:    "officer without role",
			yaml:    "stations:\n  - code: A\n    officers:\n      - username: u\n",
			errPart: "username and role",
		},
		{
			name:    "unknown officer",
			yaml:    "stations:\n  - code: A\n    cases:\n      - title: T\n        created_by: ghost\n",
			errPart: "unknown officer",
		},
		{
			name:    "missing creator",
			yaml:    "stations:\n  - code: A\n    cases:\n      - title: T\n",
			errPart: "created_by",
		},
		{
			name:    "unknown criminal",
			yaml:    "stations:\n  - code: A\n    officers:\n      - {username: u, role: clerk}\n    cases:\n      - {title: T, created_by: u, criminals: [Nobody]}\n",
			errPart: "unknown criminal",
		},
		{
			name:    "bad participant type",
			yaml:    "stations:\n  - code: A\n    officers:\n      - {username: u, role: clerk}\n    cases:\n      - title: T\n        created_by: u\n        participants:\n          - {name: X, type: Bystander}\n",
			errPart: "Bystander",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	fx, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx.Stations)
}

func TestApply(t *testing.T) {
	s, store := testSeeder(t)
	ctx := context.Background()

	fx, err := Load(filepath.Join("testdata", "station.yml"))
	require.NoError(t, err)

	res, err := s.Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, &Result{Stations: 1, Officers: 3, Criminals: 2, Cases: 2}, res)

	var officer gorm.Officer
	require.NoError(t, store.DB.Where("username = ?", "priya").First(&officer).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(officer.PasswordHash), []byte("changeme")))
	assert.Equal(t, "MH-1024", officer.BadgeNumber)

	set, err := gorm.NewRecordStore(store).FetchEntities(ctx, models.Scope{StationID: officer.StationID, Role: models.RoleInspector})
	require.NoError(t, err)
	assert.Len(t, set.Cases, 2)
	assert.Len(t, set.Criminals, 2)
	assert.Len(t, set.Officers, 3)
	assert.Len(t, set.Participants, 3)
	assert.Equal(t, "Arrested", set.Criminals[1].Status)

	cases, err := gorm.NewRecordStore(store).ListCases(ctx,
		models.Scope{StationID: officer.StationID, Role: models.RoleIO, OfficerID: officerID(t, store, "meera")},
		gorm.CaseFilter{})
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, "Vehicle theft", cases[0].Title)
	assert.Equal(t, []string{"Suresh Kumar"}, cases[0].SuspectNames)
}

func TestApply_ReusesStationAndOfficers(t *testing.T) {
	s, _ := testSeeder(t)
	ctx := context.Background()

	fx := &Fixture{Stations: []Station{{
		Code:     "PS-A",
		Officers: []Officer{{Username: "priya", Password: "pw", Role: models.RoleInspector}},
		Cases:    []Case{{Title: "Burglary", CreatedBy: "priya"}},
	}}}

	_, err := s.Apply(ctx, fx)
	require.NoError(t, err)

	res, err := s.Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Officers)
	assert.Equal(t, 1, res.Stations)
	assert.Equal(t, 1, res.Cases)
}

func TestApply_RollsBackOnFailure(t *testing.T) {
	s, store := testSeeder(t)
	ctx := context.Background()

	fx := &Fixture{Stations: []Station{
		{
			Code:      "PS-A",
			Officers:  []Officer{{Username: "priya", Password: "pw", Role: models.RoleInspector}},
			Criminals: []Criminal{{Name: "Suresh Kumar"}},
			Cases:     []Case{{CaseNumber: "CASE-2025-0001", Title: "Burglary", CreatedBy: "priya"}},
		},
		{
			Code:     "PS-B",
			Officers: []Officer{{Username: "arjun", Password: "pw", Role: models.RoleIO}},
			Cases:    []Case{{CaseNumber: "CASE-2025-0001", Title: "Vehicle theft", CreatedBy: "arjun"}},
		},
	}}

	res, err := s.Apply(ctx, fx)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "station PS-B")

	for _, model := range []any{&gorm.Station{}, &gorm.Officer{}, &gorm.Criminal{}, &gorm.Case{}} {
		var n int64
		require.NoError(t, store.DB.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows left after failed apply", model)
	}

	fx.Stations = fx.Stations[:1]
	res, err = s.Apply(ctx, fx)
	require.NoError(t, err)
	assert.Equal(t, &Result{Stations: 1, Officers: 1, Criminals: 1, Cases: 1}, res)
}

func officerID(t *testing.T, store *gorm.Store, username string) int64 {
	t.Helper()
	id, err := gorm.NewStationStore(store).OfficerIDByUsername(context.Background(), username)
	require.NoError(t, err)
	return id
}
