package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/thebtf/recordsearch/pkg/models"
)

type stubFetcher struct {
	set   *models.EntitySet
	err   error
	panic bool
	calls int
	scope models.Scope
}

func (f *stubFetcher) FetchEntities(_ context.Context, scope models.Scope) (*models.EntitySet, error) {
	f.calls++
	f.scope = scope
	if f.panic {
		panic("boom")
	}
	return f.set, f.err
}

// ManagerSuite is a test suite for search Manager operations.
type ManagerSuite struct {
	suite.Suite
	ctx     context.Context
	scope   models.Scope
	fetcher *stubFetcher
	manager *Manager
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

func (s *ManagerSuite) SetupTest() {
	s.ctx = context.Background()
	s.scope = models.Scope{StationID: 1, OfficerID: 2, Role: models.RoleInspector}
	s.fetcher = &stubFetcher{set: sampleEntities()}

	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	s.Require().NoError(err)
	s.manager = NewManager(s.fetcher, WithMetrics(metrics))
}

func (s *ManagerSuite) TestSearch_FindsParticipant() {
	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh"})

	s.Require().NotEmpty(resp.Results)
	s.Equal("Rajesh Patil", resp.Results[0].Name)
	s.Equal("Complainant (Name)", resp.Results[0].Source)
	s.Equal(int64(20), resp.Results[0].OwningID)
	s.False(resp.Degraded)
	s.Equal([]string{"rajesh"}, resp.Variants)
	s.Equal(11, resp.Candidates)
	s.Equal(s.scope, s.fetcher.scope)
}

func (s *ManagerSuite) TestSearch_InvalidQuerySkipsFetch() {
	for _, q := range []string{"", "r", "<rajesh>", "{x}"} {
		resp := s.manager.Search(s.ctx, s.scope, Params{Query: q})
		s.NotNil(resp.Results)
		s.Empty(resp.Results)
		s.False(resp.Degraded)
	}
	s.Zero(s.fetcher.calls)
}

func (s *ManagerSuite) TestSearch_FetchErrorDegrades() {
	s.fetcher.err = errors.New("database is locked")

	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh"})

	s.True(resp.Degraded)
	s.NotNil(resp.Results)
	s.Empty(resp.Results)
}

func (s *ManagerSuite) TestSearch_PanicDegrades() {
	s.fetcher.panic = true

	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh"})

	s.Require().NotNil(resp)
	s.True(resp.Degraded)
	s.Empty(resp.Results)
	s.Equal("rajesh", resp.Query)
}

func (s *ManagerSuite) TestSearch_NilEntitySet() {
	s.fetcher.set = nil

	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh"})

	s.False(resp.Degraded)
	s.Empty(resp.Results)
}

func (s *ManagerSuite) TestSearch_DevanagariVariants() {
	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "राजेश", Threshold: ptr(55.0)})

	s.Equal([]string{"राजेश", "rAjeza"}, resp.Variants)
	s.Require().NotEmpty(resp.Results)
	s.Equal("Rajesh Patil", resp.Results[0].Name)
}

func (s *ManagerSuite) TestSearch_LimitClamp() {
	officers := make([]models.OfficerRecord, 0, 150)
	for i := range 150 {
		officers = append(officers, models.OfficerRecord{ID: int64(i + 1), FullName: "Rajesh Kumar", Role: models.RoleOfficer})
	}
	s.fetcher.set = &models.EntitySet{Officers: officers}

	s.Len(s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh kumar"}).Results, DefaultLimit)
	s.Len(s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh kumar", Limit: ptr(1000)}).Results, MaxLimit)
	s.Len(s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh kumar", Limit: ptr(3)}).Results, 3)
}

func (s *ManagerSuite) TestSearch_ThresholdDefaultsAndClamp() {
	// 90 for a first-name match: kept at the default threshold of 60
	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh", Threshold: ptr(-5.0)})
	s.NotEmpty(resp.Results)

	// above 100 clamps to 100, which only exact matches reach
	resp = s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh", Threshold: ptr(250.0)})
	s.Empty(resp.Results)

	resp = s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh patil", Threshold: ptr(250.0)})
	s.Len(resp.Results, 1)
}

func (s *ManagerSuite) TestSearch_ExplicitZero() {
	s.fetcher.set = &models.EntitySet{Cases: []models.CaseRecord{{ID: 1, CaseNumber: "CASE-2025-0001"}}}

	// unset threshold falls back to 60, which the case number does not reach
	s.Empty(s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh"}).Results)

	resp := s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh", Threshold: ptr(0.0)})
	s.Require().Len(resp.Results, 1)
	s.Equal("CASE-2025-0001", resp.Results[0].Name)
	s.InDelta(40, resp.Results[0].Score, 0.001)

	resp = s.manager.Search(s.ctx, s.scope, Params{Query: "rajesh", Threshold: ptr(0.0), Limit: ptr(0)})
	s.NotNil(resp.Results)
	s.Empty(resp.Results)
}

func (s *ManagerSuite) TestRankCases_ExplicitZero() {
	cases := []models.CaseRecord{{ID: 1, CaseNumber: "CASE-2025-0001", Title: "Vehicle theft"}}

	s.Empty(s.manager.RankCases(s.ctx, "chain snatching", cases, nil, nil))
	s.Len(s.manager.RankCases(s.ctx, "chain snatching", cases, ptr(0.0), nil), 1)
	s.Empty(s.manager.RankCases(s.ctx, "chain snatching", cases, ptr(0.0), ptr(0)))
}

func (s *ManagerSuite) TestWithDefaults() {
	m := NewManager(s.fetcher, WithDefaults(95, 5, 20))
	s.Equal(95.0, m.threshold)
	s.Equal(5, m.limit)
	s.Equal(20, m.maxLimit)

	resp := m.Search(s.ctx, s.scope, Params{Query: "rajesh"})
	s.Empty(resp.Results)

	m = NewManager(s.fetcher, WithDefaults(0, 500, 0))
	s.Equal(DefaultThreshold, m.threshold)
	s.Equal(MaxLimit, m.limit)
}

func (s *ManagerSuite) TestRankCases() {
	cases := []models.CaseRecord{
		{ID: 1, CaseNumber: "CASE-2025-0001", Title: "Vehicle theft"},
		{ID: 2, CaseNumber: "CASE-2025-0002", Title: "Chain snatching", VictimNames: []string{"Meena Joshi"}},
	}

	ranked := s.manager.RankCases(s.ctx, "joshi meena", cases, nil, nil)

	s.Require().Len(ranked, 1)
	s.Equal(int64(2), ranked[0].ID)
	s.InDelta(100, ranked[0].Score, 0.001)

	s.Empty(s.manager.RankCases(s.ctx, "j", cases, nil, nil))
}

func (s *ManagerSuite) TestNewMetrics_GlobalProvider() {
	metrics, err := NewMetrics(nil)
	s.Require().NoError(err)
	s.NotNil(metrics)

	var nilMetrics *Metrics
	s.NotPanics(func() { nilMetrics.record(s.ctx, modeGlobal, outcomeOK, 1, 1) })
}

func ptr[T any](v T) *T {
	return &v
}
