package picker

import (
	"testing"
	"time"

	"QuoteDesk/internal/period"
)

func TestSessions_OneFormPerChat(t *testing.T) {
	owners := map[string]*fakeFacade{}
	s := NewSessions(func(owner string) Facade {
		fc := &fakeFacade{}
		owners[owner] = fc
		return fc
	}, time.Minute, nil)

	a := s.Get(1)
	if s.Get(1) != a {
		t.Fatal("expected the same form for the same chat")
	}
	b := s.Get(2)
	if a == b {
		t.Fatal("expected distinct forms per chat")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", s.Len())
	}

	a.SetSymbol("AAPL")
	a.SelectPeriodOption(period.OneMonth)
	a.Submit()
	if len(owners["1"].calls) != 1 || len(owners["2"].calls) != 0 {
		t.Error("expected request routed through chat 1's facade only")
	}
}

func TestSessions_Reset(t *testing.T) {
	s := NewSessions(func(string) Facade { return &fakeFacade{} }, time.Minute, nil)
	a := s.Get(7)
	a.SetSymbol("AAPL")
	s.Reset(7)
	if s.Get(7).Snapshot().Symbol != "" {
		t.Error("expected a fresh form after reset")
	}
}

func TestZonedClock(t *testing.T) {
	cst := time.FixedZone("CST", 8*3600)
	clock := ZonedClock(func() time.Time { return time.Date(2024, 6, 15, 17, 30, 0, 0, time.UTC) }, cst)
	now := clock()
	if now.Location() != cst || now.Day() != 16 {
		t.Errorf("expected 2024-06-16 in CST, got %v", now)
	}
}
