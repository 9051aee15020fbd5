package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"worktime/internal/model"
	"worktime/internal/repository"
	"worktime/internal/store"
)

var (
	office   = model.Location{Lat: 13.7563, Lng: 100.5018}
	nearby   = model.Location{Lat: 13.7570, Lng: 100.5018} // ~78 m
	faraway  = model.Location{Lat: 13.7650, Lng: 100.5018} // ~967 m
	alice    = model.User{Username: "alice", DeviceID: "d1", Role: model.RoleUser}
	bob      = model.User{Username: "bob", DeviceID: "d2", Role: model.RoleUser}
	bambooAd = model.User{Username: "bamboo", DeviceID: "d1", Role: model.RoleAdmin}
)

func locPtr(l model.Location) *model.Location { return &l }

func strPtr(s string) *string { return &s }

// fakeClock hands out a fixed time that tests advance manually
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock(t time.Time) *fakeClock { return &fakeClock{t: t} }

// fakeEnricher records calls and returns canned values
type fakeEnricher struct {
	place      string
	summary    string
	err        error
	placeCalls int
	sumCalls   int
}

func (f *fakeEnricher) PlaceName(_ context.Context, _ model.Location) (string, error) {
	f.placeCalls++
	return f.place, f.err
}

func (f *fakeEnricher) Summarize(_ context.Context, _ string, _ time.Duration) (string, error) {
	f.sumCalls++
	return f.summary, f.err
}

var errEnrich = errors.New("quota exceeded")

type sessionFixture struct {
	kv       *store.Memory
	repo     repository.WorkLogRepository
	clock    *fakeClock
	enricher *fakeEnricher
	svc      SessionService
}

func newSessionFixture(enforce bool) *sessionFixture {
	kv := store.NewMemory()
	repo := repository.NewWorkLogRepository(kv)
	clock := newClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC))
	enricher := &fakeEnricher{}
	svc := NewSessionService(repo, enricher, SessionOptions{
		MaxMeters:        100,
		EnforceProximity: enforce,
		Now:              clock.Now,
	}, zap.NewNop())
	return &sessionFixture{kv: kv, repo: repo, clock: clock, enricher: enricher, svc: svc}
}
