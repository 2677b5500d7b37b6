package service

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type fakeSiteStore struct {
	sites map[uuid.UUID]model.Site
}

func newFakeSiteStore(sites ...model.Site) *fakeSiteStore {
	store := &fakeSiteStore{sites: map[uuid.UUID]model.Site{}}
	for _, site := range sites {
		store.sites[site.ID] = site
	}
	return store
}

func (f *fakeSiteStore) Create(_ context.Context, site model.Site) (*model.Site, error) {
	f.sites[site.ID] = site
	return &site, nil
}

func (f *fakeSiteStore) GetByID(_ context.Context, id uuid.UUID) (*model.Site, error) {
	site, ok := f.sites[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &site, nil
}

func (f *fakeSiteStore) List(_ context.Context) ([]model.Site, error) {
	out := make([]model.Site, 0, len(f.sites))
	for _, site := range f.sites {
		out = append(out, site)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSiteStore) Update(_ context.Context, site model.Site) error {
	if _, ok := f.sites[site.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.sites[site.ID] = site
	return nil
}

func (f *fakeSiteStore) UpdateStatuses(_ context.Context, ids []uuid.UUID, status model.SiteStatus) error {
	for _, id := range ids {
		if site, ok := f.sites[id]; ok {
			site.Status = status
			f.sites[id] = site
		}
	}
	return nil
}

func (f *fakeSiteStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.sites[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.sites, id)
	return nil
}

type fakeHaulerStore struct {
	haulers map[uuid.UUID]model.Hauler
}

func newFakeHaulerStore(haulers ...model.Hauler) *fakeHaulerStore {
	store := &fakeHaulerStore{haulers: map[uuid.UUID]model.Hauler{}}
	for _, hauler := range haulers {
		store.haulers[hauler.ID] = hauler
	}
	return store
}

func (f *fakeHaulerStore) Create(_ context.Context, hauler model.Hauler) (*model.Hauler, error) {
	f.haulers[hauler.ID] = hauler
	return &hauler, nil
}

func (f *fakeHaulerStore) GetByID(_ context.Context, id uuid.UUID) (*model.Hauler, error) {
	hauler, ok := f.haulers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &hauler, nil
}

func (f *fakeHaulerStore) List(_ context.Context) ([]model.Hauler, error) {
	out := make([]model.Hauler, 0, len(f.haulers))
	for _, hauler := range f.haulers {
		out = append(out, hauler)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeHaulerStore) Update(_ context.Context, hauler model.Hauler) error {
	if _, ok := f.haulers[hauler.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.haulers[hauler.ID] = hauler
	return nil
}

type fakeMatchStore struct {
	matches map[uuid.UUID]model.Match
}

func newFakeMatchStore(matches ...model.Match) *fakeMatchStore {
	store := &fakeMatchStore{matches: map[uuid.UUID]model.Match{}}
	for _, m := range matches {
		store.matches[m.ID] = m
	}
	return store
}

func (f *fakeMatchStore) ReplaceSuggestions(_ context.Context, matches []model.Match) error {
	for id, m := range f.matches {
		if m.Status == model.MatchStatusSuggested {
			delete(f.matches, id)
		}
	}
	for _, m := range matches {
		f.matches[m.ID] = m
	}
	return nil
}

func (f *fakeMatchStore) GetByID(_ context.Context, id uuid.UUID) (*model.Match, error) {
	m, ok := f.matches[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (f *fakeMatchStore) List(_ context.Context, status *model.MatchStatus) ([]model.Match, error) {
	out := make([]model.Match, 0, len(f.matches))
	for _, m := range f.matches {
		if status != nil && m.Status != *status {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeMatchStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.MatchStatus) error {
	m, ok := f.matches[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	m.Status = status
	f.matches[id] = m
	return nil
}

type fakeScheduleStore struct {
	schedules map[uuid.UUID]model.Schedule
}

func newFakeScheduleStore(schedules ...model.Schedule) *fakeScheduleStore {
	store := &fakeScheduleStore{schedules: map[uuid.UUID]model.Schedule{}}
	for _, s := range schedules {
		store.schedules[s.ID] = s
	}
	return store
}

func (f *fakeScheduleStore) CreateBatch(_ context.Context, schedules []model.Schedule) error {
	for _, s := range schedules {
		f.schedules[s.ID] = s
	}
	return nil
}

func (f *fakeScheduleStore) GetByID(_ context.Context, id uuid.UUID) (*model.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (f *fakeScheduleStore) List(_ context.Context) ([]model.Schedule, error) {
	out := make([]model.Schedule, 0, len(f.schedules))
	for _, s := range f.schedules {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (f *fakeScheduleStore) Update(_ context.Context, schedule model.Schedule) error {
	if _, ok := f.schedules[schedule.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.schedules[schedule.ID] = schedule
	return nil
}
