package service

import (
	"context"
	"fmt"
	"time"

	"smartcampus/portal/internal/models"
)

// EventsFallbackPolicy decides what LoadUserData returns when the events
// cannot be fetched.
type EventsFallbackPolicy string

const (
	// FallbackSampleEvents masks the failure with two built-in sample events
	// so the dashboard always has something to show.
	FallbackSampleEvents EventsFallbackPolicy = "sample"
	// FallbackNone returns empty lists and exposes the failure in UserData.Err.
	FallbackNone EventsFallbackPolicy = "none"
)

func ParseFallbackPolicy(value string) (EventsFallbackPolicy, error) {
	switch EventsFallbackPolicy(value) {
	case "", FallbackSampleEvents:
		return FallbackSampleEvents, nil
	case FallbackNone:
		return FallbackNone, nil
	}
	return "", fmt.Errorf("unknown events fallback policy %q", value)
}

type DataSource string

const (
	SourceLive   DataSource = "live"
	SourceSample DataSource = "sample"
	SourceNone   DataSource = "none"
)

type UserData struct {
	Courses []models.Course `json:"courses"`
	Events  []models.Event  `json:"events"`
	Source  DataSource      `json:"source"`
	Err     error           `json:"-"`
}

// LoadUserData fetches upcoming events and projects them into courses. It
// never fails; on error the fallback policy supplies the result.
func (s *AuthService) LoadUserData(ctx context.Context) UserData {
	now := s.now()

	resp, err := s.api.UpcomingEvents(ctx)
	if err == nil && resp.Success {
		events := resp.Evenements
		if events == nil {
			events = []models.Event{}
		}
		return UserData{
			Courses: s.projector.ProjectAll(events, now),
			Events:  events,
			Source:  SourceLive,
		}
	}
	if err == nil {
		err = rejected(resp.Error, "upcoming events: success=false")
	}

	s.log.Warn().Err(err).Str("policy", string(s.fallback)).Msg("upcoming events unavailable")

	if s.fallback == FallbackNone {
		return UserData{
			Courses: []models.Course{},
			Events:  []models.Event{},
			Source:  SourceNone,
			Err:     err,
		}
	}

	events := SampleEvents(now)
	courses := s.projector.ProjectAll(events, now)
	for i := range courses {
		courses[i].Status = models.CourseStatusUpcoming
	}
	return UserData{Courses: courses, Events: events, Source: SourceSample, Err: err}
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// SampleEvents is the built-in pair of events shown when the campus API
// cannot be reached.
func SampleEvents(now time.Time) []models.Event {
	at := func(d time.Duration) string {
		return now.Add(d).UTC().Format(isoMillis)
	}
	day := 24 * time.Hour
	return []models.Event{
		{
			ID:          1,
			Nom:         "Hackathon ESTIAM 2025",
			Description: "Concours de développement sur 48h",
			Lieu:        "Campus principal",
			DateDebut:   at(day),
			DateFin:     at(3 * day),
		},
		{
			ID:          2,
			Nom:         "Conférence IA & Machine Learning",
			Description: "Tendances 2025 en intelligence artificielle",
			Lieu:        "Amphithéâtre A",
			DateDebut:   at(7 * day),
			DateFin:     at(7*day + 3*time.Hour),
		},
	}
}
