package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartcampus/portal/internal/campusapi"
	"smartcampus/portal/internal/models"
)

func TestLoadUserData_Live(t *testing.T) {
	api := &fakeCampus{events: campusapi.EventsResponse{
		Success: true,
		Evenements: []models.Event{
			{ID: 7, Nom: "Forum", DateDebut: "2026-10-15T09:00:00", DateFin: "2026-10-15T10:00:00"},
			{ID: 8, Nom: "Gala", DateDebut: "2026-12-01T20:00:00"},
		},
	}}
	svc := newAuth(api, nil)
	svc.now = func() time.Time { return at("2026-10-15 15:00") }

	data := svc.LoadUserData(context.Background())

	assert.Equal(t, SourceLive, data.Source)
	assert.NoError(t, data.Err)
	require.Len(t, data.Courses, 2)
	assert.Equal(t, models.CourseStatusActive, data.Courses[0].Status)
	assert.Equal(t, models.CourseStatusUpcoming, data.Courses[1].Status)
	assert.Len(t, data.Events, 2)
}

func TestLoadUserData_FallsBackToSampleEvents(t *testing.T) {
	now := at("2026-10-15 15:00")
	for name, api := range map[string]*fakeCampus{
		"network error": {eventsErr: errNetwork},
		"success false": {events: campusapi.EventsResponse{Success: false}},
	} {
		t.Run(name, func(t *testing.T) {
			svc := newAuth(api, nil)
			svc.now = func() time.Time { return now }

			data := svc.LoadUserData(context.Background())

			assert.Equal(t, SourceSample, data.Source)
			assert.Error(t, data.Err)
			require.Len(t, data.Events, 2)
			require.Len(t, data.Courses, 2)
			assert.Equal(t, "Hackathon ESTIAM 2025", data.Events[0].Nom)
			assert.Equal(t, "Conférence IA & Machine Learning", data.Events[1].Nom)
			for _, c := range data.Courses {
				assert.Equal(t, models.CourseStatusUpcoming, c.Status)
			}
			assert.Equal(t, "EVENT1", data.Courses[0].CodeMatiere)
		})
	}
}

func TestLoadUserData_NonePolicyExposesFailure(t *testing.T) {
	svc := NewAuthService(&fakeCampus{eventsErr: errNetwork}, nil, NewProjector(paris), FallbackNone, zerolog.Nop())

	data := svc.LoadUserData(context.Background())

	assert.Equal(t, SourceNone, data.Source)
	assert.ErrorIs(t, data.Err, errNetwork)
	assert.Empty(t, data.Courses)
	assert.NotNil(t, data.Courses)
	assert.Empty(t, data.Events)
}

func TestSampleEvents(t *testing.T) {
	now := time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC)

	events := SampleEvents(now)

	require.Len(t, events, 2)
	assert.Equal(t, "2026-10-16T13:00:00.000Z", events[0].DateDebut)
	assert.Equal(t, "2026-10-18T13:00:00.000Z", events[0].DateFin)
	assert.Equal(t, "2026-10-22T13:00:00.000Z", events[1].DateDebut)
	assert.Equal(t, "2026-10-22T16:00:00.000Z", events[1].DateFin)
}

func TestParseFallbackPolicy(t *testing.T) {
	p, err := ParseFallbackPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FallbackSampleEvents, p)

	p, err = ParseFallbackPolicy("none")
	require.NoError(t, err)
	assert.Equal(t, FallbackNone, p)

	_, err = ParseFallbackPolicy("retry")
	assert.Error(t, err)
}
