package service

import (
	"fmt"
	"strconv"
	"time"

	"smartcampus/portal/internal/models"
)

const (
	courseType       = "Event"
	courseCredits    = "0 ECTS"
	courseIcon       = "calendar-outline"
	courseProfesseur = "Organization"
)

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Projector turns events into courses for display in a fixed location.
type Projector struct {
	loc *time.Location
}

func NewProjector(loc *time.Location) *Projector {
	if loc == nil {
		loc = time.Local
	}
	return &Projector{loc: loc}
}

func (p *Projector) Location() *time.Location {
	return p.loc
}

func (p *Projector) ProjectAll(events []models.Event, now time.Time) []models.Course {
	courses := make([]models.Course, 0, len(events))
	for _, event := range events {
		courses = append(courses, p.Project(event, now))
	}
	return courses
}

// Project builds the course view of event as of now. An unparseable start
// yields empty date and time and a completed status.
func (p *Projector) Project(event models.Event, now time.Time) models.Course {
	course := models.Course{
		ID:          event.ID,
		Nom:         event.Nom,
		CodeMatiere: "EVENT" + strconv.Itoa(event.ID),
		Lieu:        event.Lieu,
		Type:        courseType,
		Status:      models.CourseStatusCompleted,
		Credits:     courseCredits,
		Icon:        courseIcon,
		Professeur:  courseProfesseur,
	}

	start, err := ParseEventTime(event.DateDebut, p.loc)
	if err != nil {
		return course
	}
	course.Date = FormatDate(start, p.loc)
	course.Time = FormatTime(start, p.loc)
	course.Status = p.Status(start, now)
	return course
}

// Status compares calendar days only: an event starting today is active for
// the whole day, even once its end time has passed.
func (p *Projector) Status(start, now time.Time) models.CourseStatus {
	sy, sm, sd := start.In(p.loc).Date()
	ny, nm, nd := now.In(p.loc).Date()
	switch {
	case sy == ny && sm == nm && sd == nd:
		return models.CourseStatusActive
	case start.After(now):
		return models.CourseStatusUpcoming
	default:
		return models.CourseStatusCompleted
	}
}

// ParseEventTime accepts RFC 3339 timestamps and the zone-less layouts the
// campus API emits; zone-less values are read in loc.
func ParseEventTime(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised event time %q", value)
}
