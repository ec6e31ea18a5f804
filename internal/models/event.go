package models

type Event struct {
	ID          int     `json:"id"`
	Nom         string  `json:"nom"`
	Description string  `json:"description"`
	Image       *string `json:"image,omitempty"`
	Lieu        string  `json:"lieu"`
	DateDebut   string  `json:"date_debut"`
	DateFin     string  `json:"date_fin"`
}

type CourseStatus string

const (
	CourseStatusActive    CourseStatus = "active"
	CourseStatusUpcoming  CourseStatus = "upcoming"
	CourseStatusCompleted CourseStatus = "completed"
)

// Course is the display projection of an Event. It is rebuilt on every load
// and shares the source event's ID.
type Course struct {
	ID          int          `json:"id"`
	Nom         string       `json:"nom"`
	CodeMatiere string       `json:"code_matiere,omitempty"`
	Date        string       `json:"date"`
	Time        string       `json:"time"`
	Lieu        string       `json:"lieu"`
	Type        string       `json:"type"`
	Status      CourseStatus `json:"status"`
	Credits     string       `json:"credits"`
	Icon        string       `json:"icon"`
	Professeur  string       `json:"professeur,omitempty"`
}
