package service

import (
	"regexp"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"smartcampus/portal/internal/models"
)

const defaultColor = "#9CA3AF"

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	avatarColors = [...]string{
		"#6366F1", "#8B5CF6", "#EC4899", "#EF4444",
		"#F59E0B", "#10B981", "#06B6D4", "#84CC16",
	}

	typeColors = map[string]string{
		"Cours":     "#6366F1",
		"TP":        "#10B981",
		"TD":        "#F59E0B",
		"Projet":    "#EC4899",
		"Examen":    "#EF4444",
		"Événement": "#8B5CF6",
		courseType:  "#8B5CF6",
	}
)

func StatusText(status models.CourseStatus) string {
	switch status {
	case models.CourseStatusActive:
		return "En cours"
	case models.CourseStatusUpcoming:
		return "À venir"
	case models.CourseStatusCompleted:
		return "Terminé"
	default:
		return string(status)
	}
}

func StatusColor(status models.CourseStatus) string {
	switch status {
	case models.CourseStatusActive:
		return "#10B981"
	case models.CourseStatusUpcoming:
		return "#6366F1"
	default:
		return defaultColor
	}
}

func TypeColor(courseType string) string {
	if color, ok := typeColors[courseType]; ok {
		return color
	}
	return defaultColor
}

// MaskCardNumber keeps the last four characters: "•••• 1234".
func MaskCardNumber(number string) string {
	if utf8.RuneCountInString(number) < 4 {
		return number
	}
	runes := []rune(number)
	return "•••• " + string(runes[len(runes)-4:])
}

func Initials(firstname, lastname string) string {
	var b strings.Builder
	for _, name := range []string{firstname, lastname} {
		if r, _ := utf8.DecodeRuneInString(name); r != utf8.RuneError {
			b.WriteRune(r)
		}
	}
	return strings.ToUpper(b.String())
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// AvatarColor picks a stable palette colour from name. The hash runs over
// UTF-16 code units with a 32-bit shift so web and mobile clients agree.
func AvatarColor(name string) string {
	var hash int64
	for _, unit := range utf16.Encode([]rune(name)) {
		hash = int64(unit) + (int64(int32(hash)<<5) - hash)
	}
	if hash < 0 {
		hash = -hash
	}
	return avatarColors[hash%int64(len(avatarColors))]
}
