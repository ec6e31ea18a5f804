package service

import "smartcampus/portal/internal/models"

type CourseStats struct {
	Upcoming  int `json:"upcoming"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

func CalculateStats(courses []models.Course) CourseStats {
	stats := CourseStats{Total: len(courses)}
	for _, course := range courses {
		switch course.Status {
		case models.CourseStatusUpcoming:
			stats.Upcoming++
		case models.CourseStatusActive:
			stats.Active++
		case models.CourseStatusCompleted:
			stats.Completed++
		}
	}
	return stats
}
