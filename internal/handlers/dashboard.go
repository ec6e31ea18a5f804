package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"smartcampus/portal/internal/models"
	"smartcampus/portal/internal/service"
)

type courseView struct {
	models.Course
	StatusText  string `json:"statusText"`
	StatusColor string `json:"statusColor"`
	TypeColor   string `json:"typeColor"`
}

type dashboardResponse struct {
	Courses []courseView        `json:"courses"`
	Events  []models.Event      `json:"events"`
	Stats   service.CourseStats `json:"stats"`
	Source  service.DataSource  `json:"source"`
	Error   string              `json:"error,omitempty"`
}

// Dashboard always answers 200. With the "none" fallback policy a failed
// events fetch is reported in the error field.
func (h HandlerSet) Dashboard(c *gin.Context) {
	data := h.auth.LoadUserData(c.Request.Context())

	courses := make([]courseView, 0, len(data.Courses))
	for _, course := range data.Courses {
		courses = append(courses, courseView{
			Course:      course,
			StatusText:  service.StatusText(course.Status),
			StatusColor: service.StatusColor(course.Status),
			TypeColor:   service.TypeColor(course.Type),
		})
	}

	resp := dashboardResponse{
		Courses: courses,
		Events:  data.Events,
		Stats:   service.CalculateStats(data.Courses),
		Source:  data.Source,
	}
	if data.Source == service.SourceNone && data.Err != nil {
		resp.Error = data.Err.Error()
	}

	c.JSON(http.StatusOK, resp)
}
