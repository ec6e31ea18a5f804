package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartcampus/portal/internal/models"
)

func TestStatusTextAndColor(t *testing.T) {
	assert.Equal(t, "En cours", StatusText(models.CourseStatusActive))
	assert.Equal(t, "À venir", StatusText(models.CourseStatusUpcoming))
	assert.Equal(t, "Terminé", StatusText(models.CourseStatusCompleted))
	assert.Equal(t, "cancelled", StatusText("cancelled"))

	assert.Equal(t, "#10B981", StatusColor(models.CourseStatusActive))
	assert.Equal(t, "#6366F1", StatusColor(models.CourseStatusUpcoming))
	assert.Equal(t, "#9CA3AF", StatusColor(models.CourseStatusCompleted))
}

func TestTypeColor(t *testing.T) {
	assert.Equal(t, "#8B5CF6", TypeColor("Event"))
	assert.Equal(t, "#10B981", TypeColor("TP"))
	assert.Equal(t, "#9CA3AF", TypeColor("Atelier"))
}

func TestMaskCardNumber(t *testing.T) {
	assert.Equal(t, "•••• 0042", MaskCardNumber("ESTIAM-0042"))
	assert.Equal(t, "•••• 1234", MaskCardNumber("1234"))
	assert.Equal(t, "123", MaskCardNumber("123"))
}

func TestInitials(t *testing.T) {
	assert.Equal(t, "AL", Initials("ada", "Lovelace"))
	assert.Equal(t, "ÉZ", Initials("émile", "zola"))
	assert.Equal(t, "A", Initials("Ada", ""))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@estiam.com"))
	assert.False(t, IsValidEmail("ada@estiam"))
	assert.False(t, IsValidEmail("ada lovelace@estiam.com"))
	assert.False(t, IsValidEmail(""))
}

func TestAvatarColor(t *testing.T) {
	assert.Equal(t, "#6366F1", AvatarColor(""))
	assert.Equal(t, "#8B5CF6", AvatarColor("A"))
	assert.Equal(t, "#06B6D4", AvatarColor("Ada"))
	assert.Equal(t, "#10B981", AvatarColor("Ada Lovelace"))
	assert.Equal(t, "#F59E0B", AvatarColor("Émile Zola"))
}
