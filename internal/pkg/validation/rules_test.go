package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/app/models"
)

func validWeek(n int) models.Week {
	return models.Week{
		Week:  n,
		Title: "Intro",
		Topics: []models.Topic{{
			Title: "Setup",
			Content: []models.ContentItem{
				{Type: models.ContentVideo, Title: "Welcome", URL: "https://cdn.test/v.mp4"},
				{Type: models.ContentFile, Title: "Slides", URL: "https://cdn.test/s.pdf", FileType: "pdf"},
			},
		}},
	}
}

func TestValidateSyllabus_Valid(t *testing.T) {
	require.NoError(t, ValidateSyllabus([]models.Week{validWeek(1), validWeek(2)}))
	require.NoError(t, ValidateSyllabus(nil))
}

func TestValidateSyllabus_DuplicateWeek(t *testing.T) {
	err := ValidateSyllabus([]models.Week{validWeek(1), validWeek(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestValidateSyllabus_BadContentType(t *testing.T) {
	week := validWeek(1)
	week.Topics[0].Content[0].Type = "audio"

	err := ValidateSyllabus([]models.Week{week})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}

func TestValidateSyllabus_MissingTitle(t *testing.T) {
	week := validWeek(1)
	week.Title = ""

	err := ValidateSyllabus([]models.Week{week})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Title failed on required")
}

func TestValidRating(t *testing.T) {
	assert.True(t, ValidRating(1))
	assert.True(t, ValidRating(5))
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
}
