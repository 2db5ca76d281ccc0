package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/edustay/internal/app/models"
)

// Limits applied to user-supplied catalogue content
const (
	MaxWeeks          = 52
	MaxTopicsPerWeek  = 50
	MaxItemsPerTopic  = 100
	RatingMin         = 1
	RatingMax         = 5
	PasswordMinLength = 6
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator instance used outside of gin binding.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// ValidateSyllabus checks week numbering and every topic and content item.
// Week numbers must be unique within a course.
func ValidateSyllabus(weeks []models.Week) error {
	if len(weeks) > MaxWeeks {
		return fmt.Errorf("syllabus has %d weeks, at most %d allowed", len(weeks), MaxWeeks)
	}

	seen := make(map[int]struct{}, len(weeks))
	for i, week := range weeks {
		if _, dup := seen[week.Week]; dup {
			return fmt.Errorf("week %d appears more than once", week.Week)
		}
		seen[week.Week] = struct{}{}

		if len(week.Topics) > MaxTopicsPerWeek {
			return fmt.Errorf("week %d has too many topics", week.Week)
		}
		for _, topic := range week.Topics {
			if len(topic.Content) > MaxItemsPerTopic {
				return fmt.Errorf("topic %q has too many content items", topic.Title)
			}
		}

		if err := Validator().Struct(week); err != nil {
			return fmt.Errorf("syllabus[%d]: %s", i, describe(err))
		}
	}
	return nil
}

// ValidRating reports whether r is an accepted rating score
func ValidRating(r int) bool {
	return r >= RatingMin && r <= RatingMax
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		if idx := strings.Index(ns, "."); idx >= 0 {
			ns = ns[idx+1:]
		}
		parts = append(parts, fmt.Sprintf("%s failed on %s", ns, fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
