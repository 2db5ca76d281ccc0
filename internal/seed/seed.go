package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	appModels "github.com/yigit/edustay/internal/app/models"
	appRepos "github.com/yigit/edustay/internal/app/repositories"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultInstructorEmail    = "instructor@test.com"
	DefaultInstructorPassword = "password123"
	defaultInstructorName     = "Test Instructor"
)

// CreateDefaultData creates the default instructor account if it does not exist yet.
// Running it again is a no-op.
func CreateDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, lgr zerolog.Logger) error {
	return createDefaultData(ctx, userRepo, lgr, bcrypt.DefaultCost)
}

func createDefaultData(ctx context.Context, userRepo appRepos.IUserRepository, lgr zerolog.Logger, cost int) error {
	lgr.Info().Msg("Checking/Creating default data...")

	exists, err := userRepo.EmailExists(ctx, DefaultInstructorEmail)
	if err != nil {
		return fmt.Errorf("checking default instructor: %w", err)
	}
	if exists {
		lgr.Info().Msg("Default instructor already exists, skipping creation")
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultInstructorPassword), cost)
	if err != nil {
		return fmt.Errorf("hashing default instructor password: %w", err)
	}

	now := time.Now()
	instructor := &appModels.User{
		Name:      defaultInstructorName,
		Email:     DefaultInstructorEmail,
		Password:  string(hashedPassword),
		RoleType:  appModels.RoleInstructor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := userRepo.Create(ctx, instructor); err != nil {
		return fmt.Errorf("creating default instructor: %w", err)
	}

	lgr.Info().Int64("userID", instructor.ID).Msg("Default instructor created successfully")
	return nil
}
