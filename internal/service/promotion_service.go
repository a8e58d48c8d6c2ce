package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

// PassingMean is the yearly mean (on the 0 to 20 scale) required to move up
// a class.
const PassingMean = 10.0

type promotionUserRepository interface {
	ListActiveStudents(ctx context.Context) ([]models.User, error)
	Promote(ctx context.Context, id, classID string, year int) error
	Graduate(ctx context.Context, id string) error
}

type promotionClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindNextByRank(ctx context.Context, rank int) (*models.Class, error)
}

type promotionGradeRepository interface {
	ListValuesByStudent(ctx context.Context, studentID string) ([]float64, error)
}

// PromotionService runs the end-of-year promotion batch.
type PromotionService struct {
	users   promotionUserRepository
	classes promotionClassRepository
	grades  promotionGradeRepository
	logger  *zap.Logger
}

// NewPromotionService constructs a PromotionService instance.
func NewPromotionService(users promotionUserRepository, classes promotionClassRepository, grades promotionGradeRepository, logger *zap.Logger) *PromotionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromotionService{users: users, classes: classes, grades: grades, logger: logger}
}

// PromoteAll walks every active student once. A student with a yearly mean at
// or above the passing bar moves to the next class by rank, or graduates when
// the class is terminal; anyone else repeats. Failures on one student are
// collected and never stop the batch.
func (s *PromotionService) PromoteAll(ctx context.Context) (*models.PromotionResult, error) {
	students, err := s.users.ListActiveStudents(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	result := &models.PromotionResult{Errors: []string{}}

	for _, student := range students {
		if err := s.promoteOne(ctx, &student, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", student.FullName(), err))
			s.logger.Warn("promotion skipped student",
				zap.String("student_id", student.ID), zap.Error(err))
		}
	}

	s.logger.Info("promotion batch finished",
		zap.Int("promoted", result.Promoted),
		zap.Int("repeating", result.Repeating),
		zap.Int("graduated", result.Graduated),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *PromotionService) promoteOne(ctx context.Context, student *models.User, result *models.PromotionResult) error {
	if student.ClassID == nil {
		return fmt.Errorf("no class assigned")
	}

	values, err := s.grades.ListValuesByStudent(ctx, student.ID)
	if err != nil {
		return fmt.Errorf("load grades: %w", err)
	}
	if len(values) == 0 {
		return fmt.Errorf("no grades found")
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean < PassingMean {
		result.Repeating++
		return nil
	}

	current, err := s.classes.FindByID(ctx, *student.ClassID)
	if err != nil {
		return fmt.Errorf("load class: %w", err)
	}

	next, err := s.classes.FindNextByRank(ctx, current.Rank)
	if err != nil {
		return err
	}
	if next == nil {
		if err := s.users.Graduate(ctx, student.ID); err != nil {
			return err
		}
		result.Graduated++
		return nil
	}

	if err := s.users.Promote(ctx, student.ID, next.ID, student.EnrollmentYear+1); err != nil {
		return err
	}
	result.Promoted++
	return nil
}
