package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
	"github.com/tafita2023/inata-api/pkg/export"
)

type transcriptGradeRepository interface {
	TranscriptGrades(ctx context.Context, studentID string) ([]models.TranscriptGrade, error)
}

type transcriptUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type transcriptClassRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

// TranscriptService renders semester-2 exam transcripts as PDF.
type TranscriptService struct {
	grades   transcriptGradeRepository
	users    transcriptUserRepository
	classes  transcriptClassRepository
	renderer *export.TranscriptRenderer
	logger   *zap.Logger
}

// NewTranscriptService constructs a TranscriptService instance.
func NewTranscriptService(grades transcriptGradeRepository, users transcriptUserRepository, classes transcriptClassRepository, renderer *export.TranscriptRenderer, logger *zap.Logger) *TranscriptService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TranscriptService{grades: grades, users: users, classes: classes, renderer: renderer, logger: logger}
}

// Generate renders the student's transcript. Subjects sharing a unit are
// merged under one unit block; subjects without a unit stand alone.
func (s *TranscriptService) Generate(ctx context.Context, studentID, schoolYear string) ([]byte, error) {
	student, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	classLevel := ""
	if student.ClassID != nil {
		class, err := s.classes.FindByID(ctx, *student.ClassID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}
		if class != nil {
			classLevel = class.Level
		}
	}

	grades, err := s.grades.TranscriptGrades(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	data := export.TranscriptData{
		StudentName: student.FullName(),
		ClassLevel:  classLevel,
		SchoolYear:  schoolYear,
		Units:       groupTranscriptUnits(grades),
	}

	pdf, err := s.renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript")
	}
	return pdf, nil
}

// groupTranscriptUnits folds an ordered grade list into unit blocks. The
// query orders by unit name so one pass suffices; ungrouped subjects become
// single-row blocks named after the subject.
func groupTranscriptUnits(grades []models.TranscriptGrade) []export.TranscriptUnit {
	units := []export.TranscriptUnit{}
	for _, grade := range grades {
		row := export.TranscriptRow{Subject: grade.SubjectName, Value: grade.Value}
		if grade.UnitName == nil {
			units = append(units, export.TranscriptUnit{Name: grade.SubjectName, Rows: []export.TranscriptRow{row}})
			continue
		}
		if n := len(units); n > 0 && units[n-1].Name == *grade.UnitName {
			units[n-1].Rows = append(units[n-1].Rows, row)
			continue
		}
		units = append(units, export.TranscriptUnit{Name: *grade.UnitName, Rows: []export.TranscriptRow{row}})
	}
	return units
}
