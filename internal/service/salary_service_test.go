package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type mockSalaryRepo struct {
	rates        []models.SalaryRateDetail
	monthlyTotal float64
	payment      *models.SalaryPayment
	items        []models.SalaryPaymentItem
}

func (m *mockSalaryRepo) ListRates(ctx context.Context, teacherID string) ([]models.SalaryRateDetail, error) {
	return m.rates, nil
}

func (m *mockSalaryRepo) UpsertRate(ctx context.Context, rate *models.SalaryRate) error {
	rate.ID = "r1"
	return nil
}

func (m *mockSalaryRepo) DeleteRate(ctx context.Context, id string) error { return nil }

func (m *mockSalaryRepo) SumRatesByTeacher(ctx context.Context, teacherID string) (float64, error) {
	return m.monthlyTotal, nil
}

func (m *mockSalaryRepo) CreatePayment(ctx context.Context, payment *models.SalaryPayment, items []models.SalaryPaymentItem) error {
	m.payment = payment
	m.items = items
	return nil
}

func (m *mockSalaryRepo) ListPayments(ctx context.Context, teacherID string) ([]models.SalaryPaymentDetail, error) {
	return nil, nil
}

type mockSalaryUsers struct {
	users map[string]*models.User
}

func (m *mockSalaryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func newSalaryFixture(monthlyTotal float64) (*SalaryService, *mockSalaryRepo) {
	repo := &mockSalaryRepo{monthlyTotal: monthlyTotal}
	users := &mockSalaryUsers{users: map[string]*models.User{
		"t1": {ID: "t1", Role: models.RoleTeacher},
		"s1": {ID: "s1", Role: models.RoleStudent},
	}}
	return NewSalaryService(repo, users, nil, nil), repo
}

func TestSalarySetRate(t *testing.T) {
	svc, _ := newSalaryFixture(0)

	rate, err := svc.SetRate(context.Background(), SalaryRateRequest{
		TeacherID: "t1", ClassID: "c1", SubjectID: "sub1", Amount: 200000,
	})
	require.NoError(t, err)
	assert.Equal(t, "r1", rate.ID)
	assert.Equal(t, 200000.0, rate.Amount)
}

func TestSalarySetRateRejectsNonTeacher(t *testing.T) {
	svc, _ := newSalaryFixture(0)

	_, err := svc.SetRate(context.Background(), SalaryRateRequest{
		TeacherID: "s1", ClassID: "c1", SubjectID: "sub1", Amount: 200000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSalarySetRateUnknownTeacher(t *testing.T) {
	svc, _ := newSalaryFixture(0)

	_, err := svc.SetRate(context.Background(), SalaryRateRequest{
		TeacherID: "ghost", ClassID: "c1", SubjectID: "sub1", Amount: 200000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSalaryRecordPayment(t *testing.T) {
	svc, repo := newSalaryFixture(300000)

	payment, err := svc.RecordPayment(context.Background(), SalaryPaymentRequest{
		TeacherID: "t1", Months: []string{"Septembre", "Octobre"},
	})
	require.NoError(t, err)
	assert.Equal(t, 600000.0, payment.TotalAmount)
	assert.Equal(t, string(models.PaymentPaid), payment.Status)
	require.Len(t, repo.items, 2)
	assert.Equal(t, "Octobre", repo.items[1].Month)
	assert.Equal(t, 300000.0, repo.items[1].Amount)
}

func TestSalaryRecordPaymentWithoutRates(t *testing.T) {
	svc, repo := newSalaryFixture(0)

	_, err := svc.RecordPayment(context.Background(), SalaryPaymentRequest{
		TeacherID: "t1", Months: []string{"Septembre"},
	})
	require.Error(t, err)
	assert.Nil(t, repo.payment)
}
