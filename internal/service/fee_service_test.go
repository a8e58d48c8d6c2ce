package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tafita2023/inata-api/internal/models"
	appErrors "github.com/tafita2023/inata-api/pkg/errors"
)

type mockFeeRepo struct {
	fees    []models.MonthlyFee
	details []models.MonthlyFeeDetail
	created []*models.MonthlyFee
}

func (m *mockFeeRepo) ListByStudent(ctx context.Context, studentID, schoolYear string) ([]models.MonthlyFee, error) {
	return m.fees, nil
}

func (m *mockFeeRepo) ListDetails(ctx context.Context, schoolYear string, paid *bool) ([]models.MonthlyFeeDetail, error) {
	return m.details, nil
}

func (m *mockFeeRepo) FindByStudentMonthYear(ctx context.Context, studentID, month, schoolYear string) (*models.MonthlyFee, error) {
	for i := range m.fees {
		if m.fees[i].StudentID == studentID && m.fees[i].Month == month && m.fees[i].SchoolYear == schoolYear {
			return &m.fees[i], nil
		}
	}
	return nil, nil
}

func (m *mockFeeRepo) Create(ctx context.Context, fee *models.MonthlyFee) error {
	if fee.ID == "" {
		fee.ID = fmt.Sprintf("fee-%d", len(m.created)+1)
	}
	m.created = append(m.created, fee)
	m.fees = append(m.fees, *fee)
	return nil
}

type mockFeeUsers struct {
	user *models.User
}

func (m *mockFeeUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

type mockFeeClasses struct {
	fee *models.ClassFee
}

func (m *mockFeeClasses) GetFee(ctx context.Context, classID string) (*models.ClassFee, error) {
	if m.fee == nil {
		return nil, sql.ErrNoRows
	}
	return m.fee, nil
}

type mockFeePayments struct {
	payments []*models.Payment
	feeIDs   [][]string
}

func (m *mockFeePayments) CreateWithFees(ctx context.Context, payment *models.Payment, feeIDs []string) error {
	m.payments = append(m.payments, payment)
	m.feeIDs = append(m.feeIDs, feeIDs)
	return nil
}

func newTestFeeService(repo *mockFeeRepo, users *mockFeeUsers, classes *mockFeeClasses, payments *mockFeePayments, at time.Time) *FeeService {
	svc := NewFeeService(repo, users, classes, payments, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return at }
	return svc
}

func TestEnsureMonthlyFeesOpensElapsedMonths(t *testing.T) {
	repo := &mockFeeRepo{}
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	classes := &mockFeeClasses{fee: &models.ClassFee{ClassID: "c1", Amount: 50000}}

	// November: Septembre, Octobre and Novembre are due.
	at := time.Date(2025, time.November, 15, 0, 0, 0, 0, time.UTC)
	svc := newTestFeeService(repo, users, classes, &mockFeePayments{}, at)

	require.NoError(t, svc.EnsureMonthlyFees(context.Background(), "s1", nil))
	require.Len(t, repo.created, 3)
	assert.Equal(t, "Septembre", repo.created[0].Month)
	assert.Equal(t, "Novembre", repo.created[2].Month)
	assert.Equal(t, "2025-2026", repo.created[0].SchoolYear)
	assert.Equal(t, 50000.0, repo.created[0].Amount)
	assert.False(t, repo.created[0].Paid)
}

func TestEnsureMonthlyFeesNamedMonths(t *testing.T) {
	repo := &mockFeeRepo{}
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	classes := &mockFeeClasses{fee: &models.ClassFee{ClassID: "c1", Amount: 50000}}

	at := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestFeeService(repo, users, classes, &mockFeePayments{}, at)

	// Asking for a month ahead of the calendar opens that month only.
	require.NoError(t, svc.EnsureMonthlyFees(context.Background(), "s1", []string{"Mars"}))
	require.Len(t, repo.created, 1)
	assert.Equal(t, "Mars", repo.created[0].Month)
	assert.Equal(t, "2025-2026", repo.created[0].SchoolYear)
}

func TestEnsureMonthlyFeesUnknownMonth(t *testing.T) {
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	svc := newTestFeeService(&mockFeeRepo{}, users, &mockFeeClasses{}, &mockFeePayments{}, time.Now())

	err := svc.EnsureMonthlyFees(context.Background(), "s1", []string{"Juillet"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnsureMonthlyFeesIdempotent(t *testing.T) {
	repo := &mockFeeRepo{}
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	classes := &mockFeeClasses{fee: &models.ClassFee{ClassID: "c1", Amount: 50000}}

	at := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	svc := newTestFeeService(repo, users, classes, &mockFeePayments{}, at)

	require.NoError(t, svc.EnsureMonthlyFees(context.Background(), "s1", nil))
	first := len(repo.created)
	require.NoError(t, svc.EnsureMonthlyFees(context.Background(), "s1", nil))
	assert.Equal(t, first, len(repo.created))
	// January of a school year started in September 2025.
	assert.Equal(t, "2025-2026", repo.created[0].SchoolYear)
	assert.Equal(t, 5, first)
}

func TestEnsureMonthlyFeesNoClass(t *testing.T) {
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent}}
	svc := newTestFeeService(&mockFeeRepo{}, users, &mockFeeClasses{}, &mockFeePayments{}, time.Now())

	err := svc.EnsureMonthlyFees(context.Background(), "s1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoClass.Code, appErrors.FromError(err).Code)
}

func TestEnsureMonthlyFeesNoFeeSchedule(t *testing.T) {
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	svc := newTestFeeService(&mockFeeRepo{}, users, &mockFeeClasses{}, &mockFeePayments{}, time.Now())

	err := svc.EnsureMonthlyFees(context.Background(), "s1", nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoFeeSchedule.Code, appErrors.FromError(err).Code)
}

func TestRecordManualPayment(t *testing.T) {
	repo := &mockFeeRepo{}
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	payments := &mockFeePayments{}
	at := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)
	svc := newTestFeeService(repo, users, &mockFeeClasses{}, payments, at)

	payment, err := svc.RecordManualPayment(context.Background(), ManualPaymentRequest{
		StudentID: "s1", Months: []string{"Janvier", "Février"}, Total: 100000,
	})
	require.NoError(t, err)
	assert.Equal(t, 100000.0, payment.TotalAmount)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.Equal(t, models.PaymentMethodCash, payment.Method)

	// The total splits evenly and every created row is already paid.
	require.Len(t, repo.created, 2)
	for _, fee := range repo.created {
		assert.Equal(t, 50000.0, fee.Amount)
		assert.True(t, fee.Paid)
		assert.Equal(t, "2025-2026", fee.SchoolYear)
	}
	require.Len(t, payments.feeIDs, 1)
	assert.Len(t, payments.feeIDs[0], 2)
}

func TestRecordManualPaymentRejectsOpenMonth(t *testing.T) {
	repo := &mockFeeRepo{fees: []models.MonthlyFee{
		{ID: "f1", StudentID: "s1", Month: "Janvier", SchoolYear: "2025-2026", Amount: 50000},
	}}
	users := &mockFeeUsers{user: &models.User{ID: "s1", Role: models.RoleStudent, ClassID: strPtr("c1")}}
	payments := &mockFeePayments{}
	at := time.Date(2026, time.February, 5, 0, 0, 0, 0, time.UTC)
	svc := newTestFeeService(repo, users, &mockFeeClasses{}, payments, at)

	_, err := svc.RecordManualPayment(context.Background(), ManualPaymentRequest{
		StudentID: "s1", Months: []string{"Janvier", "Février"}, Total: 100000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Contains(t, appErrors.FromError(err).Message, "Janvier")
	assert.Empty(t, repo.created)
	assert.Empty(t, payments.payments)
}

func TestRecordManualPaymentUnknownStudent(t *testing.T) {
	svc := newTestFeeService(&mockFeeRepo{}, &mockFeeUsers{}, &mockFeeClasses{}, &mockFeePayments{}, time.Now())

	_, err := svc.RecordManualPayment(context.Background(), ManualPaymentRequest{
		StudentID: "ghost", Months: []string{"Janvier"}, Total: 50000,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
