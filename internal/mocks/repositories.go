package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/stall-admin/internal/domain"
	"github.com/spec-kit/stall-admin/internal/repository"
)

// ProfileRepository mocks repository.ProfileRepository.
type ProfileRepository struct {
	mock.Mock
}

// NewProfileRepository returns a mock that asserts its expectations on cleanup.
func NewProfileRepository(t mock.TestingT) *ProfileRepository {
	m := &ProfileRepository{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *ProfileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	return profileArg(args, 0), args.Error(1)
}

func (m *ProfileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	return profileArg(args, 0), args.Error(1)
}

func (m *ProfileRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func profileArg(args mock.Arguments, i int) *domain.Profile {
	if v, ok := args.Get(i).(*domain.Profile); ok {
		return v
	}
	return nil
}

// AuditRepository mocks repository.AuditRepository.
type AuditRepository struct {
	mock.Mock
}

// NewAuditRepository returns a mock that asserts its expectations on cleanup.
func NewAuditRepository(t mock.TestingT) *AuditRepository {
	m := &AuditRepository{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *AuditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *AuditRepository) List(ctx context.Context, filter repository.AuditFilter) ([]domain.AuditEntry, error) {
	args := m.Called(ctx, filter)
	entries, _ := args.Get(0).([]domain.AuditEntry)
	return entries, args.Error(1)
}

// ReportRepository mocks repository.ReportRepository.
type ReportRepository struct {
	mock.Mock
}

// NewReportRepository returns a mock that asserts its expectations on cleanup.
func NewReportRepository(t mock.TestingT) *ReportRepository {
	m := &ReportRepository{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
	return m
}

func (m *ReportRepository) SumSales(ctx context.Context, filter repository.ReportFilter) (float64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(float64), args.Error(1)
}

func (m *ReportRepository) SumExpenses(ctx context.Context, filter repository.ReportFilter) (float64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(float64), args.Error(1)
}
