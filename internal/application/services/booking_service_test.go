package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/andesalud/clinica-backend/internal/application/services"
	"github.com/andesalud/clinica-backend/internal/domain/entities"
	"github.com/andesalud/clinica-backend/internal/domain/repositories"
	apperrors "github.com/andesalud/clinica-backend/pkg/errors"
)

// Mocks shared across the service tests in this package

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListPendingValidation(ctx context.Context, filter repositories.PendingValidationFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Reconcile(ctx context.Context, write *repositories.ReconciliationWrite) error {
	args := m.Called(ctx, write)
	return args.Error(0)
}

type MockTariffRepository struct {
	mock.Mock
}

func (m *MockTariffRepository) GetBySpecialty(ctx context.Context, specialty string) (*entities.Tariff, error) {
	args := m.Called(ctx, specialty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Tariff), args.Error(1)
}

func (m *MockTariffRepository) List(ctx context.Context, filter repositories.TariffFilter) ([]*entities.Tariff, error) {
	return nil, nil
}

func (m *MockTariffRepository) Upsert(ctx context.Context, tariff *entities.Tariff) error {
	return nil
}

type MockInsuranceProfileRepository struct {
	mock.Mock
}

func (m *MockInsuranceProfileRepository) GetByPatientID(ctx context.Context, patientID string) (*entities.PatientInsuranceProfile, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PatientInsuranceProfile), args.Error(1)
}

func (m *MockInsuranceProfileRepository) Upsert(ctx context.Context, profile *entities.PatientInsuranceProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

type MockReconciliationEntryRepository struct {
	mock.Mock
}

func (m *MockReconciliationEntryRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*entities.ReconciliationEntry, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ReconciliationEntry), args.Error(1)
}

func (m *MockReconciliationEntryRepository) ListByPatient(ctx context.Context, patientID string) ([]*entities.ReconciliationEntry, error) {
	return nil, nil
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.ReconciliationEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.ReconciliationEvent, error) {
	return nil, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	return nil
}

func (m *MockEventBus) Close() error {
	return nil
}

// Tests

func newBookingService(appointments *MockAppointmentRepository, tariffs *MockTariffRepository, profiles *MockInsuranceProfileRepository) *services.BookingService {
	pricing := services.NewPricingService(services.DefaultFonasaRate, services.DefaultIsapreRate)
	return services.NewBookingService(appointments, tariffs, profiles, pricing)
}

func TestBookingService_BookAppointment(t *testing.T) {
	tariff := &entities.Tariff{
		ID:              "tariff-1",
		Specialty:       "medicina-general",
		BasePrice:       30000,
		ParticularPrice: intPtr(30000),
		FonasaPrice:     intPtr(21000),
		IsaprePrice:     intPtr(25500),
	}

	t.Run("unverified fonasa patient gets discount pending validation", func(t *testing.T) {
		appointments := new(MockAppointmentRepository)
		tariffs := new(MockTariffRepository)
		profiles := new(MockInsuranceProfileRepository)
		service := newBookingService(appointments, tariffs, profiles)

		tariffs.On("GetBySpecialty", mock.Anything, "medicina-general").Return(tariff, nil)
		profiles.On("GetByPatientID", mock.Anything, "patient-1").Return(&entities.PatientInsuranceProfile{
			PatientID:    "patient-1",
			DeclaredTier: entities.TierFonasa,
			Verified:     false,
		}, nil)
		appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.OriginalPrice == 30000 &&
				a.FinalPrice == 21000 &&
				a.DiscountAmount == 9000 &&
				a.DiscountPercent == 30 &&
				a.RequiresValidation &&
				!a.Validated &&
				a.ValidationStatus == entities.ValidationStatusPending &&
				a.TierAtBooking == entities.TierFonasa
		})).Return(nil)

		appointment, err := service.BookAppointment(context.Background(), services.BookingRequest{
			PatientID: "patient-1",
			Specialty: "medicina-general",
		})

		assert.NoError(t, err)
		assert.NotEmpty(t, appointment.ID)
		appointments.AssertExpectations(t)
		tariffs.AssertExpectations(t)
		profiles.AssertExpectations(t)
	})

	t.Run("verified patient books without validation requirement", func(t *testing.T) {
		appointments := new(MockAppointmentRepository)
		tariffs := new(MockTariffRepository)
		profiles := new(MockInsuranceProfileRepository)
		service := newBookingService(appointments, tariffs, profiles)

		verifiedAt := time.Now().Add(-24 * time.Hour)
		tariffs.On("GetBySpecialty", mock.Anything, "medicina-general").Return(tariff, nil)
		profiles.On("GetByPatientID", mock.Anything, "patient-2").Return(&entities.PatientInsuranceProfile{
			PatientID:    "patient-2",
			DeclaredTier: entities.TierFonasa,
			Verified:     true,
			VerifiedAt:   &verifiedAt,
		}, nil)
		appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return !a.RequiresValidation &&
				a.Validated &&
				a.ValidationStatus == entities.ValidationStatusNotRequired &&
				a.FinalPrice == 21000
		})).Return(nil)

		_, err := service.BookAppointment(context.Background(), services.BookingRequest{
			PatientID: "patient-2",
			Specialty: "medicina-general",
		})

		assert.NoError(t, err)
		appointments.AssertExpectations(t)
	})

	t.Run("patient without profile is priced as particular", func(t *testing.T) {
		appointments := new(MockAppointmentRepository)
		tariffs := new(MockTariffRepository)
		profiles := new(MockInsuranceProfileRepository)
		service := newBookingService(appointments, tariffs, profiles)

		tariffs.On("GetBySpecialty", mock.Anything, "medicina-general").Return(tariff, nil)
		profiles.On("GetByPatientID", mock.Anything, "patient-3").
			Return(nil, apperrors.NewNotFoundError("insurance profile for patient patient-3 not found"))
		appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.TierAtBooking == entities.TierParticular &&
				a.FinalPrice == 30000 &&
				a.DiscountAmount == 0 &&
				!a.RequiresValidation &&
				a.Validated
		})).Return(nil)

		_, err := service.BookAppointment(context.Background(), services.BookingRequest{
			PatientID: "patient-3",
			Specialty: "medicina-general",
		})

		assert.NoError(t, err)
		appointments.AssertExpectations(t)
	})

	t.Run("missing tariff is a configuration error, never a zero price", func(t *testing.T) {
		appointments := new(MockAppointmentRepository)
		tariffs := new(MockTariffRepository)
		profiles := new(MockInsuranceProfileRepository)
		service := newBookingService(appointments, tariffs, profiles)

		tariffs.On("GetBySpecialty", mock.Anything, "astrologia").
			Return(nil, apperrors.NewNotFoundError("tariff for specialty astrologia not found"))

		_, err := service.BookAppointment(context.Background(), services.BookingRequest{
			PatientID: "patient-1",
			Specialty: "astrologia",
		})

		assert.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
		appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects empty patient id", func(t *testing.T) {
		service := newBookingService(new(MockAppointmentRepository), new(MockTariffRepository), new(MockInsuranceProfileRepository))

		_, err := service.BookAppointment(context.Background(), services.BookingRequest{
			Specialty: "medicina-general",
		})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
