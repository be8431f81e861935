package services

import (
	"context"
	"testing"
	"time"

	"courier_api/internal/database"
	"courier_api/internal/models"
	"courier_api/internal/redis"
	"courier_api/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testEnv struct {
	db        *gorm.DB
	inquiries InquiryService
	bills     BillService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1"
	db, err := database.Initialize(database.DriverSQLite, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	inquiryRepo := repository.NewInquiryRepository(db)
	billRepo := repository.NewBillRepository(db)
	return &testEnv{
		db:        db,
		inquiries: NewInquiryService(inquiryRepo, billRepo, zap.NewNop()),
		bills:     NewBillService(billRepo, inquiryRepo, zap.NewNop()),
	}
}

func float(f float64) *float64 { return &f }

func validInput() CreateInquiryInput {
	return CreateInquiryInput{
		SenderName:         "Nimal Perera",
		SenderPhone:        "0771234567",
		ReceiverName:       "John Smith",
		DestinationCountry: "USA",
		WeightKg:           float(2.5),
		BaseCost:           float(100),
		PackagingFee:       float(20),
		LiquorCost:         float(5),
		FinalAmount:        float(125),
	}
}

// seedInquiry creates an inquiry and forces it into status.
func (e *testEnv) seedInquiry(t *testing.T, status models.InquiryStatus) *models.Inquiry {
	t.Helper()
	inquiry, err := e.inquiries.CreateInquiry(context.Background(), validInput())
	if err != nil {
		t.Fatalf("failed to seed inquiry: %v", err)
	}
	if status != models.InquiryPending {
		if err := e.db.Model(&models.Inquiry{}).Where("id = ?", inquiry.ID).Update("status", status).Error; err != nil {
			t.Fatalf("failed to set status: %v", err)
		}
		inquiry.Status = status
	}
	return inquiry
}

func (e *testEnv) status(t *testing.T, id string) models.InquiryStatus {
	t.Helper()
	var inquiry models.Inquiry
	if err := e.db.Where("id = ?", id).First(&inquiry).Error; err != nil {
		t.Fatalf("failed to load inquiry: %v", err)
	}
	return inquiry.Status
}

func assertKind(t *testing.T, err error, want ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error of kind %d, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected error kind %d, got %d (%v)", want, got, err)
	}
}

// mockSessionStore is an in-memory SessionStore.
type mockSessionStore struct {
	sessions map[string]*redis.SessionData
	ttl      time.Duration
	setErr   error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: map[string]*redis.SessionData{}}
}

func (m *mockSessionStore) SetSession(ctx context.Context, token string, data *redis.SessionData, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.sessions[token] = data
	m.ttl = ttl
	return nil
}

func (m *mockSessionStore) GetSession(ctx context.Context, token string) (*redis.SessionData, error) {
	session, ok := m.sessions[token]
	if !ok {
		return nil, redis.ErrSessionNotFound
	}
	return session, nil
}

func (m *mockSessionStore) DeleteSession(ctx context.Context, token string) error {
	delete(m.sessions, token)
	return nil
}
