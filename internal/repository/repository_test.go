package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier_api/internal/database"
	"courier_api/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_fk=1"
	db, err := database.Initialize(database.DriverSQLite, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedInquiry(t *testing.T, repo InquiryRepository, sender string, status models.InquiryStatus, createdAt time.Time) *models.Inquiry {
	t.Helper()
	inquiry := &models.Inquiry{
		SenderName:         sender,
		SenderPhone:        "0771234567",
		ReceiverName:       "Receiver of " + sender,
		DestinationCountry: "USA",
		WeightKg:           2.5,
		BaseCost:           100,
		PackagingFee:       20,
		FinalAmount:        120,
		Status:             status,
		CreatedAt:          createdAt,
	}
	if err := repo.Create(context.Background(), inquiry); err != nil {
		t.Fatalf("failed to seed inquiry: %v", err)
	}
	return inquiry
}

func TestInquiryRepository_CreateDefaultsToPending(t *testing.T) {
	repo := NewInquiryRepository(newTestDB(t))
	ctx := context.Background()

	inquiry := &models.Inquiry{SenderName: "Nimal", WeightKg: 1, BaseCost: 10, PackagingFee: 1, FinalAmount: 11}
	if err := repo.Create(ctx, inquiry); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if inquiry.ID == "" {
		t.Fatal("expected an id to be generated")
	}

	got, err := repo.GetByID(ctx, inquiry.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.InquiryPending {
		t.Errorf("expected status PENDING, got %s", got.Status)
	}
}

func TestInquiryRepository_GetByIDNotFound(t *testing.T) {
	repo := NewInquiryRepository(newTestDB(t))

	_, err := repo.GetByID(context.Background(), uuid.NewString())
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestInquiryRepository_List(t *testing.T) {
	repo := NewInquiryRepository(newTestDB(t))
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	seedInquiry(t, repo, "Alice", models.InquiryPending, base)
	seedInquiry(t, repo, "Bob", models.InquiryConfirmed, base.Add(time.Minute))
	seedInquiry(t, repo, "Carol", models.InquiryBilled, base.Add(2*time.Minute))
	seedInquiry(t, repo, "alicia", models.InquiryCancelled, base.Add(3*time.Minute))

	t.Run("newest first with total", func(t *testing.T) {
		inquiries, total, err := repo.List(ctx, InquiryFilter{}, 0, 2)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 4 {
			t.Errorf("expected total 4, got %d", total)
		}
		if len(inquiries) != 2 || inquiries[0].SenderName != "alicia" || inquiries[1].SenderName != "Carol" {
			t.Errorf("unexpected page: %+v", inquiries)
		}
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		inquiries, total, err := repo.List(ctx, InquiryFilter{Search: "ALI"}, 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 2 || len(inquiries) != 2 {
			t.Errorf("expected 2 matches, got total %d len %d", total, len(inquiries))
		}
	})

	t.Run("search combined with status", func(t *testing.T) {
		inquiries, _, err := repo.List(ctx, InquiryFilter{Search: "ali", Status: models.InquiryPending}, 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(inquiries) != 1 || inquiries[0].SenderName != "Alice" {
			t.Errorf("unexpected result: %+v", inquiries)
		}
	})

	t.Run("exclude status", func(t *testing.T) {
		_, total, err := repo.List(ctx, InquiryFilter{ExcludeStatus: models.InquiryBilled}, 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 3 {
			t.Errorf("expected 3 non-billed inquiries, got %d", total)
		}
	})
}

func TestInquiryRepository_UpdateWithAllowedStatuses(t *testing.T) {
	repo := NewInquiryRepository(newTestDB(t))
	ctx := context.Background()
	inquiry := seedInquiry(t, repo, "Alice", models.InquiryCancelled, time.Now())

	updated, err := repo.Update(ctx, inquiry.ID, map[string]interface{}{"status": models.InquiryConfirmed}, models.InquiryPending)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated {
		t.Error("expected no update for a cancelled inquiry")
	}

	updated, err = repo.Update(ctx, inquiry.ID, map[string]interface{}{"notes": "call first"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated {
		t.Error("expected unconditional update to apply")
	}

	got, _ := repo.GetByID(ctx, inquiry.ID)
	if got.Status != models.InquiryCancelled {
		t.Errorf("expected status CANCELLED, got %s", got.Status)
	}
	if got.Notes == nil || *got.Notes != "call first" {
		t.Errorf("expected notes to be saved, got %v", got.Notes)
	}
}

func TestInquiryRepository_ListSummariesByStatus(t *testing.T) {
	repo := NewInquiryRepository(newTestDB(t))
	confirmed := seedInquiry(t, repo, "Bob", models.InquiryConfirmed, time.Now())
	seedInquiry(t, repo, "Alice", models.InquiryPending, time.Now())

	summaries, err := repo.ListSummariesByStatus(context.Background(), models.InquiryConfirmed)
	if err != nil {
		t.Fatalf("ListSummariesByStatus failed: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != confirmed.ID || summaries[0].SenderName != "Bob" {
		t.Errorf("unexpected summaries: %+v", summaries)
	}
}

func TestBillRepository_SequentialBillNumbers(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()

	want := []string{"001", "002", "003"}
	for i, billNo := range want {
		inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryConfirmed, time.Now().Add(time.Duration(i)*time.Second))
		bill := &models.Bill{InquiryID: inquiry.ID, BaseCost: 100, PackagingFee: 20, FinalAmount: 120}
		if err := bills.CreateForInquiry(ctx, bill); err != nil {
			t.Fatalf("CreateForInquiry failed: %v", err)
		}
		if bill.BillNo != billNo {
			t.Errorf("bill %d: expected billNo %s, got %s", i, billNo, bill.BillNo)
		}

		got, _ := inquiries.GetByID(ctx, inquiry.ID)
		if got.Status != models.InquiryBilled {
			t.Errorf("expected inquiry status BILL, got %s", got.Status)
		}
	}
}

func TestBillRepository_CreateRollsBackWhenInquiryNotConfirmed(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()
	inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryPending, time.Now())

	err := bills.CreateForInquiry(ctx, &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2})
	if !errors.Is(err, ErrInquiryNotConfirmed) {
		t.Fatalf("expected ErrInquiryNotConfirmed, got %v", err)
	}

	exists, _ := bills.ExistsForInquiry(ctx, inquiry.ID)
	if exists {
		t.Error("expected bill insert to be rolled back")
	}

	var counter models.BillCounter
	db.Where("name = ?", models.BillNoCounter).First(&counter)
	if counter.Value != 0 {
		t.Errorf("expected counter to be rolled back, got %d", counter.Value)
	}
}

func TestBillRepository_CreateRequiresSeededCounter(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()
	inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryConfirmed, time.Now())

	if err := db.Where("name = ?", models.BillNoCounter).Delete(&models.BillCounter{}).Error; err != nil {
		t.Fatalf("failed to delete counter: %v", err)
	}

	err := bills.CreateForInquiry(ctx, &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2})
	if !errors.Is(err, ErrBillCounterMissing) {
		t.Fatalf("expected ErrBillCounterMissing, got %v", err)
	}
	if database.IsDuplicate(err) {
		t.Error("a missing counter must not read as a duplicate bill")
	}

	got, _ := inquiries.GetByID(ctx, inquiry.ID)
	if got.Status != models.InquiryConfirmed {
		t.Errorf("expected inquiry to stay CONFIRMED, got %s", got.Status)
	}
}

func TestBillRepository_DuplicateInquiryIsRejected(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()
	inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryConfirmed, time.Now())

	if err := bills.CreateForInquiry(ctx, &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2}); err != nil {
		t.Fatalf("first CreateForInquiry failed: %v", err)
	}
	err := bills.CreateForInquiry(ctx, &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2})
	if !database.IsDuplicate(err) {
		t.Errorf("expected a uniqueness violation, got %v", err)
	}
}

func TestBillRepository_ListAndGet(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()

	var created []*models.Bill
	for i := 0; i < 3; i++ {
		inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryConfirmed, time.Now())
		bill := &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2}
		if err := bills.CreateForInquiry(ctx, bill); err != nil {
			t.Fatalf("CreateForInquiry failed: %v", err)
		}
		created = append(created, bill)
	}

	t.Run("bill number substring", func(t *testing.T) {
		list, total, err := bills.List(ctx, BillFilter{BillNo: "02"}, 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 1 || len(list) != 1 || list[0].BillNo != "002" {
			t.Errorf("unexpected result: total %d, %+v", total, list)
		}
		if list[0].Inquiry == nil || list[0].Inquiry.ID != created[1].InquiryID {
			t.Error("expected inquiry to be preloaded")
		}
	})

	t.Run("inquiry status", func(t *testing.T) {
		_, total, err := bills.List(ctx, BillFilter{InquiryStatus: models.InquiryBilled}, 0, 10)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if total != 3 {
			t.Errorf("expected 3 bills, got %d", total)
		}

		_, total, _ = bills.List(ctx, BillFilter{InquiryStatus: models.InquiryPending}, 0, 10)
		if total != 0 {
			t.Errorf("expected 0 bills, got %d", total)
		}
	})

	t.Run("get with inquiry", func(t *testing.T) {
		bill, err := bills.GetByID(ctx, created[0].ID)
		if err != nil {
			t.Fatalf("GetByID failed: %v", err)
		}
		if bill.Inquiry == nil || bill.Inquiry.Status != models.InquiryBilled {
			t.Errorf("expected billed inquiry, got %+v", bill.Inquiry)
		}
		if string(bill.Items) != "[]" {
			t.Errorf("expected default items [], got %s", bill.Items)
		}
	})

	t.Run("inquiry ids", func(t *testing.T) {
		ids, err := bills.ListInquiryIDs(ctx)
		if err != nil {
			t.Fatalf("ListInquiryIDs failed: %v", err)
		}
		if len(ids) != 3 {
			t.Errorf("expected 3 ids, got %d", len(ids))
		}
	})
}

func TestBillRepository_Update(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()
	inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryConfirmed, time.Now())
	bill := &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2}
	if err := bills.CreateForInquiry(ctx, bill); err != nil {
		t.Fatalf("CreateForInquiry failed: %v", err)
	}

	err := bills.Update(ctx, bill.ID, map[string]interface{}{
		"final_amount": 0.0,
		"items":        datatypes.JSON(`[{"description":"USA","qty":null,"rate":null,"totalAmount":0,"type":"country"}]`),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := bills.GetByID(ctx, bill.ID)
	if got.FinalAmount != 0 {
		t.Errorf("expected final amount 0, got %v", got.FinalAmount)
	}
	if got.BillNo != "001" {
		t.Errorf("expected billNo to stay 001, got %s", got.BillNo)
	}
}

func TestBillRepository_CascadesInquiryDelete(t *testing.T) {
	db := newTestDB(t)
	inquiries := NewInquiryRepository(db)
	bills := NewBillRepository(db)
	ctx := context.Background()
	inquiry := seedInquiry(t, inquiries, "Sender", models.InquiryConfirmed, time.Now())
	bill := &models.Bill{InquiryID: inquiry.ID, BaseCost: 1, PackagingFee: 1, FinalAmount: 2}
	if err := bills.CreateForInquiry(ctx, bill); err != nil {
		t.Fatalf("CreateForInquiry failed: %v", err)
	}

	if err := db.Delete(&models.Inquiry{}, "id = ?", inquiry.ID).Error; err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err := bills.GetByID(ctx, bill.ID)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected bill to be deleted with its inquiry, got %v", err)
	}
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := &models.User{Email: "admin@example.com", Username: "admin", Password: "hash"}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byEmail, err := repo.GetByEmail(ctx, "admin@example.com")
	if err != nil || byEmail.ID != user.ID {
		t.Fatalf("GetByEmail = %+v, %v", byEmail, err)
	}
	byID, err := repo.GetByID(ctx, user.ID)
	if err != nil || byID.Email != user.Email {
		t.Fatalf("GetByID = %+v, %v", byID, err)
	}

	err = repo.Create(ctx, &models.User{Email: "admin@example.com", Username: "other", Password: "hash"})
	if !database.IsDuplicate(err) {
		t.Errorf("expected duplicate email to be rejected, got %v", err)
	}
}
