package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	regmodel "aspir_backend/internals/features/registration/model"
	regservice "aspir_backend/internals/features/registration/service"
)

type fixedRate struct{ rate decimal.Decimal }

func (f fixedRate) USDToNGN(context.Context) decimal.Decimal { return f.rate }

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}
	return db, mock
}

func registrationRow(id uuid.UUID, regPaid, coursePaid bool, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"registration_id", "registration_full_name", "registration_email",
		"registration_status", "registration_fee_paid", "course_fee_paid",
	}).AddRow(id.String(), "Test Person", "test@example.com", status, regPaid, coursePaid)
}

func TestResolveRegistrationFallsBackToGatewayReference(t *testing.T) {
	db, mock := newMockDB(t)
	regID := uuid.New()

	// Legacy reference: the by-ID strategy is skipped, the squad
	// reference column misses, the paystack column hits.
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"registration_id"}))
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(registrationRow(regID, false, false, regmodel.StatusPending))

	reg, err := ResolveRegistration(db, ParseReference("PSK-legacy-ref"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if reg.RegistrationID != regID {
		t.Errorf("resolved %s, want %s", reg.RegistrationID, regID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestResolveRegistrationNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"registration_id"}))
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(sqlmock.NewRows([]string{"registration_id"}))

	_, err := ResolveRegistration(db, ParseReference("PSK-unknown"))
	if !errors.Is(err, ErrRegistrationNotFound) {
		t.Fatalf("err = %v, want ErrRegistrationNotFound", err)
	}
}

func TestReconcileDuplicateReferenceIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	regID := uuid.New()
	reference := "ASPIR-FULL-" + regID.String()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(registrationRow(regID, true, true, regmodel.StatusPaid))
	// A ledger row already exists for the reference: nothing else may
	// be written.
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "transaction_reference"}).
			AddRow(int64(1), reference))
	mock.ExpectCommit()

	rec := NewReconciler(db, fixedRate{decimal.NewFromInt(1500)}, regservice.NewAllocator(db), nil)
	res, err := rec.Reconcile(context.Background(), reference, Outcome{
		Success:       true,
		SubunitAmount: decimal.NewFromInt(1_500_000),
		Currency:      "NGN",
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !res.AlreadyReconciled {
		t.Error("duplicate delivery must report AlreadyReconciled")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// Two near-simultaneous deliveries of the same reference: this is the
// loser, whose pre-check ran before the winner committed. The unique
// reference makes its insert a zero-row no-op, which must stop every
// side effect: no activity row, no allocation, no second ID.
func TestReconcileConcurrentDuplicateStopsSideEffects(t *testing.T) {
	db, mock := newMockDB(t)
	regID := uuid.New()
	reference := "ASPIR-FULL-" + regID.String()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(registrationRow(regID, false, false, regmodel.StatusPending))
	// The winner has not committed yet, so the pre-check sees nothing.
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}))
	// DoNothing on the conflicting reference inserts zero rows.
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}))
	mock.ExpectCommit()

	rec := NewReconciler(db, fixedRate{decimal.NewFromInt(1500)}, regservice.NewAllocator(db), nil)
	res, err := rec.Reconcile(context.Background(), reference, Outcome{
		Success:       true,
		SubunitAmount: decimal.NewFromInt(1_500_000),
		Currency:      "NGN",
		ExchangeRate:  decimal.NewFromInt(1500),
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !res.AlreadyReconciled {
		t.Error("losing a concurrent insert must report AlreadyReconciled")
	}
	if res.BecameFullyPaid {
		t.Error("the loser must not claim the fully-paid transition")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

// dbRate issues a marker query on the shared connection, so the ordered
// expectations prove the rate lookup completes before the transaction
// opens. A lookup inside the transaction would arrive after Begin and
// fail the expectation order.
type dbRate struct {
	db   *gorm.DB
	rate decimal.Decimal
}

func (r dbRate) USDToNGN(ctx context.Context) decimal.Decimal {
	r.db.WithContext(ctx).Exec("SELECT 1")
	return r.rate
}

func TestReconcileResolvesRateBeforeTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	regID := uuid.New()
	reference := "ASPIR-REG-" + regID.String()

	mock.ExpectExec(`SELECT 1`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(registrationRow(regID, false, false, regmodel.StatusPending))
	mock.ExpectQuery(`SELECT \* FROM "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}))
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(int64(1)))
	mock.ExpectExec(`UPDATE "registrations" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "payment_activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"activity_id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	rec := NewReconciler(db, dbRate{db: db, rate: decimal.NewFromInt(1500)}, regservice.NewAllocator(db), nil)
	res, err := rec.Reconcile(context.Background(), reference, Outcome{
		Success:       true,
		SubunitAmount: decimal.NewFromInt(1_500_000),
		Currency:      "NGN",
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if want := decimal.New(1000, -2); !res.AmountUSD.Equal(want) {
		t.Errorf("AmountUSD = %s, want %s", res.AmountUSD, want)
	}
	if res.BecameFullyPaid {
		t.Error("registration fee alone must not report fully paid")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestReconcileFailureOnlyMarksStatus(t *testing.T) {
	db, mock := newMockDB(t)
	regID := uuid.New()
	reference := "ASPIR-COURSE-" + regID.String()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "registrations"`).
		WillReturnRows(registrationRow(regID, true, false, regmodel.StatusPending))
	// Only the status column is written; the paid flags stay put.
	mock.ExpectExec(`UPDATE "registrations" SET "registration_status"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "payment_activities"`).
		WillReturnRows(sqlmock.NewRows([]string{"activity_id"}).AddRow(int64(1)))
	mock.ExpectCommit()

	rec := NewReconciler(db, fixedRate{decimal.NewFromInt(1500)}, regservice.NewAllocator(db), nil)
	res, err := rec.Reconcile(context.Background(), reference, Outcome{Success: false})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if res.Registration.RegistrationStatus != regmodel.StatusFailed {
		t.Errorf("status = %s, want FAILED", res.Registration.RegistrationStatus)
	}
	if !res.Registration.RegistrationFeePaid {
		t.Error("a failure must not clear the paid registration fee")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
