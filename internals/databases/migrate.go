package database

import (
	"log"

	paymodel "aspir_backend/internals/features/payments/model"
	regmodel "aspir_backend/internals/features/registration/model"
	usermodel "aspir_backend/internals/features/users/model"
)

// Migrate brings the schema up to date. Gated behind RUN_MIGRATIONS
// so pooled production deployments can manage DDL separately.
func Migrate() {
	if err := DB.AutoMigrate(
		&regmodel.Cohort{},
		&regmodel.Dimension{},
		&regmodel.PricingConfig{},
		&regmodel.ProgramSettings{},
		&regmodel.Registration{},
		&paymodel.Transaction{},
		&paymodel.PaymentActivity{},
		&usermodel.StaffUser{},
	); err != nil {
		log.Fatalf("❌ migration failed: %v", err)
	}
	log.Println("✅ Schema migrated")
}
