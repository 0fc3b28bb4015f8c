package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ===================== Cohort ===================== */

type Cohort struct {
	CohortID          uuid.UUID  `gorm:"column:cohort_id;type:uuid;default:gen_random_uuid();primaryKey" json:"cohort_id"`
	CohortName        string     `gorm:"column:cohort_name;type:varchar(100);not null;uniqueIndex" json:"cohort_name"`
	// Namespace for participant-ID sequences. Treated as immutable once
	// any participant ID references it (renaming orphans historical IDs).
	CohortCode        string     `gorm:"column:cohort_code;type:varchar(10);not null;uniqueIndex" json:"cohort_code"`
	CohortDescription *string    `gorm:"column:cohort_description" json:"cohort_description,omitempty"`
	CohortIsActive    bool       `gorm:"column:cohort_is_active;not null;default:true" json:"cohort_is_active"`
	CohortIsNewIntake bool       `gorm:"column:cohort_is_new_intake;not null;default:false" json:"cohort_is_new_intake"`
	CohortStartDate   *time.Time `gorm:"column:cohort_start_date;type:date" json:"cohort_start_date,omitempty"`
	CohortEndDate     *time.Time `gorm:"column:cohort_end_date;type:date" json:"cohort_end_date,omitempty"`

	CreatedAt time.Time      `gorm:"column:cohort_created_at;autoCreateTime" json:"cohort_created_at"`
	UpdatedAt time.Time      `gorm:"column:cohort_updated_at;autoUpdateTime" json:"cohort_updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:cohort_deleted_at;index" json:"cohort_deleted_at,omitempty"`
}

func (Cohort) TableName() string { return "cohorts" }

/* ===================== Dimension ===================== */

type Dimension struct {
	DimensionID           uuid.UUID `gorm:"column:dimension_id;type:uuid;default:gen_random_uuid();primaryKey" json:"dimension_id"`
	DimensionCode         string    `gorm:"column:dimension_code;type:varchar(1);not null;uniqueIndex" json:"dimension_code"`
	DimensionName         string    `gorm:"column:dimension_name;type:varchar(200);not null" json:"dimension_name"`
	DimensionDescription  *string   `gorm:"column:dimension_description" json:"dimension_description,omitempty"`
	DimensionIsActive     bool      `gorm:"column:dimension_is_active;not null;default:true" json:"dimension_is_active"`
	DimensionDisplayOrder int       `gorm:"column:dimension_display_order;not null;default:0" json:"dimension_display_order"`

	CreatedAt time.Time `gorm:"column:dimension_created_at;autoCreateTime" json:"dimension_created_at"`
	UpdatedAt time.Time `gorm:"column:dimension_updated_at;autoUpdateTime" json:"dimension_updated_at"`
}

func (Dimension) TableName() string { return "dimensions" }
