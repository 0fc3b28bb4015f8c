package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"aspir_backend/internals/features/registration/model"
)

/* =========================================================
   Participant IDs

   Canonical form: ET/ASPIR/<COHORT>/<SEQ> with a 3-digit
   zero-padded sequence scoped per cohort code, e.g.
   ET/ASPIR/C1/003. Legacy rows may carry 4-digit sequences or
   an extra dimension segment (ET/ASPIR/C1/S/0016); the parser
   tolerates both and the normalizer rewrites them.
========================================================= */

const participantIDPrefix = "ET/ASPIR"

var (
	ErrNoCohort = errors.New("registration has no cohort assigned")
)

// FormatCanonical renders the canonical participant ID.
func FormatCanonical(cohortCode string, sequence int) string {
	return fmt.Sprintf("%s/%s/%03d", participantIDPrefix, strings.ToUpper(cohortCode), sequence)
}

// ParseParticipantID pulls the cohort code and sequence out of an
// ID-like string. Alternate slash characters are unified, tokens that
// are neither a known cohort code nor numeric (e.g. an obsolete
// dimension letter) are skipped.
func ParseParticipantID(raw string, cohortCodes []string) (code string, sequence int, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", 0, false
	}
	s = strings.NewReplacer("\\", "/", "|", "/").Replace(s)

	known := make(map[string]string, len(cohortCodes))
	for _, c := range cohortCodes {
		known[strings.ToUpper(c)] = strings.ToUpper(c)
	}

	tokens := strings.Split(s, "/")
	for i, tok := range tokens {
		up := strings.ToUpper(strings.TrimSpace(tok))
		c, isCohort := known[up]
		if !isCohort {
			continue
		}
		// First purely-numeric token after the cohort is the sequence.
		for _, next := range tokens[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				continue
			}
			if n, err := strconv.Atoi(next); err == nil && n > 0 {
				return c, n, true
			}
		}
		return "", 0, false
	}
	return "", 0, false
}

// ParseToCanonical returns the canonical rendering of any recognized
// ID, or "" when the string cannot be parsed.
func ParseToCanonical(raw string, cohortCodes []string) string {
	code, seq, ok := ParseParticipantID(raw, cohortCodes)
	if !ok {
		return ""
	}
	return FormatCanonical(code, seq)
}

// NextSequenceFromIDs scans existing IDs for the cohort's prefix and
// returns max(sequence)+1, starting at 1.
func NextSequenceFromIDs(ids []string, cohortCode string) int {
	prefix := participantIDPrefix + "/" + strings.ToUpper(cohortCode) + "/"
	max := 0
	for _, id := range ids {
		if !strings.HasPrefix(strings.ToUpper(id), prefix) {
			continue
		}
		parts := strings.Split(id, "/")
		last := parts[len(parts)-1]
		if n, err := strconv.Atoi(last); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

/* =========================================================
   Allocator
========================================================= */

type Allocator struct {
	DB *gorm.DB
}

func NewAllocator(db *gorm.DB) *Allocator {
	return &Allocator{DB: db}
}

// Generate assigns the next participant ID for the registration's
// cohort. Idempotent: an existing ID is returned unchanged. Returns
// ErrNoCohort when no cohort is assigned.
//
// Concurrent allocations for the same cohort are serialized by
// locking the cohort row for the duration of the read-max/write-max+1
// critical section.
func (a *Allocator) Generate(ctx context.Context, reg *model.Registration) (string, error) {
	if reg.RegistrationParticipantID != nil && *reg.RegistrationParticipantID != "" {
		return *reg.RegistrationParticipantID, nil
	}
	if reg.RegistrationCohortID == nil {
		return "", ErrNoCohort
	}

	var assigned string
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := a.generateInTx(tx, reg)
		if err != nil {
			return err
		}
		assigned = id
		return nil
	})
	if err != nil {
		return "", err
	}
	return assigned, nil
}

// GenerateInTx is Generate for callers already inside a transaction
// (the reconciler allocates in the same unit as the payment write).
func (a *Allocator) GenerateInTx(tx *gorm.DB, reg *model.Registration) (string, error) {
	if reg.RegistrationParticipantID != nil && *reg.RegistrationParticipantID != "" {
		return *reg.RegistrationParticipantID, nil
	}
	if reg.RegistrationCohortID == nil {
		return "", ErrNoCohort
	}
	return a.generateInTx(tx, reg)
}

func (a *Allocator) generateInTx(tx *gorm.DB, reg *model.Registration) (string, error) {
	// Per-cohort mutex: the cohort row is the serialization point.
	var cohort model.Cohort
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&cohort, "cohort_id = ?", *reg.RegistrationCohortID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoCohort
		}
		return "", err
	}

	// Re-check under the lock. The caller's copy of the row predates
	// it; a concurrent allocation may have assigned an ID in between,
	// and an assigned ID is never reassigned.
	var current struct {
		RegistrationParticipantID *string
	}
	err := tx.Model(&model.Registration{}).
		Select("registration_participant_id").
		Where("registration_id = ?", reg.RegistrationID).
		Take(&current).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if current.RegistrationParticipantID != nil && *current.RegistrationParticipantID != "" {
		reg.RegistrationParticipantID = current.RegistrationParticipantID
		return *current.RegistrationParticipantID, nil
	}

	prefix := participantIDPrefix + "/" + strings.ToUpper(cohort.CohortCode) + "/%"
	var existing []string
	if err := tx.Model(&model.Registration{}).
		Where("registration_participant_id LIKE ?", prefix).
		Pluck("registration_participant_id", &existing).Error; err != nil {
		return "", err
	}

	seq := NextSequenceFromIDs(existing, cohort.CohortCode)
	newID := FormatCanonical(cohort.CohortCode, seq)

	if err := tx.Model(&model.Registration{}).
		Where("registration_id = ?", reg.RegistrationID).
		Update("registration_participant_id", newID).Error; err != nil {
		return "", err
	}
	reg.RegistrationParticipantID = &newID
	return newID, nil
}

// NextAvailableSequence returns the sequence the next allocation in
// this cohort would receive. Used by the normalizer for conflict
// reassignment; callers needing atomicity must hold the cohort lock.
func (a *Allocator) NextAvailableSequence(tx *gorm.DB, cohortCode string) (int, error) {
	prefix := participantIDPrefix + "/" + strings.ToUpper(cohortCode) + "/%"
	var existing []string
	if err := tx.Model(&model.Registration{}).
		Where("registration_participant_id LIKE ?", prefix).
		Pluck("registration_participant_id", &existing).Error; err != nil {
		return 0, err
	}
	return NextSequenceFromIDs(existing, cohortCode), nil
}

/* =========================================================
   Normalization
========================================================= */

type NormalizeReport struct {
	Updated          int                 `json:"updated"`
	AlreadyCanonical int                 `json:"already_canonical"`
	SkippedInvalid   int                 `json:"skipped_invalid"`
	Conflicts        int                 `json:"conflicts_reassigned"`
	Changes          []NormalizeChange   `json:"changes"`
	Invalid          []string            `json:"invalid,omitempty"`
}

type NormalizeChange struct {
	RegistrationID string `json:"registration_id"`
	FullName       string `json:"full_name"`
	OldID          string `json:"old_id"`
	NewID          string `json:"new_id"`
	Conflict       bool   `json:"conflict,omitempty"`
}

// NormalizeAll rewrites every non-canonical participant ID into the
// canonical 3-segment/3-digit form. When two legacy IDs canonicalize
// to the same string the later-created registration is bumped to the
// next available sequence. With dryRun nothing is persisted.
func (a *Allocator) NormalizeAll(ctx context.Context, dryRun bool) (*NormalizeReport, error) {
	report := &NormalizeReport{}

	var cohorts []model.Cohort
	if err := a.DB.WithContext(ctx).Find(&cohorts).Error; err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(cohorts))
	for _, c := range cohorts {
		codes = append(codes, c.CohortCode)
	}

	var regs []model.Registration
	if err := a.DB.WithContext(ctx).
		Where("registration_participant_id IS NOT NULL AND registration_participant_id <> ''").
		Order("registration_created_at ASC").
		Find(&regs).Error; err != nil {
		return nil, err
	}

	for i := range regs {
		reg := &regs[i]
		current := *reg.RegistrationParticipantID
		canonical := ParseToCanonical(current, codes)

		if canonical == "" {
			report.SkippedInvalid++
			report.Invalid = append(report.Invalid, fmt.Sprintf("%s: %q", reg.RegistrationFullName, current))
			continue
		}
		if canonical == current {
			report.AlreadyCanonical++
			continue
		}

		change := NormalizeChange{
			RegistrationID: reg.RegistrationID.String(),
			FullName:       reg.RegistrationFullName,
			OldID:          current,
		}

		err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var taken int64
			if err := tx.Model(&model.Registration{}).
				Where("registration_participant_id = ? AND registration_id <> ?", canonical, reg.RegistrationID).
				Count(&taken).Error; err != nil {
				return err
			}

			newID := canonical
			if taken > 0 {
				code, _, _ := ParseParticipantID(canonical, codes)
				seq, err := a.NextAvailableSequence(tx, code)
				if err != nil {
					return err
				}
				newID = FormatCanonical(code, seq)
				change.Conflict = true
			}
			change.NewID = newID

			if dryRun {
				return nil
			}
			return tx.Model(&model.Registration{}).
				Where("registration_id = ?", reg.RegistrationID).
				Update("registration_participant_id", newID).Error
		})
		if err != nil {
			return nil, err
		}

		if change.Conflict {
			report.Conflicts++
		}
		report.Updated++
		report.Changes = append(report.Changes, change)
	}

	return report, nil
}
