package dto

/* ===================== Participant ID operations ===================== */

type GenerateParticipantIDRequest struct {
	RegistrationID string `json:"registration_id" validate:"required,uuid"`
}

type BackfillParticipantIDsRequest struct {
	// When false only fully paid registrations without an ID are
	// assigned; true extends the backfill to partially paid rows.
	IncludePartiallyPaid bool `json:"include_partially_paid"`
	DryRun               bool `json:"dry_run"`
}

type NormalizeParticipantIDsRequest struct {
	DryRun bool `json:"dry_run"`
}

// ImportParticipantIDRow is one pre-parsed row of an external ID
// assignment list: a participant name matched against registrations
// plus the ID they should carry.
type ImportParticipantIDRow struct {
	FullName      string `json:"full_name" validate:"required"`
	ParticipantID string `json:"participant_id" validate:"required"`
}

type ImportParticipantIDsRequest struct {
	Rows   []ImportParticipantIDRow `json:"rows" validate:"required,min=1,dive"`
	DryRun bool                     `json:"dry_run"`
}
