package service

import (
	"context"

	id "healthhub/pkg/domain"
	dErrors "healthhub/pkg/domain-errors"
	"healthhub/pkg/requestcontext"
)

// authorizeRead lets doctors read any patient and patients read only themselves.
func authorizeRead(ctx context.Context, patientID id.PatientID) error {
	return authorize(ctx, patientID)
}

// authorizeWrite applies the same rule as reads: doctors record results for any
// patient, patients only for themselves (home measurements).
func authorizeWrite(ctx context.Context, patientID id.PatientID) error {
	return authorize(ctx, patientID)
}

func authorize(ctx context.Context, patientID id.PatientID) error {
	userID := requestcontext.UserID(ctx)
	if userID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	switch requestcontext.Role(ctx) {
	case id.RoleDoctor:
		return nil
	case id.RolePatient:
		if id.PatientFor(userID) == patientID {
			return nil
		}
		return dErrors.New(dErrors.CodeForbidden, "patients may only access their own records")
	default:
		return dErrors.New(dErrors.CodeForbidden, "role not permitted")
	}
}
