package service

import (
	"strings"

	"github.com/Kotlang/clinicAuthGo/autherr"
	"github.com/Kotlang/clinicAuthGo/models"
)

// all input validations will be added here.

func ValidateProfilePatch(patch *models.ProfilePatch) error {
	patch.Name = strings.TrimSpace(patch.Name)
	if len(patch.Name) > 50 {
		return autherr.New(autherr.InvalidInput, "Name exceeds length of 50 characters.", nil)
	}
	return nil
}

func ValidateRegistration(patch *models.ProfilePatch) error {
	if len(strings.TrimSpace(patch.Name)) == 0 {
		return autherr.New(autherr.InvalidInput, "Name is required.", nil)
	}
	return ValidateProfilePatch(patch)
}

func ValidateBookingRequest(req *BookingRequest) error {
	if strings.TrimSpace(req.DoctorId) == "" {
		return autherr.New(autherr.InvalidInput, "Doctor is required.", nil)
	}
	if strings.TrimSpace(req.Date) == "" || strings.TrimSpace(req.Time) == "" {
		return autherr.New(autherr.InvalidInput, "Date and time are required.", nil)
	}
	return nil
}
