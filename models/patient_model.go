package models

import "github.com/google/uuid"

type PatientModel struct {
	PatientId         string `bson:"_id" json:"id" copier:"-"`
	Email             string `bson:"email" json:"email" validate:"required,email" copier:"-"`
	Name              string `bson:"name,omitempty" json:"name" validate:"max=50"`
	Phone             string `bson:"phone,omitempty" json:"phone" validate:"omitempty,min=7,max=20"`
	DateOfBirth       string `bson:"dateOfBirth,omitempty" json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Address           string `bson:"address,omitempty" json:"address"`
	BloodGroup        string `bson:"bloodGroup,omitempty" json:"bloodGroup" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	Allergies         string `bson:"allergies,omitempty" json:"allergies"`
	ChronicConditions string `bson:"chronicConditions,omitempty" json:"chronicConditions"`
	Height            string `bson:"height,omitempty" json:"height"`
	Weight            string `bson:"weight,omitempty" json:"weight"`
	CreatedOn         int64  `bson:"createdOn,omitempty" json:"createdOn" copier:"-"`
	UpdatedOn         int64  `bson:"updatedOn,omitempty" json:"updatedOn" copier:"-"`
}

func (m *PatientModel) Id() string {
	if m.PatientId == "" {
		m.PatientId = uuid.New().String()
	}
	return m.PatientId
}

// ProfilePatch carries the user-editable profile attributes. Empty fields
// are left untouched when applied.
type ProfilePatch struct {
	Name              string
	Phone             string
	DateOfBirth       string
	Address           string
	BloodGroup        string
	Allergies         string
	ChronicConditions string
	Height            string
	Weight            string
}
