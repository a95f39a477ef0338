package models

import "github.com/google/uuid"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentNoShow    AppointmentStatus = "no_show"
)

// IsTerminal reports whether no further transitions are allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled || s == AppointmentNoShow
}

type AppointmentModel struct {
	AppointmentId string            `bson:"_id" json:"id"`
	PatientId     string            `bson:"patientId" json:"patientId" validate:"required"`
	DoctorId      string            `bson:"doctorId" json:"doctorId" validate:"required"`
	Date          string            `bson:"date" json:"date" validate:"required,datetime=2006-01-02"`
	Time          string            `bson:"time" json:"time" validate:"required,datetime=15:04"`
	Status        AppointmentStatus `bson:"status" json:"status" validate:"required,oneof=scheduled confirmed completed cancelled no_show"`
	TokenNumber   int               `bson:"tokenNumber" json:"tokenNumber" validate:"gte=1"`
	Reason        string            `bson:"reason,omitempty" json:"reason"`
	CreatedOn     int64             `bson:"createdOn,omitempty" json:"createdOn"`
}

func (m *AppointmentModel) Id() string {
	if m.AppointmentId == "" {
		m.AppointmentId = uuid.New().String()
	}
	return m.AppointmentId
}
