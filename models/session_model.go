package models

// SessionModel is the authenticated identity held on the device.
type SessionModel struct {
	Token   string        `json:"token"`
	Patient *PatientModel `json:"patient"`
}
