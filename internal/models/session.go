package models

import "time"

type LoginMethod string

const (
	LoginMethodCredentials LoginMethod = "credentials"
	LoginMethodNFC         LoginMethod = "nfc"
)

// Session is a gateway login. It keeps typed snapshots of the user and card
// returned by the campus API at login time.
type Session struct {
	ID               string
	UserID           int
	DeviceID         string
	DeviceName       string
	Method           LoginMethod
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	User             User
	Card             *Card
	CreatedAt        time.Time
	LastSeenAt       time.Time
	ExpiresAt        time.Time
}
