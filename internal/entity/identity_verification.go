package entity

import "time"

const (
	GenderMale   = "M"
	GenderFemale = "F"

	NationalityDomestic = "DOMESTIC"
	NationalityForeign  = "FOREIGN"
)

// IdentityVerification binds a verification token to the attributes returned
// by the identity provider. It lives in a TTL store, not in the users database.
type IdentityVerification struct {
	Token           string    `json:"token"`
	VerifiedName    string    `json:"verified_name"`
	Gender          string    `json:"gender"`
	BirthDate       string    `json:"birth_date"`
	Nationality     string    `json:"nationality"`
	CarrierVerified bool      `json:"carrier_verified"`
	Provider        string    `json:"provider"`
	VerifiedAt      time.Time `json:"verified_at"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (v *IdentityVerification) ExpiredAt(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
