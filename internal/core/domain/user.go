package domain

import "strings"

// IndiaCountryCode is prepended to contact numbers registered without one.
const IndiaCountryCode = "+91"

// User is a registered account. ContactNumber is the single emergency
// contact that receives SOS alerts and never changes after registration.
type User struct {
	ID            int64  `json:"id"`
	Username      string `json:"username"`
	PasswordHash  string `json:"-"`
	ContactNumber string `json:"contact_number"`
}

// NormalizeContact prefixes contact with IndiaCountryCode unless it already
// starts with it or carries its own "+" country code.
func NormalizeContact(contact string) string {
	if strings.HasPrefix(contact, IndiaCountryCode) || strings.HasPrefix(contact, "+") {
		return contact
	}
	return IndiaCountryCode + contact
}
