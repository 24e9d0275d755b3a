package domain

import "time"

// Practitioner is the clinician account that owns protocols. LoginUserID
// links the content-store document to the authentication identity.
type Practitioner struct {
	ID              string    `json:"_id,omitempty"`
	LoginUserID     string    `json:"login_user_id"`
	Prefix          string    `json:"prefix,omitempty"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio,omitempty"`
	Headline        string    `json:"headline,omitempty"`
	UserName        string    `json:"user_name,omitempty"`
	Email           string    `json:"email,omitempty"`
	PhoneNumber     string    `json:"phone_number,omitempty"`
	IsPhoneVerified bool      `json:"is_phone_verified"`
	AvatarURL       string    `json:"avatar_url,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// PractitionerUpdate carries the editable profile fields. Nil pointers leave
// the stored value untouched.
type PractitionerUpdate struct {
	Prefix   *string `json:"prefix,omitempty"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Headline *string `json:"headline,omitempty"`
}
