// Package users stores the identities behind authenticated requests. Guests
// never get a row here; a user exists once Google sign-in completes.
package users

import "time"

// User is one signed-in account. The ID is the provider-prefixed subject
// ("google:<sub>"), the same string the auth middleware puts in context, so
// profile and report ownership joins directly against it.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	GivenName  string    `json:"givenName"`
	FamilyName string    `json:"familyName"`
	PictureURL string    `json:"pictureUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
