package identity

// User is a member of the workspace. Authentication is delegated to the
// identity provider; CognitoID is the provider's subject.
type User struct {
	UserID            int
	CognitoID         string
	Username          string
	Email             *string
	ProfilePictureURL *string
	TeamID            *int
}

// HasProfilePicture reports whether a picture key is stored for the user
func (u *User) HasProfilePicture() bool {
	return u.ProfilePictureURL != nil && *u.ProfilePictureURL != ""
}
