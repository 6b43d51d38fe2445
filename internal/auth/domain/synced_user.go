package domain

// SyncedUser is the local proof that the signed-in principal has a backend account.
type SyncedUser struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	ExternalAuthID string  `json:"externalAuthId"`
	IsOnline       bool    `json:"isOnline"`
	AvatarURL      *string `json:"avatarUrl"`
	CreatedAt      string  `json:"createdAt"`
}

// Avatar returns the avatar URL or "".
func (u *SyncedUser) Avatar() string {
	if u.AvatarURL == nil {
		return ""
	}
	return *u.AvatarURL
}
