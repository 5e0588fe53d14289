package model

import "time"

// UserType classifies an account: elders book accompaniment, companions provide it.
type UserType string

const (
	UserTypeElder     UserType = "ELDER"
	UserTypeCompanion UserType = "COMPANION"
)

// DefaultUserType is assigned on first login; profile completion may change it later.
const DefaultUserType = UserTypeElder

type User struct {
	ID        int64
	Openid    string
	Unionid   *string
	UserType  UserType
	Nickname  string
	AvatarURL string
	Phone     *string
	Deleted   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
