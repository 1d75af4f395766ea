// internal/domain/models/user.go
package models

import (
	"time"
)

// CoordinationCommunityID is the sentinel community that users outside any
// parish community (the master account, coordinators) belong to.
const CoordinationCommunityID = "coord"

// User is an application profile. Its ID equals the identity-provider uid,
// so the profile can be found directly after sign-in.
//
// NOTE:
//   - Password is never persisted; credentials live with the identity provider.
//   - IsMaster implies IsAdmin. The user store enforces this on every write.
type User struct {
	ID             string   `bson:"_id" json:"id"`
	Username       string   `bson:"username" json:"username"`
	Name           string   `bson:"name" json:"name"`
	NameCI         string   `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Password       string   `bson:"password" json:"-"`
	CommunityID    string   `bson:"community_id" json:"community_id"`
	IsAdmin        bool     `bson:"is_admin" json:"is_admin"`
	IsMaster       bool     `bson:"is_master" json:"is_master"`
	AllowedModules []Module `bson:"allowed_modules" json:"allowed_modules"`
	Status         Status   `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasModule reports whether m is among the user's allowed modules.
func (u User) HasModule(m Module) bool {
	return contains(u.AllowedModules, m)
}

// DefaultModule is the module a fresh session starts in.
func (u User) DefaultModule() Module {
	if len(u.AllowedModules) == 0 {
		return ModuleLiturgy
	}
	return u.AllowedModules[0]
}
