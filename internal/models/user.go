package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles carried in access tokens.
type UserRole string

const (
	RoleAdmin      UserRole = "ADMIN"
	RoleInstructor UserRole = "INSTRUCTOR"
	RoleStudent    UserRole = "STUDENT"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Actor returns the caller the claims describe.
func (c *JWTClaims) Actor() Actor {
	return Actor{UserID: c.UserID, Role: c.Role}
}

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	UserID string
	Role   UserRole
}

// IsStudent reports whether the actor only has student access.
func (a Actor) IsStudent() bool {
	return a.Role == RoleStudent
}

// CanManageCoursework reports whether the actor may create, edit or grade.
func (a Actor) CanManageCoursework() bool {
	return a.Role == RoleInstructor || a.Role == RoleAdmin
}
