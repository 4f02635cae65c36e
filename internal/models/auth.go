package models

import "github.com/golang-jwt/jwt/v5"

// APIClaims are the claims carried by service-to-service access tokens.
type APIClaims struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}
