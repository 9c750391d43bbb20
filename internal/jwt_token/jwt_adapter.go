package jwttoken

import (
	id "healthhub/pkg/domain"
	dErrors "healthhub/pkg/domain-errors"
	authmw "healthhub/pkg/platform/middleware/auth"
)

// ToMiddlewareClaims parses the string claims into typed principal fields.
func ToMiddlewareClaims(claims *Claims) (*authmw.JWTClaims, error) {
	userID, err := id.ParseUserID(claims.UserID)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token subject")
	}
	role, err := id.ParseRole(claims.Role)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token role")
	}
	// Session is optional for service-issued tokens
	var sessionID id.SessionID
	if claims.SessionID != "" {
		sessionID, err = id.ParseSessionID(claims.SessionID)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token session")
		}
	}
	return &authmw.JWTClaims{
		UserID:    userID,
		SessionID: sessionID,
		Role:      role,
		JTI:       claims.ID,
	}, nil
}

type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims)
}
