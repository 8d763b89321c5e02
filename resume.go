package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const (
	resumeTokenTTL    = time.Minute * 2
	resumeKeySendFreq = time.Minute
)

// ResumeJWT issues short-lived tokens binding a user id, pushed to clients
// periodically. A reconnecting client presents one to prove it owns the
// user id it claims, since ids themselves are opaque and unauthenticated.
type ResumeJWT struct {
	jwtSecret string
}

func NewResumeJWT(jwtSecret string) *ResumeJWT {
	return &ResumeJWT{jwtSecret}
}

func (r ResumeJWT) GenerateResumeToken(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": userID, "exp": jwt.NewNumericDate(time.Now().Add(resumeTokenTTL))})
	return token.SignedString([]byte(r.jwtSecret))
}

// UserIDFromResumeToken returns the embedded user id, or "" for a missing,
// expired or tampered token.
func (r ResumeJWT) UserIDFromResumeToken(tokenString string) string {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(r.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if userID, ok := claims["userId"].(string); ok {
			return userID
		}
	}
	return ""
}
