package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims identify the patient a session token was issued to. Audience holds
// the clinic.
type Claims struct {
	jwt.RegisteredClaims
}

// GetToken signs a session token for patientId. Tokens carry no expiry:
// a session lives until the device logs out.
func GetToken(secret []byte, clinic, patientId string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.New().String(),
			Subject:  patientId,
			Audience: jwt.ClaimStrings{clinic},
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	at := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return at.SignedString(secret)
}

// VerifyToken checks the signature and clinic and returns the patient id.
func VerifyToken(secret []byte, clinic, token string) (string, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(clinic),
	)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	if !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
