package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is lower than for passwords: codes are short-lived and verified on every score submission.
const BcryptCost = 10

const (
	MatchCodeLength   = 6
	matchCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// GenerateMatchCode returns MatchCodeLength characters drawn uniformly from A-Z0-9.
func GenerateMatchCode() (string, error) {
	max := big.NewInt(int64(len(matchCodeAlphabet)))
	code := make([]byte, MatchCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		code[i] = matchCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func HashCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	return string(bytes), err
}

func CheckCodeHash(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}

// UmpireClaims are carried by the token issued after a match code is verified.
type UmpireClaims struct {
	MatchID string `json:"match_id"`
	Umpire  string `json:"umpire"`
	jwt.RegisteredClaims
}

func GenerateUmpireToken(secret []byte, matchID, umpire string, expiresAt time.Time) (string, error) {
	claims := UmpireClaims{
		MatchID: matchID,
		Umpire:  umpire,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   matchID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ParseUmpireToken(secret []byte, tokenString string) (*UmpireClaims, error) {
	claims := &UmpireClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.MatchID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
