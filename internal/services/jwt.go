package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenIsInvalid = errors.New("token is invalid")
	ErrTokenIsExpired = errors.New("token is expired")
)

const (
	PurposeAccess   = "access"
	PurposeRecovery = "recovery"

	accessTokenTTL   = 24 * time.Hour
	recoveryTokenTTL = time.Hour
)

// Claims is the payload of every token the service issues. Purpose keeps
// recovery tokens from being accepted as bearer tokens and vice versa.
// Stamp ties a recovery token to the password hash it was issued against.
type Claims struct {
	Role    models.Role `json:"role,omitempty"`
	Purpose string      `json:"purpose"`
	Stamp   string      `json:"stamp,omitempty"`
	jwt.RegisteredClaims
}

type JWTService struct {
	authSecretKey string
}

func NewJWTService(authSecretKey string) *JWTService {
	return &JWTService{authSecretKey: authSecretKey}
}

// GenerateJWT issues a bearer token for user valid for 24 hours.
func (j *JWTService) GenerateJWT(user models.User) (string, error) {
	return j.sign(Claims{Role: user.Role, Purpose: PurposeAccess}, user.ID, accessTokenTTL)
}

// ValidateToken accepts only bearer tokens.
func (j *JWTService) ValidateToken(tokenString string) (*jwt.Token, error) {
	return j.parse(tokenString, PurposeAccess)
}

// GenerateRecoveryToken issues a one hour token that only authorizes a
// password change for userID while its password still matches stamp.
func (j *JWTService) GenerateRecoveryToken(userID, stamp string) (string, error) {
	return j.sign(Claims{Purpose: PurposeRecovery, Stamp: stamp}, userID, recoveryTokenTTL)
}

// ValidateRecoveryToken returns the user id and stamp a recovery token was
// issued with.
func (j *JWTService) ValidateRecoveryToken(tokenString string) (string, string, error) {
	token, err := j.parse(tokenString, PurposeRecovery)
	if err != nil {
		return "", "", err
	}

	claims := token.Claims.(*Claims)
	if claims.Subject == "" || claims.Stamp == "" {
		return "", "", ErrTokenIsInvalid
	}
	return claims.Subject, claims.Stamp, nil
}

func (j *JWTService) sign(claims Claims, subject string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims.RegisteredClaims = jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(j.authSecretKey))
	if err != nil {
		return "", fmt.Errorf("error while generating token: %w", err)
	}

	return tokenString, nil
}

func (j *JWTService) parse(tokenString, purpose string) (*jwt.Token, error) {
	parsedToken, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.authSecretKey), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenIsExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenIsInvalid, err)
	}

	claims, ok := parsedToken.Claims.(*Claims)
	if !parsedToken.Valid || !ok || claims.Purpose != purpose {
		return nil, ErrTokenIsInvalid
	}

	return parsedToken, nil
}
