package services

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"tasknest/tasknest/database"
	"tasknest/tasknest/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenResult carries an issued token. Fresh is true when the token was
// minted by this call rather than reused.
type TokenResult struct {
	Token      string
	Expiration time.Time
	Fresh      bool
}

type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	ComparePasswords(hashedPassword, password string) error
	AuthenticateCredentials(db *database.Database, username, password string) (models.User, error)
	IssueToken(db *database.Database, user *models.User) (TokenResult, error)
	ValidateToken(db *database.Database, tokenString string) (models.User, error)
}

type AuthService struct {
	tokenTTL       time.Duration
	reuseThreshold time.Duration
}

func NewAuthService() *AuthService {
	return &AuthService{
		tokenTTL:       7 * 24 * time.Hour,
		reuseThreshold: time.Minute,
	}
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func (s *AuthService) ComparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// AuthenticateCredentials resolves a username/password pair to a user.
// Both unknown username and wrong password collapse into
// ErrInvalidCredentials so the caller learns nothing about which failed.
func (s *AuthService) AuthenticateCredentials(db *database.Database, username, password string) (models.User, error) {
	var user models.User
	if err := db.DB.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := s.ComparePasswords(user.PasswordHash, password); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken returns the user's current token while it has more than the
// reuse threshold of validity left; otherwise it mints a new 16-byte token,
// persists it with a fresh expiration, and returns it.
func (s *AuthService) IssueToken(db *database.Database, user *models.User) (TokenResult, error) {
	now := time.Now().UTC()

	if user.Token != nil && user.TokenExpiration != nil &&
		user.TokenExpiration.After(now.Add(s.reuseThreshold)) {
		return TokenResult{Token: *user.Token, Expiration: *user.TokenExpiration}, nil
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return TokenResult{}, err
	}
	tokenString := hex.EncodeToString(raw)
	expiration := now.Add(s.tokenTTL)

	updates := map[string]interface{}{
		"token":            tokenString,
		"token_expiration": expiration,
	}
	if err := db.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return TokenResult{}, err
	}

	user.Token = &tokenString
	user.TokenExpiration = &expiration

	return TokenResult{Token: tokenString, Expiration: expiration, Fresh: true}, nil
}

// ValidateToken resolves a bearer token to the user holding it. A token
// with no matching row or a past expiration is invalid.
func (s *AuthService) ValidateToken(db *database.Database, tokenString string) (models.User, error) {
	var user models.User
	if err := db.DB.Where("token = ?", tokenString).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrInvalidToken
		}
		return models.User{}, err
	}

	if user.TokenExpiration == nil || !user.TokenExpiration.After(time.Now().UTC()) {
		return models.User{}, ErrInvalidToken
	}

	return user, nil
}

var AuthServiceInstance AuthServiceInterface
