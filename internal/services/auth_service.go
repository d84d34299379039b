package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/wiktoriatopajew/pipa/internal/database"
	"github.com/wiktoriatopajew/pipa/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email or username already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain an uppercase letter, a lowercase letter and a digit")
	ErrInvalidUsername    = errors.New("username must be 3-20 characters of letters, numbers, underscores and hyphens")
)

var (
	usernameRe      = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,20}$`)
	passwordLowerRe = regexp.MustCompile(`[a-z]`)
	passwordUpperRe = regexp.MustCompile(`[A-Z]`)
	passwordDigitRe = regexp.MustCompile(`\d`)
)

func validPassword(password string) bool {
	return len(password) >= 8 &&
		passwordLowerRe.MatchString(password) &&
		passwordUpperRe.MatchString(password) &&
		passwordDigitRe.MatchString(password)
}

// RegisterUser creates a regular user account. Emails are stored lower-cased
// and must be unique, as must usernames.
func RegisterUser(username, email, password string) (*models.User, error) {
	if !usernameRe.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if !validPassword(password) {
		return nil, ErrWeakPassword
	}

	email = strings.ToLower(strings.TrimSpace(email))

	var existing models.User
	result := database.DB.Where("email = ? OR username = ?", email, username).First(&existing)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := database.DB.Create(user).Error; err != nil {
		return nil, err
	}

	return user, nil
}

// VerifyPassword resolves a user by email and checks the password. It is the
// shared credential check behind both the user and admin logins.
func VerifyPassword(email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	if err := database.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// VerifyAdminPassword is VerifyPassword restricted to the admin account.
// A valid password on a non-admin account still fails, without revealing
// which check tripped.
func VerifyAdminPassword(email, password string) (*models.User, error) {
	user, err := VerifyPassword(email, password)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
