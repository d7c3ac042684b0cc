package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"railbook/internal/db"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/repositories"
	"railbook/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultTokenTTL   = 24 * time.Hour
	minPasswordLength = 6
)

// TokenIssuer signs and verifies owner identity tokens. The subject is the user's email.
type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

func NewTokenIssuer(secret string) TokenIssuer {
	return TokenIssuer{Secret: []byte(secret), TTL: defaultTokenTTL, Now: time.Now}
}

func (t TokenIssuer) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

func (t TokenIssuer) Issue(email string) (string, error) {
	ttl := t.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	now := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   utils.NormalizeEmail(email),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString(t.Secret)
}

// Parse returns the owner identity carried by a valid token.
func (t TokenIssuer) Parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// AccountService registers travellers and logs them in.
type AccountService struct {
	Store  db.Store
	Users  repositories.UserRepo
	Tokens TokenIssuer
	Now    func() time.Time
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	CNIC     string `json:"cnic"`
	Password string `json:"password"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

func (s AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return utils.NowUTC()
}

func (s AccountService) Register(ctx context.Context, requestID string, in RegisterInput) (AuthResult, error) {
	name := utils.NormalizeSpace(in.Name)
	email := utils.NormalizeEmail(in.Email)
	phone := strings.TrimSpace(in.Phone)
	cnic := strings.TrimSpace(in.CNIC)

	switch {
	case name == "":
		return AuthResult{}, domain.ValidationError{Field: "name", Msg: "name is required"}
	case !utils.IsValidEmail(email):
		return AuthResult{}, domain.ValidationError{Field: "email", Msg: "email is not valid"}
	case !utils.IsValidPhone(phone):
		return AuthResult{}, domain.ValidationError{Field: "phone", Msg: "phone must look like 03xx-xxxxxxx"}
	case !utils.IsValidCNIC(cnic):
		return AuthResult{}, domain.ValidationError{Field: "cnic", Msg: "cnic must look like 12345-1234567-1"}
	case len(in.Password) < minPasswordLength:
		return AuthResult{}, domain.ValidationError{Field: "password", Msg: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "hash password", Err: err}
	}

	user := models.User{
		Name:         name,
		Email:        email,
		Phone:        phone,
		CNIC:         cnic,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	err = s.Store.Update(ctx, func(ctx context.Context, tx db.Tx) error {
		_, exists, err := s.Users.GetByEmail(ctx, tx, email)
		if err != nil {
			return err
		}
		if exists {
			return domain.ConflictError{Resource: "user", Msg: domain.ErrEmailTaken.Error(), Err: domain.ErrEmailTaken}
		}
		return s.Users.Put(ctx, tx, user)
	})
	if err != nil {
		return AuthResult{}, storeError("register user", err)
	}

	utils.LogEvent(requestID, "auth", "register", "user registered")
	return s.issue(user)
}

func (s AccountService) Login(ctx context.Context, requestID, email, password string) (AuthResult, error) {
	user, ok, err := s.Users.GetByEmail(ctx, s.Store, email)
	if err != nil {
		return AuthResult{}, storeError("read user", err)
	}
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, domain.ValidationError{Field: "credentials", Msg: domain.ErrInvalidCredentials.Error(), Err: domain.ErrInvalidCredentials}
	}
	utils.LogEvent(requestID, "auth", "login", "login ok")
	return s.issue(user)
}

// Profile returns the public view of the signed-in user.
func (s AccountService) Profile(ctx context.Context, email string) (models.PublicUser, error) {
	user, ok, err := s.Users.GetByEmail(ctx, s.Store, email)
	if err != nil {
		return models.PublicUser{}, storeError("read user", err)
	}
	if !ok {
		return models.PublicUser{}, domain.NotFoundError{Resource: "user"}
	}
	return user.ToPublic(), nil
}

func (s AccountService) issue(u models.User) (AuthResult, error) {
	token, err := s.Tokens.Issue(u.Email)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "sign token", Err: err}
	}
	return AuthResult{Token: token, User: u.ToPublic()}, nil
}
