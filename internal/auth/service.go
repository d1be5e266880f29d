package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/manjeshpatagar/mytradingview/internal/apperr"
	"github.com/manjeshpatagar/mytradingview/internal/models"
	"github.com/manjeshpatagar/mytradingview/internal/schema"
	"github.com/manjeshpatagar/mytradingview/internal/store"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

const invalidCredentials = "Invalid email or password"

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// Session is what register, login and password change hand back.
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

// Service owns registration, login and token-to-user resolution.
type Service struct {
	users  *store.Users
	tokens *Tokens
	clock  util.Clock
	log    *logrus.Entry
	cost   int
}

func NewService(users *store.Users, tokens *Tokens, clock util.Clock, log *logrus.Entry) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{users: users, tokens: tokens, clock: clock, log: log, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *Service) WithHashCost(cost int) *Service {
	s.cost = cost
	return s
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := schema.Struct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	u := &models.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	return s.session(u)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := schema.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.users.ByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized(invalidCredentials, nil)
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, apperr.Unauthorized(invalidCredentials, nil)
	}
	if !u.Active() {
		return nil, apperr.Forbidden("Your account has been deactivated")
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to an active user whose password has
// not been rotated since the token was issued.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired token", err)
	}
	u, err := s.users.ByID(ctx, claims.Subject)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.Unauthorized("The user belonging to this token no longer exists", nil)
	}
	if err != nil {
		return nil, err
	}
	if !u.Active() {
		return nil, apperr.Forbidden("Your account has been deactivated")
	}
	if u.ChangedPasswordAfter(claims.IssuedAt.Time) {
		return nil, apperr.Unauthorized("Password was changed recently, please log in again", nil)
	}
	return u, nil
}

// ChangePassword rotates u's password. Tokens issued before now stop working;
// the returned session carries a fresh one.
func (s *Service) ChangePassword(ctx context.Context, u *models.User, in ChangePasswordInput) (*Session, error) {
	if err := schema.Struct(in); err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return nil, apperr.Unauthorized("Current password is incorrect", nil)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), s.cost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}
	changedAt := s.clock()
	if err := s.users.SetPassword(ctx, u.ID, string(hash), changedAt); err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)
	u.PasswordChangedAt = &changedAt
	s.log.WithField("user_id", u.ID).Info("password changed")
	return s.session(u)
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, expires, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, apperr.Internal("sign token", err)
	}
	return &Session{User: u, Token: token, ExpiresAt: expires}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
