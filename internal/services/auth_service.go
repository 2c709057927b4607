package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// Login checks the credentials and binds the user to a freshly issued session
// id, which it returns. prevSID, the id the client arrived with, is unbound so
// a session id planted before login never becomes authenticated.
func (s *AuthService) Login(ctx context.Context, prevSID, email, password string) (*domain.User, string, error) {
	u, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, "", ErrBadCreds
	}
	sid := uuid.NewString()
	if err := s.Users.BindSession(ctx, sid, u.ID); err != nil {
		return nil, "", err
	}
	if prevSID != "" {
		if err := s.Users.UnbindSession(ctx, prevSID); err != nil {
			return nil, "", err
		}
	}
	return u, sid, nil
}

func (s *AuthService) Logout(ctx context.Context, sid string) error {
	return s.Users.UnbindSession(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (*domain.User, error) {
	return s.Users.SessionUser(ctx, sid)
}

type RegisterInput struct {
	Name, Email, Password, Confirm string
}

// Register creates an account. Field problems come back as *ValidationError;
// a duplicate email as ErrEmailTaken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	var ve ValidationError
	name, ok := validate.Name(in.Name)
	if !ok {
		ve.add("name", "required, up to 64 characters")
	}
	email, ok := validate.Email(in.Email)
	if !ok {
		ve.add("email", "invalid email")
	}
	if !validate.Password(in.Password) {
		ve.add("password", "8-64 characters with upper, lower, digit and symbol")
	} else if in.Password != in.Confirm {
		ve.add("confirm", "passwords do not match")
	}
	if err := ve.orNil(); err != nil {
		return nil, err
	}

	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := domain.User{ID: uuid.NewString(), Email: email, Name: name, Hash: string(h)}
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}
