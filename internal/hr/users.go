package hr

import (
	"context"
	"errors"

	"staffdesk.io/internal/auth"
	"staffdesk.io/internal/errs"
)

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	Role       *string `json:"role"`
	EmployeeID *string `json:"employeeId"`
}

// Register creates a login account. Unknown roles become EMPLOYEE.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name, err := required("name", in.Name)
	if err != nil {
		return User{}, err
	}
	email, err := required("email", in.Email)
	if err != nil {
		return User{}, err
	}
	if in.Password == nil || *in.Password == "" {
		return User{}, errs.Validation("password", "password is required")
	}
	email = NormalizeEmail(email)
	if _, err := s.store.Users().GetByEmail(ctx, email); err == nil {
		return User{}, errs.Conflict("User already exists")
	} else if !errs.Is(err, errs.KindNotFound) {
		return User{}, err
	}
	hash, err := auth.HashPassword(*in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return User{}, err
	}
	if err != nil {
		return User{}, errs.Wrap(err, errs.KindUnexpected, "hash password")
	}
	id, now := s.stamp()
	u := User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         auth.ParseRole(str(in.Role)),
		EmployeeID:   str(in.EmployeeID),
		CreatedAt:    now,
	}
	return s.store.Users().Create(ctx, u)
}

// Login checks credentials. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (User, error) {
	if NormalizeEmail(email) == "" || password == "" {
		return User{}, errs.Validation("email", "Please provide email and password")
	}
	u, err := s.store.Users().GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errs.Is(err, errs.KindNotFound) {
			return User{}, auth.ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := auth.CheckPassword(u.PasswordHash, password); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.store.Users().Get(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, f UserFilter) ([]User, error) {
	return s.store.Users().List(ctx, f)
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.store.Users().Delete(ctx, id)
}
