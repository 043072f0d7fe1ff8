// Package account implements sign-up, sign-in and profile updates on top
// of repository.UserRepo.  Every rejected input is reported as a
// *ValidationError naming the offending field.
package account

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/iliyamo/cineverse/internal/repository"
	"github.com/iliyamo/cineverse/internal/utils"
)

// MinPasswordLen is the shortest password accepted.
const MinPasswordLen = 6

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned by Login for unknown email or wrong password.
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// ValidationError describes a rejected field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

var emailPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._]*[a-z0-9]@[a-z0-9-]+\.[a-z]{2,}$`)

// ValidEmail reports whether email (already lower-cased) is acceptable: a
// local part of at least two characters without consecutive dots and a
// single-label domain containing a letter.
func ValidEmail(email string) bool {
	if !emailPattern.MatchString(email) {
		return false
	}
	local, domain, _ := strings.Cut(email, "@")
	if strings.Contains(local, "..") {
		return false
	}
	label, _, _ := strings.Cut(domain, ".")
	return strings.ContainsAny(label, "abcdefghijklmnopqrstuvwxyz")
}

// Initials returns up to two upper-case initials of name, or "?".
func Initials(name string) string {
	var out []rune
	for _, w := range strings.Fields(name) {
		out = append(out, unicode.ToUpper([]rune(w)[0]))
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}

// Profile is the public view of a user.
type Profile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	City     string `json:"city"`
	Initials string `json:"initials"`
}

// ProfileOf strips the password hash from u.
func ProfileOf(u repository.User) Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, City: u.City, Initials: Initials(u.Name)}
}

// Service holds the account rules.
type Service struct {
	users *repository.UserRepo
	cost  int
	now   func() time.Time
}

// NewService returns a Service hashing passwords with the given bcrypt cost.
func NewService(users *repository.UserRepo, bcryptCost int) *Service {
	return &Service{users: users, cost: bcryptCost, now: time.Now}
}

// SignupInput is the sign-up form.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup validates in and creates the account.  A taken email is reported
// as a ValidationError on the email field.
func (s *Service) Signup(ctx context.Context, in SignupInput) (repository.User, error) {
	name := strings.TrimSpace(in.Name)
	email := repository.NormalizeEmail(in.Email)
	switch {
	case name == "":
		return repository.User{}, invalid("name", "Name is required.")
	case email == "":
		return repository.User{}, invalid("email", "Email is required.")
	case !ValidEmail(email):
		return repository.User{}, invalid("email", "Invalid email format.")
	case in.Password == "":
		return repository.User{}, invalid("password", "Password is required.")
	case len(in.Password) < MinPasswordLen:
		return repository.User{}, invalid("password", "Password must be at least 6 characters.")
	}
	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return repository.User{}, err
	}
	now := s.now().UTC()
	u := repository.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return repository.User{}, invalid("email", "An account with this email already exists.")
		}
		return repository.User{}, err
	}
	return u, nil
}

// Login checks the credentials.
func (s *Service) Login(ctx context.Context, email, password string) (repository.User, error) {
	email = repository.NormalizeEmail(email)
	if email == "" || password == "" {
		return repository.User{}, invalid("email", "Please fill in all fields.")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return repository.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return repository.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id string) (repository.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateInput is the profile form.  Nil fields are left unchanged; blank
// Name and Email are ignored.
type UpdateInput struct {
	Name            *string `json:"name"`
	Email           *string `json:"email"`
	Phone           *string `json:"phone"`
	City            *string `json:"city"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password"`
}

// Update applies in to the user.  Setting a new password requires the
// current one.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (repository.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return repository.User{}, err
	}
	if in.NewPassword != "" {
		if in.CurrentPassword == "" {
			return repository.User{}, invalid("current_password", "Enter your current password to set a new one.")
		}
		if !utils.VerifyPassword(u.PasswordHash, in.CurrentPassword) {
			return repository.User{}, invalid("current_password", "Current password is incorrect.")
		}
		if len(in.NewPassword) < MinPasswordLen {
			return repository.User{}, invalid("new_password", "New password must be at least 6 characters.")
		}
		hash, err := utils.HashPassword(in.NewPassword, s.cost)
		if err != nil {
			return repository.User{}, err
		}
		u.PasswordHash = hash
	}
	if in.Email != nil {
		if email := repository.NormalizeEmail(*in.Email); email != "" {
			if !ValidEmail(email) {
				return repository.User{}, invalid("email", "Invalid email format.")
			}
			u.Email = email
		}
	}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			u.Name = name
		}
	}
	if in.Phone != nil {
		u.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.City != nil {
		u.City = strings.TrimSpace(*in.City)
	}
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return repository.User{}, invalid("email", "That email is already used by another account.")
		}
		return repository.User{}, err
	}
	return u, nil
}
