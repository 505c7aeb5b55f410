// Package users implements account workflows: registration, login, profile
// updates, deletion and role switching.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/auth"
	"socloud/internal/logging"
	"socloud/internal/media"
	"socloud/internal/models"
	"socloud/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, u models.User) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// Service exposes user-related workflows.
type Service interface {
	Register(ctx context.Context, reg models.Registration, picture *models.Upload) (models.Session, error)
	Login(ctx context.Context, email, password string) (models.Session, error)
	Get(ctx context.Context, userID string) (models.UserView, error)
	List(ctx context.Context) ([]models.UserView, error)
	Update(ctx context.Context, userID string, patch models.UserPatch, picture *models.Upload) (models.UserView, error)
	Delete(ctx context.Context, userID string) (models.UserView, error)
	SwitchRole(ctx context.Context, userID string) (models.UserView, error)
	EnsureAdmin(ctx context.Context, email, password string) error
}

type service struct {
	store  Store
	media  *media.Manager
	tokens *auth.TokenManager
}

// New wires a Service backed by the provided Store, blob manager and token issuer.
func New(store Store, mediaManager *media.Manager, tokens *auth.TokenManager) Service {
	return &service{store: store, media: mediaManager, tokens: tokens}
}

func (s *service) Register(ctx context.Context, reg models.Registration, picture *models.Upload) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}
	if err := validateRegistration(reg); err != nil {
		return models.Session{}, err
	}

	u, err := s.create(ctx, reg, models.RoleUser)
	if err != nil {
		return models.Session{}, err
	}

	if picture != nil {
		_, err := s.media.AttachAndCommit(ctx, media.KindUsers, u.ID, picture, func(ref *models.BlobRef) error {
			withPicture := u
			withPicture.Picture = ref
			updated, err := s.store.UpdateUser(ctx, withPicture)
			if err != nil {
				return err
			}
			u = updated
			return nil
		})
		if err != nil {
			logging.WithContext(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("user created without picture")
			return models.Session{}, err
		}
	}

	logging.WithContext(ctx).Info().Str("user_id", u.ID).Msg("user registered")
	return s.session(u)
}

func (s *service) Login(ctx context.Context, email, password string) (models.Session, error) {
	if err := ctx.Err(); err != nil {
		return models.Session{}, err
	}

	u, err := s.store.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		auth.BurnPasswordCheck(password)
		return models.Session{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(u.PasswordHash, password) {
		return models.Session{}, apperr.ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *service) Get(ctx context.Context, userID string) (models.UserView, error) {
	if err := ctx.Err(); err != nil {
		return models.UserView{}, err
	}
	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}
	return u.View(), nil
}

func (s *service) List(ctx context.Context) ([]models.UserView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, u.View())
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, userID string, patch models.UserPatch, picture *models.Upload) (models.UserView, error) {
	if err := ctx.Err(); err != nil {
		return models.UserView{}, err
	}

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}

	if v, ok := patch.FirstName.Get(); ok {
		u.FirstName = strings.TrimSpace(v)
	}
	if v, ok := patch.LastName.Get(); ok {
		u.LastName = strings.TrimSpace(v)
	}
	if v, ok := patch.Password.Get(); ok {
		hash, err := auth.HashPassword(v)
		if err != nil {
			return models.UserView{}, err
		}
		u.PasswordHash = hash
	}

	if picture == nil {
		updated, err := s.store.UpdateUser(ctx, u)
		if err != nil {
			return models.UserView{}, err
		}
		return updated.View(), nil
	}

	var updated models.User
	_, err = s.media.Replace(ctx, media.KindUsers, u.ID, u.Picture, picture, func(ref *models.BlobRef) error {
		u.Picture = ref
		var err error
		updated, err = s.store.UpdateUser(ctx, u)
		return err
	})
	if err != nil {
		return models.UserView{}, err
	}
	return updated.View(), nil
}

func (s *service) Delete(ctx context.Context, userID string) (models.UserView, error) {
	if err := ctx.Err(); err != nil {
		return models.UserView{}, err
	}

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}

	if err := s.media.Release(ctx, u.Picture); err != nil {
		return models.UserView{}, err
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		return models.UserView{}, err
	}

	logging.WithContext(ctx).Info().Str("user_id", u.ID).Msg("user deleted")
	return u.View(), nil
}

func (s *service) SwitchRole(ctx context.Context, userID string) (models.UserView, error) {
	if err := ctx.Err(); err != nil {
		return models.UserView{}, err
	}

	u, err := s.store.UserByID(ctx, userID)
	if err != nil {
		return models.UserView{}, err
	}

	u.Role = u.Role.Toggle()
	updated, err := s.store.UpdateUser(ctx, u)
	if err != nil {
		return models.UserView{}, err
	}

	logging.WithContext(ctx).Info().Str("user_id", u.ID).Str("role", string(updated.Role)).Msg("user role switched")
	return updated.View(), nil
}

// EnsureAdmin creates an admin account unless the email is already registered.
func (s *service) EnsureAdmin(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reg := models.Registration{Email: email, Password: password, FirstName: "Admin"}
	if err := validateRegistration(reg); err != nil {
		return err
	}

	_, err := s.create(ctx, reg, models.RoleAdmin)
	if errors.Is(err, apperr.ErrDuplicateCredential) {
		return nil
	}
	return err
}

func (s *service) create(ctx context.Context, reg models.Registration, role models.Role) (models.User, error) {
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return models.User{}, err
	}

	u, err := s.store.CreateUser(ctx, models.User{
		Email:        reg.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(reg.FirstName),
		LastName:     strings.TrimSpace(reg.LastName),
		Role:         role,
	})
	if errors.Is(err, store.ErrConstraint) {
		return models.User{}, apperr.ErrDuplicateCredential
	}
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *service) session(u models.User) (models.Session, error) {
	token, err := s.tokens.Issue(auth.ClaimsFor(u))
	if err != nil {
		return models.Session{}, err
	}
	return models.Session{UserID: u.ID, Token: token}, nil
}

func validateRegistration(reg models.Registration) error {
	email := strings.TrimSpace(reg.Email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperr.ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: email is invalid", apperr.ErrValidation)
	}
	if reg.Password == "" {
		return fmt.Errorf("%w: password is required", apperr.ErrValidation)
	}
	return nil
}
