package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"passin/internal/domain"
)

type userService struct {
	userRepo       domain.UserRepository
	tx             domain.Transactor
	hasher         domain.PasswordHasher
	storage        domain.ObjectStorage
	contextTimeout time.Duration
	now            func() time.Time
}

// NewUserService creates a UserService. storage receives profile images.
func NewUserService(
	userRepo domain.UserRepository,
	tx domain.Transactor,
	hasher domain.PasswordHasher,
	storage domain.ObjectStorage,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		tx:             tx,
		hasher:         hasher,
		storage:        storage,
		contextTimeout: timeout,
		now:            time.Now,
	}
}

func (s *userService) Create(ctx context.Context, in *domain.CreateUserInput) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	now := s.now()
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)
	email := normalizeEmail(in.Email)
	for _, err := range []error{
		required("firstName", firstName),
		required("lastName", lastName),
		validateEmail(email),
		validatePassword(in.Password),
		validateBirthDate(in.BirthDate, now),
		validateImage(in.Image),
	} {
		if err != nil {
			return nil, err
		}
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrDuplicateEmail
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	user := domain.NewUser(firstName, lastName, email, in.BirthDate, now, now)
	if err := s.setPassword(user, in.Password); err != nil {
		return nil, err
	}
	if in.Image != nil {
		url, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		user.ImageURL = &url
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, params domain.PaginationParams) ([]*domain.User, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	users, total, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, id, callerID string, in *domain.UpdateUserInput) (*domain.User, error) {
	if id != callerID {
		return nil, domain.ErrNotSelf
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	now := s.now()
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
		if err := required("firstName", user.FirstName); err != nil {
			return nil, err
		}
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
		if err := required("lastName", user.LastName); err != nil {
			return nil, err
		}
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
				return nil, domain.ErrDuplicateEmail
			} else if !errors.Is(err, domain.ErrUserNotFound) {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
		}
		user.Email = email
	}
	if in.BirthDate != nil {
		if err := validateBirthDate(*in.BirthDate, now); err != nil {
			return nil, err
		}
		user.BirthDate = *in.BirthDate
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		if err := s.setPassword(user, *in.Password); err != nil {
			return nil, err
		}
	}
	if in.Image != nil {
		if err := validateImage(in.Image); err != nil {
			return nil, err
		}
		url, err := s.uploadImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		user.ImageURL = &url
	}
	user.UpdatedAt = now

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) || errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes the user's attendance records and then the user, in one transaction.
// Users that still own events must delete them first.
func (s *userService) Delete(ctx context.Context, id, callerID string) error {
	if id != callerID {
		return domain.ErrNotSelf
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return s.tx.WithinTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Users.GetByID(ctx, id); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return err
			}
			return fmt.Errorf("failed to get user: %w", err)
		}
		owned, err := repos.Events.CountByCreator(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to count owned events: %w", err)
		}
		if owned > 0 {
			return domain.ErrUserOwnsEvents
		}
		if _, err := repos.CheckIns.DeleteByUser(ctx, id); err != nil {
			return fmt.Errorf("failed to delete check-ins: %w", err)
		}
		if err := repos.Users.Delete(ctx, id); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return err
			}
			return fmt.Errorf("failed to delete user: %w", err)
		}
		return nil
	})
}

func (s *userService) setPassword(user *domain.User, password string) error {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Salt = salt
	user.PasswordHash = hash
	return nil
}

func (s *userService) uploadImage(ctx context.Context, img *domain.ImageUpload) (string, error) {
	key := "users/" + uuid.NewString() + strings.ToLower(filepath.Ext(img.Filename))
	url, err := s.storage.Put(ctx, key, img.ContentType, img.Body)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return url, nil
}
