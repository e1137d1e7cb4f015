package services

import (
	"context"
	"strings"

	"github.com/rpupo63/wholspace-backend/auth"
	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
	"gorm.io/datatypes"
)

// SyncUser creates the profile of a first-time identity with zeroed counters, or stamps the
// login of a returning one. Unverified email and password accounts are rejected.
func (s *Service) SyncUser(ctx context.Context, id auth.Identity) (*models.User, error) {
	if id.UID == "" {
		return nil, errs.NewInvalidTokenError(nil)
	}
	if id.SignInProvider == auth.PasswordProvider && !id.EmailVerified {
		return nil, errs.NewEmailNotVerifiedError(id.Email)
	}

	created := false
	err := s.store.Transaction(ctx, func(tx database.Store) error {
		existing, err := tx.Users().FindByID(ctx, id.UID)
		if err != nil {
			return err
		}
		if existing != nil {
			return tx.Users().TouchLastLogin(ctx, id.UID)
		}

		now := s.now().UTC()
		created = true
		return tx.Users().Create(ctx, &models.User{
			UID:         id.UID,
			Email:       id.Email,
			DisplayName: id.DisplayName,
			PhotoURL:    id.PhotoURL,
			Tools:       datatypes.JSONSlice[string]{},
			SocialLinks: datatypes.NewJSONType(models.SocialLinks{}),
			LastLoginAt: &now,
		})
	})
	if err != nil {
		return nil, wrap("sync", "user", err)
	}

	if created {
		s.logger.Info().Str("uid", id.UID).Str("provider", id.SignInProvider).Msg("created user profile")
	}
	return s.GetUser(ctx, id.UID)
}

// GetUser returns the profile of uid
func (s *Service) GetUser(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.store.Users().FindByID(ctx, uid)
	if err != nil {
		return nil, wrap("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	return user, nil
}

// GetUserByHandle looks a profile up by its case-insensitive handle
func (s *Service) GetUserByHandle(ctx context.Context, handle string) (*models.User, error) {
	user, err := s.store.Users().FindByHandle(ctx, models.NormalizeHandle(handle))
	if err != nil {
		return nil, wrap("find", "user", err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user")
	}
	return user, nil
}

// IsHandleAvailable reports whether handle is well formed and neither reserved nor shown by a profile
func (s *Service) IsHandleAvailable(ctx context.Context, handle string) (bool, error) {
	handle = models.NormalizeHandle(handle)
	if !models.ValidHandle(handle) {
		return false, nil
	}

	reservation, err := s.store.Handles().Find(ctx, handle)
	if err != nil {
		return false, wrap("find", "handle", err)
	}
	if reservation != nil {
		return false, nil
	}

	user, err := s.store.Users().FindByHandle(ctx, handle)
	if err != nil {
		return false, wrap("find", "user", err)
	}
	return user == nil, nil
}

// UpdateProfile merges patch into the profile of uid. A changed handle is reserved in the same
// transaction as the profile write and the previous handle is released.
func (s *Service) UpdateProfile(ctx context.Context, uid string, patch models.UserPatch) (*models.User, error) {
	return s.updateProfile(ctx, uid, patch, false)
}

// CompleteProfile is UpdateProfile for the end of onboarding. The resulting profile must carry
// a display name and a handle.
func (s *Service) CompleteProfile(ctx context.Context, uid string, patch models.UserPatch) (*models.User, error) {
	return s.updateProfile(ctx, uid, patch, true)
}

func (s *Service) updateProfile(ctx context.Context, uid string, patch models.UserPatch, complete bool) (*models.User, error) {
	patch.IsFeatured = nil
	patch.IsProfileComplete = nil

	if patch.DisplayName != nil {
		name := strings.TrimSpace(*patch.DisplayName)
		patch.DisplayName = &name
	}
	if patch.Handle != nil {
		handle := models.NormalizeHandle(*patch.Handle)
		if handle != "" && !models.ValidHandle(handle) {
			return nil, errs.NewBadRequestErrorWithField("invalid handle", "handle",
				"Handles are 3 to 30 characters of lowercase letters, digits and underscores")
		}
		patch.Handle = &handle
	}

	err := s.store.Transaction(ctx, func(tx database.Store) error {
		user, err := tx.Users().FindByID(ctx, uid)
		if err != nil {
			return err
		}
		if user == nil {
			return errs.NewNotFound("user")
		}

		if patch.Handle != nil && *patch.Handle != user.Handle {
			if err := s.moveHandle(ctx, tx, uid, user.Handle, *patch.Handle); err != nil {
				return err
			}
		}

		merged := *user
		patch.Apply(&merged)
		hasIdentity := merged.DisplayName != "" && merged.Handle != ""
		if complete && !hasIdentity {
			return errs.NewBadRequestErrorWithField("incomplete profile", "handle",
				"A display name and a handle are required to complete a profile")
		}
		patch.IsProfileComplete = &hasIdentity

		return tx.Users().Update(ctx, uid, patch)
	})
	if err != nil {
		return nil, wrap("update", "user", err)
	}
	return s.GetUser(ctx, uid)
}

// moveHandle reserves next for uid and releases previous
func (s *Service) moveHandle(ctx context.Context, tx database.Store, uid, previous, next string) error {
	if next != "" {
		reserved, err := tx.Handles().Reserve(ctx, &models.HandleReservation{Handle: next, UID: uid})
		if err != nil {
			return err
		}
		if !reserved {
			holder, err := tx.Handles().Find(ctx, next)
			if err != nil {
				return err
			}
			if holder == nil || holder.UID != uid {
				return errs.NewConflict("handle", "Handle @"+next+" is already taken")
			}
		}

		shownBy, err := tx.Users().FindByHandle(ctx, next)
		if err != nil {
			return err
		}
		if shownBy != nil && shownBy.UID != uid {
			return errs.NewConflict("handle", "Handle @"+next+" is already taken")
		}
	}

	if previous != "" {
		return tx.Handles().Release(ctx, previous, uid)
	}
	return nil
}
