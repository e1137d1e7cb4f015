package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/rpupo63/wholspace-backend/database"
	"github.com/rpupo63/wholspace-backend/errs"
	"github.com/rpupo63/wholspace-backend/models"
)

const (
	MaxAvatarSize       int64 = 5 << 20
	MaxProjectImageSize int64 = 10 << 20
	// MaxScreenshots is the highest screenshot slot. Slot 0 is the thumbnail.
	MaxScreenshots = 10
)

// Upload is an image received from a client
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// extension validates the upload and returns the file extension its key is stored under
func (u Upload) extension(maxSize int64) (string, error) {
	if !strings.HasPrefix(u.ContentType, "image/") {
		return "", errs.NewUnsupportedMediaTypeError(u.ContentType, "image/*")
	}
	if u.Size <= 0 {
		return "", errs.NewBadRequestErrorWithField("empty upload", "file", "The uploaded image is empty")
	}
	if u.Size > maxSize {
		return "", errs.NewMaxBodySizeExceededError(maxSize)
	}

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Filename), "."))
	if ext == "" {
		ext, _, _ = strings.Cut(strings.TrimPrefix(u.ContentType, "image/"), "+")
	}
	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
	if ext == "" {
		ext = "img"
	}
	return ext, nil
}

// UploadAvatar stores a new avatar for uid and points the profile's photoURL at it
func (s *Service) UploadAvatar(ctx context.Context, uid string, up Upload) (*models.User, error) {
	ext, err := up.extension(MaxAvatarSize)
	if err != nil {
		return nil, err
	}
	if _, err := s.GetUser(ctx, uid); err != nil {
		return nil, err
	}

	url, err := s.blob.Put(ctx, models.AvatarKey(uid, ext), up.ContentType, up.Body, up.Size)
	if err != nil {
		return nil, blobError("upload avatar", err)
	}
	if err := s.store.Users().Update(ctx, uid, models.UserPatch{PhotoURL: &url}); err != nil {
		return nil, wrap("update", "user", err)
	}
	return s.GetUser(ctx, uid)
}

// UploadProjectImage stores an image of a project owned by ownerID. Slot 0 replaces the
// thumbnail and slot n replaces screenshot n.
func (s *Service) UploadProjectImage(ctx context.Context, ownerID, projectID string, slot int, up Upload) (*models.Project, error) {
	if slot < 0 || slot > MaxScreenshots {
		return nil, errs.NewBadRequestErrorWithField("invalid image slot", "slot",
			fmt.Sprintf("Slots run from 0 (thumbnail) to %d", MaxScreenshots))
	}
	ext, err := up.extension(MaxProjectImageSize)
	if err != nil {
		return nil, err
	}

	project, err := s.store.Projects().FindByID(ctx, projectID)
	if err != nil {
		return nil, wrap("find", "project", err)
	}
	if project == nil || project.UserID != ownerID {
		return nil, errs.NewUnauthorized("Only the owner can add images to this project")
	}

	url, err := s.blob.Put(ctx, models.ProjectImageKey(ownerID, projectID, slot, ext), up.ContentType, up.Body, up.Size)
	if err != nil {
		return nil, blobError("upload project image", err)
	}

	err = s.store.Transaction(ctx, func(tx database.Store) error {
		current, err := tx.Projects().FindForUpdate(ctx, projectID)
		if err != nil {
			return err
		}
		if current == nil {
			return errs.NewNotFound("project")
		}

		var patch models.ProjectPatch
		if slot == 0 {
			patch.ThumbnailURL = &url
		} else {
			screenshots := append([]string(nil), current.Screenshots...)
			for len(screenshots) < slot {
				screenshots = append(screenshots, "")
			}
			screenshots[slot-1] = url
			patch.Screenshots = &screenshots
		}
		return tx.Projects().Update(ctx, projectID, patch)
	})
	if errs.IsNotFound(err) {
		// deleted while uploading; the stored image belongs to no project
		s.enqueueOrphanCleanup(ctx, ownerID, projectID)
	}
	if err != nil {
		return nil, wrap("update", "project", err)
	}
	return s.GetProject(ctx, projectID)
}

func (s *Service) enqueueOrphanCleanup(ctx context.Context, ownerID, projectID string) {
	task := &models.MediaCleanupTask{
		ProjectID:     projectID,
		Prefix:        models.ProjectMediaPrefix(ownerID, projectID),
		NextAttemptAt: s.now().UTC(),
	}
	if err := s.store.MediaCleanups().Enqueue(ctx, task); err != nil {
		s.logger.Error().Err(err).Str("projectId", projectID).Msg("failed to queue orphaned media cleanup")
	}
}

// blobError reports blob store failures as an unavailable store
func blobError(operation string, err error) error {
	var apiErr *errs.ApiErr
	if errors.As(err, &apiErr) {
		return err
	}
	return errs.NewStoreUnavailable(operation, err)
}
