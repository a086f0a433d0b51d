package manager

import (
	"context"
	"errors"
	"io"

	"hackdash/dao/model"
	"hackdash/storage"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const imagePath = "/api/res/images/"

// imageRow abstracts the two image tables, which differ only by type.
func imageRow(kind model.ImageKind, id, url string, projectID uint) (any, error) {
	switch kind {
	case model.ImageLogo:
		return &model.LogoImage{ID: id, URL: url, ProjectID: projectID}, nil
	case model.ImageBanner:
		return &model.BannerImage{ID: id, URL: url, ProjectID: projectID}, nil
	default:
		return nil, ErrNotFound
	}
}

func currentImage(tx *gorm.DB, kind model.ImageKind, projectID uint) (string, error) {
	row, err := imageRow(kind, "", "", 0)
	if err != nil {
		return "", err
	}
	if err := tx.Where("project_id = ?", projectID).Limit(1).Find(row).Error; err != nil {
		return "", err
	}
	switch r := row.(type) {
	case *model.LogoImage:
		return r.ID, nil
	case *model.BannerImage:
		return r.ID, nil
	}
	return "", nil
}

// UploadImage stores r as the caller's project logo or banner, replacing
// any previous one. At most maxUpload bytes are accepted.
func (m *Teams) UploadImage(ctx context.Context, p Principal, kind model.ImageKind, r io.Reader) (string, error) {
	_, projectID, err := m.requireMember(p)
	if err != nil {
		return "", err
	}
	if err := m.requireEditing(ctx); err != nil {
		return "", err
	}

	id := uuid.NewString()
	url := m.baseURL + imagePath + id
	row, err := imageRow(kind, id, url, projectID)
	if err != nil {
		return "", err
	}
	if _, err := m.images.Save(ctx, id, r, m.maxUpload); err != nil {
		return "", err
	}

	var previous string
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if previous, err = currentImage(tx, kind, projectID); err != nil {
			return err
		}
		if previous != "" {
			old, _ := imageRow(kind, "", "", 0)
			if err := tx.Where("project_id = ?", projectID).Delete(old).Error; err != nil {
				return err
			}
		}
		return tx.Create(row).Error
	})
	if err != nil {
		m.removeFiles(ctx, id)
		return "", err
	}
	if previous != "" {
		m.removeFiles(ctx, previous)
	}
	return url, nil
}

// DeleteImage removes the caller's project logo or banner.
func (m *Teams) DeleteImage(ctx context.Context, p Principal, kind model.ImageKind) error {
	_, projectID, err := m.requireMember(p)
	if err != nil {
		return err
	}
	if err := m.requireEditing(ctx); err != nil {
		return err
	}

	var previous string
	err = m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if previous, err = currentImage(tx, kind, projectID); err != nil {
			return err
		}
		if previous == "" {
			return ErrNoImage
		}
		old, _ := imageRow(kind, "", "", 0)
		return tx.Where("project_id = ?", projectID).Delete(old).Error
	})
	if err != nil {
		return err
	}
	m.removeFiles(ctx, previous)
	return nil
}

// OpenImage returns the stored bytes of an image and their length.
func (m *Teams) OpenImage(ctx context.Context, id string) (io.ReadCloser, int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, 0, ErrNotFound
	}
	rc, size, err := m.images.Open(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	return rc, size, err
}
