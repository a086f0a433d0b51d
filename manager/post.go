package manager

import (
	"context"
	"errors"

	"hackdash/dao/model"
	"hackdash/util"

	"gorm.io/gorm"
)

type Posts struct {
	db *gorm.DB
}

func NewPosts(db *gorm.DB) *Posts {
	return &Posts{db: db}
}

type PostInput struct {
	ID      uint
	Title   string
	Slug    string
	Content string
}

// UpsertPost updates the post with in.ID when it exists and creates a new
// one otherwise.
func (m *Posts) UpsertPost(ctx context.Context, p Principal, in PostInput) (*model.Post, error) {
	if _, err := requireAdmin(p); err != nil {
		return nil, err
	}
	slug := util.SanitizeSlug(in.Slug, model.MaxTitleLength)
	if slug == "" {
		return nil, ErrNoSlug
	}
	post := model.Post{
		Title:   util.OrDefault(in.Title, model.MaxTitleLength, model.DefaultPost),
		Slug:    slug,
		Content: in.Content,
	}

	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		q := tx.Model(&model.Post{}).Where("slug = ?", slug)
		if in.ID != 0 {
			q = q.Where("id <> ?", in.ID)
		}
		if err := q.Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrSlugTaken
		}

		if in.ID != 0 {
			var existing model.Post
			err := tx.Take(&existing, in.ID).Error
			if err == nil {
				existing.Title, existing.Slug, existing.Content = post.Title, post.Slug, post.Content
				post = existing
				return tx.Save(&post).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return tx.Create(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (m *Posts) DeletePost(ctx context.Context, p Principal, id uint) error {
	if _, err := requireAdmin(p); err != nil {
		return err
	}
	if id == 0 {
		return ErrNoPost
	}
	res := m.db.WithContext(ctx).Delete(&model.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetPost looks a post up by its slug.
func (m *Posts) GetPost(ctx context.Context, p Principal, slug string) (*model.Post, error) {
	if _, err := requireUser(p); err != nil {
		return nil, err
	}
	if slug == "" {
		return nil, ErrNotFound
	}
	var post model.Post
	err := m.db.WithContext(ctx).Where(&model.Post{Slug: slug}).Take(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (m *Posts) ListPosts(ctx context.Context, p Principal) ([]model.Post, error) {
	if _, err := requireUser(p); err != nil {
		return nil, err
	}
	posts := []model.Post{}
	err := m.db.WithContext(ctx).Select("id", "created_at", "updated_at", "title", "slug").
		Order("id").Find(&posts).Error
	return posts, err
}
