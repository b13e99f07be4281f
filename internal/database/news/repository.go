// Package news provides database operations for library news posts.
package news

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Repository handles news post database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new news repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePost creates an unpublished draft.
func (r *Repository) CreatePost(post *entities.NewsPost) error {
	post.Published = false
	post.PublishedAt = nil
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post by ID.
func (r *Repository) GetPostByID(id uint) (*entities.NewsPost, error) {
	var post entities.NewsPost
	err := r.db.First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// ListPosts retrieves posts, newest first. When publishedOnly is set, drafts
// are excluded (member/public view).
func (r *Repository) ListPosts(publishedOnly bool) ([]entities.NewsPost, error) {
	query := r.db.Order("created_at DESC")
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var posts []entities.NewsPost
	err := query.Find(&posts).Error
	return posts, err
}

// UpdatePost saves title and body of an existing post.
func (r *Repository) UpdatePost(id uint, title, body string) (*entities.NewsPost, error) {
	post, err := r.GetPostByID(id)
	if err != nil {
		return nil, err
	}
	post.Title = title
	post.Body = body
	if err := r.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// PublishPost marks a draft as published. Publishing twice is a no-op.
func (r *Repository) PublishPost(id uint) (*entities.NewsPost, error) {
	post, err := r.GetPostByID(id)
	if err != nil {
		return nil, err
	}
	if !post.Published {
		now := time.Now()
		post.Published = true
		post.PublishedAt = &now
		if err := r.db.Save(post).Error; err != nil {
			return nil, err
		}
	}
	return post, nil
}

// DeletePost soft-deletes a post.
func (r *Repository) DeletePost(id uint) error {
	result := r.db.Delete(&entities.NewsPost{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return entities.ErrNotFound
	}
	return nil
}
