package persistent

import (
	"errors"

	"postpilot/services/post/internal/entity"
	"postpilot/services/post/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrStatusConflict means the post's status changed between the caller's read
// and its write. The scheduler claims posts with conditional updates, and the
// authoring side must lose that race, never overwrite it.
var ErrStatusConflict = errors.New("post status changed concurrently")

type PostRepository interface {
	Create(post *entity.Post) error
	GetByID(id string) (*entity.Post, error)
	GetByUserID(userID string, limit, offset int, status entity.PostStatus) ([]*entity.Post, error)
	Update(post *entity.Post, fromStatus entity.PostStatus) error
	Delete(id string, fromStatus entity.PostStatus) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.Create(postModel).Error; err != nil {
		return err
	}

	*post = *ToPostEntity(postModel)
	return nil
}

func (r *postRepository) GetByID(id string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.Where("id = ?", id).First(&postModel).Error; err != nil {
		return nil, err
	}
	return ToPostEntity(&postModel), nil
}

func (r *postRepository) GetByUserID(userID string, limit, offset int, status entity.PostStatus) ([]*entity.Post, error) {
	var postModels []model.PostModel
	query := r.db.Where("user_id = ?", userID).Order("created_at DESC")

	if status != "" {
		query = query.Where("status = ?", string(status))
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	if err := query.Find(&postModels).Error; err != nil {
		return nil, err
	}

	posts := make([]*entity.Post, len(postModels))
	for i := range postModels {
		posts[i] = ToPostEntity(&postModels[i])
	}
	return posts, nil
}

// Update writes the post only if its stored status still matches the status
// the caller read. Zero rows affected means a scheduler worker claimed the
// post (or another writer moved it) in between; a blind save here would
// revert a publishing claim and get the post published twice.
func (r *postRepository) Update(post *entity.Post, fromStatus entity.PostStatus) error {
	postModel := ToPostModel(post)
	// claimed_at belongs to the scheduler's claim protocol and is never
	// written from the authoring side
	result := r.db.Model(&model.PostModel{}).
		Where("id = ? AND status = ?", postModel.ID, string(fromStatus)).
		Select("*").Omit("id", "created_at", "claimed_at").
		Updates(postModel)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func (r *postRepository) Delete(id string, fromStatus entity.PostStatus) error {
	result := r.db.Where("id = ? AND status = ?", id, string(fromStatus)).
		Delete(&model.PostModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
