package persistent

import (
	"context"
	"errors"
	"time"

	"postpilot/pkg/models"

	"gorm.io/gorm"
)

// ErrClaimLost means a post the worker believed it had claimed is no longer
// in the publishing state, so the outcome could not be recorded. Silently
// swallowing this would leave the post scheduled and publish it again.
var ErrClaimLost = errors.New("post is no longer claimed by this worker")

// PostRepository is the scheduler's view of the post store. Every state
// transition goes through conditional updates so that concurrent scheduler
// workers (or overlapping poll cycles) can never double-publish a post.
type PostRepository interface {
	FindDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error)
	CountMissingSchedule(ctx context.Context) (int64, error)
	Claim(ctx context.Context, postID string, now time.Time) (bool, error)
	MarkPublished(ctx context.Context, postID string, publishedAt time.Time) error
	MarkFailed(ctx context.Context, postID, reason string) error
	ReleaseForRetry(ctx context.Context, postID string) error
	ReleaseStuck(ctx context.Context, claimedBefore time.Time) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// FindDue returns scheduled posts whose due time has arrived, earliest first.
// Posts violating the scheduled-implies-due-time invariant are excluded; they
// are surfaced separately via CountMissingSchedule.
func (r *postRepository) FindDue(ctx context.Context, now time.Time, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?", models.StatusScheduled, now).
		Order("scheduled_at ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// CountMissingSchedule counts scheduled posts lacking a due time. These are
// data-integrity faults: never picked up, never retried automatically.
func (r *postRepository) CountMissingSchedule(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ? AND scheduled_at IS NULL", models.StatusScheduled).
		Count(&count).Error
	return count, err
}

// Claim atomically moves a due post into the publishing state. Exactly one
// claimant succeeds; everyone else sees zero rows affected.
func (r *postRepository) Claim(ctx context.Context, postID string, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ? AND scheduled_at IS NOT NULL AND scheduled_at <= ?",
			postID, models.StatusScheduled, now).
		Updates(map[string]interface{}{
			"status":     models.StatusPublishing,
			"claimed_at": now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// MarkPublished records a successful publish. Conditional on the publishing
// state like Claim: zero rows affected is surfaced as ErrClaimLost, not
// swallowed, because it means the claim was overwritten mid-publish.
func (r *postRepository) MarkPublished(ctx context.Context, postID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.StatusPublishing).
		Updates(map[string]interface{}{
			"status":         models.StatusPublished,
			"published_at":   publishedAt,
			"claimed_at":     nil,
			"failure_reason": "",
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClaimLost
	}
	return nil
}

func (r *postRepository) MarkFailed(ctx context.Context, postID, reason string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.StatusPublishing).
		Updates(map[string]interface{}{
			"status":         models.StatusFailed,
			"claimed_at":     nil,
			"failure_reason": reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClaimLost
	}
	return nil
}

// ReleaseForRetry puts a claimed post back into the scheduled state after a
// transient failure, counting the attempt. scheduled_at is left untouched so
// the post is due again on the next poll cycle.
func (r *postRepository) ReleaseForRetry(ctx context.Context, postID string) error {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND status = ?", postID, models.StatusPublishing).
		Updates(map[string]interface{}{
			"status":     models.StatusScheduled,
			"claimed_at": nil,
			"attempts":   gorm.Expr("attempts + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrClaimLost
	}
	return nil
}

// ReleaseStuck reverts posts that have sat in the publishing state past the
// claim grace window, so a crashed worker cannot starve a post forever.
func (r *postRepository) ReleaseStuck(ctx context.Context, claimedBefore time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("status = ? AND claimed_at < ?", models.StatusPublishing, claimedBefore).
		Updates(map[string]interface{}{
			"status":     models.StatusScheduled,
			"claimed_at": nil,
		})
	return result.RowsAffected, result.Error
}
