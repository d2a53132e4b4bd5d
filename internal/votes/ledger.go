// Package votes keeps the per-post vote ledger and the denormalized
// counters consistent. Every mutation goes through one transaction with
// the post row locked, so two racing casts on the same post serialize.
package votes

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/models"
)

// Result is the post-commit state: new counters plus the full voter map,
// read inside the same transaction that applied the vote.
type Result struct {
	Upvotes    int               `json:"upvotes"`
	Downvotes  int               `json:"downvotes"`
	VotedUsers map[string]string `json:"votedUsers"`
}

type Ledger struct {
	db *gorm.DB
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// Cast applies one vote by userID on postID. State machine per (user, post):
//
//	no vote   --cast(t)--> t          (create row, counter+1)
//	up        --cast(up)--> no vote   (delete row, up-1)
//	down      --cast(down)--> no vote (delete row, down-1)
//	up        --cast(down)--> down    (update row, up-1 down+1)
//	down      --cast(up)--> up        (update row, down-1 up+1)
func (l *Ledger) Cast(ctx context.Context, postID, userID, voteType string) (Result, error) {
	if voteType != models.VoteUp && voteType != models.VoteDown {
		return Result{}, apperr.ErrValidation
	}

	var res Result
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&post, "id = ?", postID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return err
		}

		var existing models.PostVote
		err = tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error

		switch {
		case err == nil && existing.VoteType == voteType:
			// Same vote again - toggle off
			if voteType == models.VoteUp {
				post.Upvotes--
			} else {
				post.Downvotes--
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}

		case err == nil:
			// Opposite vote - switch
			if existing.VoteType == models.VoteUp {
				post.Upvotes--
				post.Downvotes++
			} else {
				post.Downvotes--
				post.Upvotes++
			}
			existing.VoteType = voteType
			if err := tx.Save(&existing).Error; err != nil {
				return err
			}

		case errors.Is(err, gorm.ErrRecordNotFound):
			// Fresh cast
			if voteType == models.VoteUp {
				post.Upvotes++
			} else {
				post.Downvotes++
			}
			vote := models.PostVote{PostID: postID, UserID: userID, VoteType: voteType}
			if err := tx.Create(&vote).Error; err != nil {
				return err
			}

		default:
			return err
		}

		err = tx.Model(&models.Post{}).Where("id = ?", postID).
			Updates(map[string]interface{}{
				"upvotes":   post.Upvotes,
				"downvotes": post.Downvotes,
			}).Error
		if err != nil {
			return err
		}

		var rows []models.PostVote
		if err := tx.Where("post_id = ?", postID).Find(&rows).Error; err != nil {
			return err
		}
		voted := make(map[string]string, len(rows))
		for _, r := range rows {
			voted[r.UserID] = r.VoteType
		}

		res = Result{
			Upvotes:    post.Upvotes,
			Downvotes:  post.Downvotes,
			VotedUsers: voted,
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
