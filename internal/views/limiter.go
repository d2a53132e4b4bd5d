// Package views deduplicates and rate-limits event view registrations.
package views

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Qoziwe/EventummMobile/internal/apperr"
	"github.com/Qoziwe/EventummMobile/internal/models"
)

// Rejection reasons. ReasonCounted marks an accepted registration.
const (
	ReasonCounted     = "counted"
	ReasonBot         = "bot"
	ReasonRateLimited = "rate_limited"
	ReasonDuplicate   = "duplicate"
)

const (
	rateWindow = time.Minute
	rateLimit  = 10 // max accepted registrations per IP per window
	authWindow = 24 * time.Hour
	anonWindow = time.Hour
)

var botSignatures = []string{"bot", "crawler"}

// Result always carries the view count as it stands after this call.
type Result struct {
	Views   int64
	Counted bool
	Reason  string
}

type Limiter struct {
	db *gorm.DB
}

func NewLimiter(db *gorm.DB) *Limiter {
	return &Limiter{db: db}
}

// Register evaluates the policy in order: bot signature, per-IP throttle,
// dedup window (24h per user when authenticated, 1h per IP otherwise).
// An accepted call inserts exactly one view row and increments the event
// counter in the same transaction; a rejected call writes nothing.
func (l *Limiter) Register(ctx context.Context, eventID string, userID *string, ip, userAgent string) (Result, error) {
	db := l.db.WithContext(ctx)

	var event models.Event
	err := db.First(&event, "id = ?", eventID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Result{}, apperr.ErrNotFound
	}
	if err != nil {
		return Result{}, err
	}

	ua := strings.ToLower(userAgent)
	for _, sig := range botSignatures {
		if strings.Contains(ua, sig) {
			return Result{Views: event.Views, Reason: ReasonBot}, nil
		}
	}

	now := time.Now().UTC()

	var recent int64
	err = db.Model(&models.EventView{}).
		Where("ip_address = ? AND viewed_at >= ?", ip, now.Add(-rateWindow)).
		Count(&recent).Error
	if err != nil {
		return Result{}, err
	}
	if recent >= rateLimit {
		return Result{Views: event.Views, Reason: ReasonRateLimited}, nil
	}

	var dup int64
	if userID != nil {
		err = db.Model(&models.EventView{}).
			Where("event_id = ? AND user_id = ? AND viewed_at >= ?", eventID, *userID, now.Add(-authWindow)).
			Count(&dup).Error
	} else {
		err = db.Model(&models.EventView{}).
			Where("event_id = ? AND user_id IS NULL AND ip_address = ? AND viewed_at >= ?", eventID, ip, now.Add(-anonWindow)).
			Count(&dup).Error
	}
	if err != nil {
		return Result{}, err
	}
	if dup > 0 {
		return Result{Views: event.Views, Reason: ReasonDuplicate}, nil
	}

	res := Result{}
	err = db.Transaction(func(tx *gorm.DB) error {
		view := models.EventView{
			EventID:   eventID,
			UserID:    userID,
			IPAddress: ip,
			UserAgent: userAgent,
			ViewedAt:  now,
		}
		// A concurrent duplicate for the same (event, user) hits the
		// partial unique index; treat it as a dedup outcome, not a failure.
		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			res = Result{Views: event.Views, Reason: ReasonDuplicate}
			return nil
		}

		err := tx.Model(&models.Event{}).Where("id = ?", eventID).
			UpdateColumn("views", gorm.Expr("views + 1")).Error
		if err != nil {
			return err
		}

		var after models.Event
		if err := tx.Select("views").First(&after, "id = ?", eventID).Error; err != nil {
			return err
		}
		res = Result{Views: after.Views, Counted: true, Reason: ReasonCounted}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
