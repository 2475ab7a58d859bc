// Package rewards keeps the reward points ledger.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"lms/models"
	"time"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// Ledger credits points to users and records every credit
type Ledger struct {
	db    *gorm.DB
	clock func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, clock: time.Now}
}

// Summary is a user's point standing
type Summary struct {
	Balance    int `json:"balance"`
	ThisWeek   int `json:"this_week"`
	ThisMonth  int `json:"this_month"`
	TotalAward int `json:"total_awards"`
}

// AwardPoints adds amount to the user's balance. Non-positive amounts are ignored.
func (l *Ledger) AwardPoints(ctx context.Context, userID uint, amount int, reason string) error {
	if amount <= 0 {
		return nil
	}
	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND is_deleted = ?", userID, false).
			Update("points", gorm.Expr("points + ?", amount))
		if res.Error != nil {
			return fmt.Errorf("credit points: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		var user models.User
		if err := tx.Select("id", "points").First(&user, userID).Error; err != nil {
			return fmt.Errorf("reload balance: %w", err)
		}

		entry := models.PointTransaction{
			UserID:          userID,
			Amount:          amount,
			BalanceBefore:   user.Points - amount,
			BalanceAfter:    user.Points,
			Reason:          reason,
			TransactionDate: l.clock(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("record point transaction: %w", err)
		}
		return nil
	})
}

// Summary returns the balance and the points earned this week and month
func (l *Ledger) Summary(ctx context.Context, userID uint) (*Summary, error) {
	db := l.db.WithContext(ctx)
	var user models.User
	if err := db.Select("id", "points").Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	today := now.With(l.clock())
	out := &Summary{Balance: user.Points}
	for _, window := range []struct {
		from time.Time
		dst  *int
	}{
		{today.BeginningOfWeek(), &out.ThisWeek},
		{today.BeginningOfMonth(), &out.ThisMonth},
	} {
		var sum int
		if err := db.Model(&models.PointTransaction{}).
			Select("COALESCE(SUM(amount), 0)").
			Where("user_id = ? AND transaction_date >= ?", userID, window.from).
			Scan(&sum).Error; err != nil {
			return nil, fmt.Errorf("sum points: %w", err)
		}
		*window.dst = sum
	}

	var count int64
	if err := db.Model(&models.PointTransaction{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count point transactions: %w", err)
	}
	out.TotalAward = int(count)
	return out, nil
}

// History returns a page of the user's ledger, newest first
func (l *Ledger) History(ctx context.Context, userID uint, page, limit int) ([]models.PointTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	db := l.db.WithContext(ctx).Model(&models.PointTransaction{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count point transactions: %w", err)
	}
	var entries []models.PointTransaction
	if err := db.Order("transaction_date desc, id desc").Offset((page - 1) * limit).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("list point transactions: %w", err)
	}
	return entries, total, nil
}
