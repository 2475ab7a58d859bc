package models

import (
	"time"

	"gorm.io/gorm"
)

// PointTransaction is one entry of a user's reward points ledger
type PointTransaction struct {
	gorm.Model
	UserID          uint      `gorm:"not null;index" json:"userId"`
	Amount          int       `gorm:"not null" json:"amount"`
	BalanceBefore   int       `gorm:"not null" json:"balanceBefore"`
	BalanceAfter    int       `gorm:"not null" json:"balanceAfter"`
	Reason          string    `gorm:"type:text" json:"reason"`
	TransactionDate time.Time `gorm:"not null;index" json:"transactionDate"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}
