// Package notification stores in-app notifications and optionally forwards
// them to an external webhook.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lms/models"
	"lms/services/learning"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Dispatcher implements learning.Notifier
type Dispatcher struct {
	db         *gorm.DB
	client     *resty.Client
	webhookURL string
}

// NewDispatcher stores notifications in db. When webhookURL is set every
// notification is also POSTed there as JSON.
func NewDispatcher(db *gorm.DB, webhookURL string) *Dispatcher {
	client := resty.New().
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(200*time.Millisecond).
		SetHeader("Content-Type", "application/json")
	return &Dispatcher{db: db, client: client, webhookURL: webhookURL}
}

// CreateNotification persists the notification, then forwards it
func (d *Dispatcher) CreateNotification(ctx context.Context, n learning.NotificationPayload) error {
	var metadata datatypes.JSON
	if len(n.Metadata) > 0 {
		raw, err := json.Marshal(n.Metadata)
		if err != nil {
			return fmt.Errorf("encode notification metadata: %w", err)
		}
		metadata = datatypes.JSON(raw)
	}

	row := models.Notification{
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		ActionURL: n.ActionURL,
		Metadata:  metadata,
	}
	if err := d.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("save notification: %w", err)
	}

	if d.webhookURL == "" {
		return nil
	}
	resp, err := d.client.R().
		SetContext(ctx).
		SetBody(map[string]any{"id": row.ID, "notification": n}).
		Post(d.webhookURL)
	if err != nil {
		return fmt.Errorf("forward notification: %w", err)
	}
	if resp.IsError() {
		log.Printf("[NOTIFICATION] webhook rejected notification %d: %s", row.ID, resp.Status())
		return fmt.Errorf("forward notification: webhook returned %s", resp.Status())
	}
	return nil
}

// List returns the user's notifications, newest first
func (d *Dispatcher) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}
	q := d.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var out []models.Notification
	if err := q.Order("created_at desc, id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags one of the user's notifications as read
func (d *Dispatcher) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := d.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true)
	if res.Error != nil {
		return fmt.Errorf("mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
