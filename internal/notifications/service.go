package notifications

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"tenderdesk/tender-portal-backend/internal/notifications/websocket"
	"tenderdesk/tender-portal-backend/pkg/apperrors"
)

// Service stores notifications and pushes them to connected clients
type Service interface {
	Notify(ctx context.Context, n *Notification) error
	NotifyAll(ctx context.Context, ns []*Notification) error
	List(ctx context.Context, userID string, limit int64) ([]*Notification, int64, error)
	MarkRead(ctx context.Context, userID, notificationID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type service struct {
	repo   Repository
	hub    *websocket.Hub
	logger *zap.Logger
}

// NewService creates a notification service. The hub may be nil when
// websocket delivery is disabled.
func NewService(repo Repository, hub *websocket.Hub, logger *zap.Logger) Service {
	return &service{repo: repo, hub: hub, logger: logger}
}

// Notify persists a notification and pushes it over websocket. Push
// failures never fail the caller.
func (s *service) Notify(ctx context.Context, n *Notification) error {
	if err := s.repo.Insert(ctx, n); err != nil {
		return err
	}
	s.push(n)
	return nil
}

func (s *service) NotifyAll(ctx context.Context, ns []*Notification) error {
	if len(ns) == 0 {
		return nil
	}
	if err := s.repo.InsertMany(ctx, ns); err != nil {
		return err
	}
	for _, n := range ns {
		s.push(n)
	}
	return nil
}

func (s *service) push(n *Notification) {
	if s.hub == nil {
		return
	}
	err := s.hub.SendToUser(n.UserID, websocket.Message{
		Type:      "notification",
		Data:      n,
		Timestamp: time.Now(),
	})
	if err != nil {
		s.logger.Debug("websocket push skipped",
			zap.String("userId", n.UserID),
			zap.Error(err))
	}
}

func (s *service) List(ctx context.Context, userID string, limit int64) ([]*Notification, int64, error) {
	list, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return list, unread, nil
}

func (s *service) MarkRead(ctx context.Context, userID, notificationID string) error {
	oid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return fmt.Errorf("%w: invalid notification id", apperrors.ErrValidation)
	}
	if err := s.repo.MarkRead(ctx, userID, oid); err != nil {
		return fmt.Errorf("%w: notification not found", apperrors.ErrNotFound)
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
