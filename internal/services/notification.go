package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Project-mardianto/algoplus-app/internal/logger"
	"github.com/Project-mardianto/algoplus-app/internal/models"
	"go.uber.org/zap"
)

const (
	maxEmailAttempts  = 3
	emailRetryBackoff = time.Minute
)

type NotificationService struct {
	storage  notificationStorage
	jobQueue jobQueue
	mailer   mailSender
}

type notificationStorage interface {
	CreateNotification(ctx context.Context, n models.Notification) error

	FindNotifications(ctx context.Context, userID string) ([]models.Notification, error)

	MarkNotificationsRead(ctx context.Context, userID string) (int64, error)
}

type jobQueue interface {
	Enqueue(job Job) error

	ScheduleJob(job Job, delay time.Duration)

	PauseAndResume(delay time.Duration)
}

type mailSender interface {
	Send(ctx context.Context, email Email) error
}

func NewNotificationService(storage notificationStorage, jobQueue jobQueue, mailer mailSender) *NotificationService {
	return &NotificationService{storage: storage, jobQueue: jobQueue, mailer: mailer}
}

func (ns *NotificationService) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	notifications, err := ns.storage.FindNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		return []models.Notification{}, nil
	}
	return notifications, nil
}

func (ns *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	updated, err := ns.storage.MarkNotificationsRead(ctx, userID)
	if err != nil {
		return err
	}

	logger.Log.Debug("marked notifications read", zap.String("userID", userID), zap.Int64("count", updated))
	return nil
}

// Notify stores n in the background. A full queue loses the notification,
// never the request that caused it.
func (ns *NotificationService) Notify(n models.Notification) {
	err := ns.jobQueue.Enqueue(func(ctx context.Context) {
		if err := ns.storage.CreateNotification(ctx, n); err != nil {
			logger.Log.Error("failed to store notification", zap.String("userID", n.UserID), zap.Error(err))
		}
	})
	if err != nil {
		logger.Log.Warn("notification dropped", zap.String("userID", n.UserID), zap.Error(err))
	}
}

// SendEmail delivers email in the background, retrying transient failures.
func (ns *NotificationService) SendEmail(email Email) {
	if err := ns.jobQueue.Enqueue(ns.emailJob(email, 1)); err != nil {
		logger.Log.Warn("email dropped", zap.String("to", email.To), zap.Error(err))
	}
}

func (ns *NotificationService) emailJob(email Email, attempt int) Job {
	return func(ctx context.Context) {
		err := ns.mailer.Send(ctx, email)
		if err == nil {
			logger.Log.Info("email sent", zap.String("to", email.To), zap.String("subject", email.Subject))
			return
		}

		if attempt >= maxEmailAttempts {
			logger.Log.Error("giving up on email",
				zap.String("to", email.To),
				zap.Int("attempts", attempt),
				zap.Error(err),
			)
			return
		}

		var rateLimited *RateLimitError
		if errors.As(err, &rateLimited) {
			logger.Log.Info("mail provider asked to back off", zap.Duration("retryAfter", rateLimited.RetryAfter))
			ns.jobQueue.PauseAndResume(rateLimited.RetryAfter)
			if err := ns.jobQueue.Enqueue(ns.emailJob(email, attempt+1)); err != nil {
				logger.Log.Error("failed to requeue email", zap.Error(err))
			}
			return
		}

		logger.Log.Warn("failed to send email, scheduling retry",
			zap.String("to", email.To),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		ns.jobQueue.ScheduleJob(ns.emailJob(email, attempt+1), emailRetryBackoff*time.Duration(attempt))
	}
}

func orderNotification(order *models.Order, status models.OrderStatus) models.Notification {
	n := models.Notification{
		UserID: order.UserID,
		Type:   models.NotificationOrder,
	}

	switch status {
	case models.StatusConfirmed:
		n.Title = "Order confirmed"
		n.Message = fmt.Sprintf("Order #%d has been received and confirmed.", order.ID)
	case models.StatusPreparing:
		n.Title = "Order is being prepared"
		n.Message = fmt.Sprintf("The supplier is preparing order #%d.", order.ID)
	case models.StatusReadyForPickup:
		n.Title = "Order ready for pickup"
		n.Message = fmt.Sprintf("Order #%d is waiting for a driver.", order.ID)
	case models.StatusOutForDelivery:
		n.Type = models.NotificationDelivery
		n.Title = "Order on the way"
		n.Message = fmt.Sprintf("A driver picked up order #%d.", order.ID)
	case models.StatusArrived:
		n.Type = models.NotificationDelivery
		n.Title = "Driver has arrived"
		n.Message = fmt.Sprintf("Order #%d has arrived. Please confirm receipt.", order.ID)
	case models.StatusCompleted:
		n.Title = "Order completed"
		n.Message = fmt.Sprintf("Thank you! Order #%d is complete.", order.ID)
	default:
		n.Title = "Order updated"
		n.Message = fmt.Sprintf("Order #%d is now %s.", order.ID, status)
	}

	return n
}
