package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/teachme/platform-api/model"
	"github.com/teachme/platform-api/services/payment"
	"github.com/teachme/platform-api/utils/apperr"
	"github.com/teachme/platform-api/utils/logger"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService ties checkout sessions to course enrollments
type PaymentService struct {
	db      *gorm.DB
	gateway payment.Gateway
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB, gateway payment.Gateway) *PaymentService {
	return &PaymentService{db: db, gateway: gateway}
}

type checkoutMetadata struct {
	CourseTitle string `json:"course_title"`
	CheckoutURL string `json:"checkout_url"`
}

// StartCheckout opens a checkout session for courseID and records it as pending.
// It returns the provider's redirect URL.
func (s *PaymentService) StartCheckout(ctx context.Context, userID, courseID uint) (string, error) {
	var course model.Course
	if err := s.db.WithContext(ctx).First(&course, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.New(apperr.CodeNotFound, "Course not found")
		}
		return "", apperr.Wrap(err, apperr.CodeInternal, "Failed to fetch course")
	}

	session, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		CourseID: course.ID,
		Title:    course.Title,
		Price:    course.Price,
		UserID:   userID,
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return "", err
		}
		return "", apperr.Wrap(err, apperr.CodeUpstream, "Failed to create checkout session")
	}

	metadata, err := json.Marshal(checkoutMetadata{CourseTitle: course.Title, CheckoutURL: session.URL})
	if err != nil {
		logger.L().Warn("failed to encode payment metadata", zap.String("session_id", session.ID), zap.Error(err))
		metadata = nil
	}
	record := model.Payment{
		UserID:    userID,
		CourseID:  course.ID,
		Provider:  "stripe",
		SessionID: session.ID,
		Amount:    session.Amount,
		Currency:  session.Currency,
		Status:    model.PaymentStatusPending,
		Metadata:  datatypes.JSON(metadata),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		// the session exists upstream; the webhook can still fulfil it
		logger.L().Error("failed to record payment",
			zap.String("session_id", session.ID),
			zap.Uint("course_id", course.ID),
			zap.Error(err))
	}

	return session.URL, nil
}

// Fulfil marks the session's payment completed and enrolls the buyer.
// Replayed events leave the same end state.
func (s *PaymentService) Fulfil(ctx context.Context, done *payment.CompletedCheckout) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record model.Payment
		err := tx.Where("session_id = ?", done.SessionID).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = model.Payment{
				UserID:    done.UserID,
				CourseID:  done.CourseID,
				Provider:  "stripe",
				SessionID: done.SessionID,
				Amount:    done.AmountTotal,
				Currency:  "usd",
				Status:    model.PaymentStatusCompleted,
			}
			if err := tx.Create(&record).Error; err != nil {
				return apperr.Wrap(err, apperr.CodeInternal, "Failed to record payment")
			}
		case err != nil:
			return apperr.Wrap(err, apperr.CodeInternal, "Failed to fetch payment")
		case record.Status != model.PaymentStatusCompleted:
			if err := tx.Model(&record).Updates(map[string]interface{}{
				"status":     model.PaymentStatusCompleted,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return apperr.Wrap(err, apperr.CodeInternal, "Failed to update payment")
			}
		}

		_, err = EnrollUser(ctx, tx, done.UserID, done.CourseID)
		return err
	})
}

// ExpirePending marks payments still pending after olderThan as expired and
// returns how many rows changed.
func (s *PaymentService) ExpirePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	result := s.db.WithContext(ctx).
		Model(&model.Payment{}).
		Where("status = ? AND created_at < ?", model.PaymentStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     model.PaymentStatusExpired,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, apperr.Wrap(result.Error, apperr.CodeInternal, "Failed to expire payments")
	}
	return result.RowsAffected, nil
}
