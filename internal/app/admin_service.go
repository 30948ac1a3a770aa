package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"hr_contract_notifier/internal/domain/notification"
	"hr_contract_notifier/internal/domain/recipient"
	idb "hr_contract_notifier/internal/infra/database"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = errors.New("performing user is not authorized as an admin")
var ErrRecipientAlreadyExists = errors.New("recipient with this email already exists")
var ErrRecipientStateUnchanged = errors.New("recipient is already in the requested state")
var ErrInvalidEmail = errors.New("invalid email address")

const (
	testEmailSubject = "Test email from HR Management System"
	testEmailHTML    = "<h2>Test email</h2><p>This is a test email from the HR Management System.</p><p>If you received it, email notifications are configured correctly.</p>"
	testEmailText    = "This is a test email from the HR Management System.\nIf you received it, email notifications are configured correctly.\n"
)

type AdminService struct {
	recipientRepo   recipient.Repository
	notifService    NotificationService
	email           EmailSender
	adminTelegramID int64
}

func NewAdminService(rr recipient.Repository, ns NotificationService, email EmailSender, adminID int64) *AdminService {
	return &AdminService{
		recipientRepo:   rr,
		notifService:    ns,
		email:           email,
		adminTelegramID: adminID,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if s.adminTelegramID == 0 || performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// normalizeEmail validates address and returns its bare, lower-cased form.
func normalizeEmail(address string) (string, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, address)
	}
	return strings.ToLower(parsed.Address), nil
}

// AddRecipient registers a new active recipient. An empty notificationTypes means "all".
func (s *AdminService) AddRecipient(ctx context.Context, performingAdminID int64, email, name, notificationTypes string) (*recipient.Recipient, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}

	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	types := recipient.TypeAll
	if strings.TrimSpace(notificationTypes) != "" {
		if types, err = recipient.ParseNotificationType(notificationTypes); err != nil {
			return nil, err
		}
	}

	_, err = s.recipientRepo.GetByEmail(ctx, addr)
	if err == nil {
		return nil, ErrRecipientAlreadyExists
	}
	if !errors.Is(err, idb.ErrRecipientNotFound) {
		return nil, fmt.Errorf("failed to check existing recipient: %w", err)
	}

	var displayName sql.NullString
	if name = strings.TrimSpace(name); name != "" {
		displayName = sql.NullString{String: name, Valid: true}
	}

	r := &recipient.Recipient{
		Email:             addr,
		Name:              displayName,
		IsActive:          true,
		NotificationTypes: types,
		CreatedBy:         sql.NullInt64{Int64: performingAdminID, Valid: true},
	}
	if err := s.recipientRepo.Create(ctx, r); err != nil {
		if errors.Is(err, idb.ErrDuplicateRecipientEmail) {
			return nil, ErrRecipientAlreadyExists
		}
		return nil, fmt.Errorf("failed to create recipient in repository: %w", err)
	}
	return r, nil
}

// RemoveRecipient deletes the recipient row. Deletion is immediate and permanent.
func (s *AdminService) RemoveRecipient(ctx context.Context, performingAdminID int64, email string) (*recipient.Recipient, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}

	target, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := s.recipientRepo.Delete(ctx, target.ID); err != nil {
		return nil, fmt.Errorf("failed to delete recipient: %w", err)
	}
	return target, nil
}

// SetRecipientActive toggles whether the recipient receives notifications.
func (s *AdminService) SetRecipientActive(ctx context.Context, performingAdminID int64, email string, active bool) (*recipient.Recipient, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}

	target, err := s.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if target.IsActive == active {
		return target, ErrRecipientStateUnchanged
	}
	if err := s.recipientRepo.SetActive(ctx, target.ID, active); err != nil {
		return nil, fmt.Errorf("failed to update recipient: %w", err)
	}
	target.IsActive = active
	return target, nil
}

// ListRecipients returns the whole directory, inactive entries included.
func (s *AdminService) ListRecipients(ctx context.Context, performingAdminID int64) ([]*recipient.Recipient, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	recipients, err := s.recipientRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	return recipients, nil
}

// RunExpiryCheck triggers one expiry check outside the schedule.
func (s *AdminService) RunExpiryCheck(ctx context.Context, performingAdminID int64, thresholdDays int) (CheckSummary, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return CheckSummary{}, err
	}
	return s.notifService.CheckExpiringContracts(ctx, thresholdDays)
}

// SendTestEmail sends a fixed message to verify the email channel.
// notification.ErrChannelNotConfigured is returned when email has no credentials.
func (s *AdminService) SendTestEmail(ctx context.Context, performingAdminID int64, to string) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	addr, err := normalizeEmail(to)
	if err != nil {
		return err
	}
	if s.email == nil {
		return notification.ErrChannelNotConfigured
	}
	return s.email.SendEmail(ctx, addr, testEmailSubject, testEmailHTML, testEmailText)
}

func (s *AdminService) lookup(ctx context.Context, email string) (*recipient.Recipient, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	r, err := s.recipientRepo.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, idb.ErrRecipientNotFound) {
			return nil, idb.ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to get recipient by email: %w", err)
	}
	return r, nil
}
