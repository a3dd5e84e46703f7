package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-booking/availability"
	"hotel-booking/models"
	"hotel-booking/utils"

	"gorm.io/gorm"
)

// BookingNotifier is told about every booking that was written.
type BookingNotifier interface {
	BookingCreated(ctx context.Context, booking models.Booking) error
}

type mailSender interface {
	Send(msg utils.MailMessage) error
}

// EmailNotificationService mails the guest a confirmation and the front desk
// a notification. The admin inbox comes from hotel settings, falling back to
// AdminEmail.
type EmailNotificationService struct {
	DB         *gorm.DB
	Mailer     mailSender
	AdminEmail string
}

func NewEmailNotificationService(db *gorm.DB, mailer mailSender, adminEmail string) *EmailNotificationService {
	return &EmailNotificationService{DB: db, Mailer: mailer, AdminEmail: adminEmail}
}

func (s *EmailNotificationService) hotel(ctx context.Context) models.HotelSetting {
	var hotel models.HotelSetting
	if err := s.DB.WithContext(ctx).First(&hotel).Error; err != nil {
		hotel = models.HotelSetting{}
	}
	if strings.TrimSpace(hotel.Name) == "" {
		hotel.Name = "Hotel"
	}
	if strings.TrimSpace(hotel.AdminEmail) == "" {
		hotel.AdminEmail = s.AdminEmail
	}
	return hotel
}

func (s *EmailNotificationService) BookingCreated(ctx context.Context, booking models.Booking) error {
	hotel := s.hotel(ctx)

	var errs []error
	if err := s.Mailer.Send(guestConfirmation(hotel, booking)); err != nil {
		errs = append(errs, fmt.Errorf("guest confirmation: %w", err))
	}
	if strings.TrimSpace(hotel.AdminEmail) != "" {
		if err := s.Mailer.Send(adminNotification(hotel, booking)); err != nil {
			errs = append(errs, fmt.Errorf("admin notification: %w", err))
		}
	}
	return errors.Join(errs...)
}

func stayLines(b models.Booking) string {
	extra := ""
	if b.ExtraBedsUsed {
		extra = " (includes extra beds)"
	}
	return fmt.Sprintf(
		"Reference: %s\nRoom: %s\nCheck-in: %s\nCheck-out: %s\nNights: %d\nBeds: %d%s\n",
		b.ReferenceCode,
		b.Room.Name,
		b.CheckInDate.Format(availability.DateLayout),
		b.CheckOutDate.Format(availability.DateLayout),
		b.Nights,
		b.Beds,
		extra,
	)
}

func guestConfirmation(hotel models.HotelSetting, b models.Booking) utils.MailMessage {
	plain := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Thank you for your booking request at %s. We have received it and will confirm shortly.\n\n"+
			"%s\n"+
			"If you have any questions, reply to this email or call us at %s.\n\n"+
			"Best regards,\n%s",
		b.GuestName, hotel.Name, stayLines(b), hotel.Phone, hotel.Name,
	)

	html := fmt.Sprintf(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Booking request received</title></head>
<body style="background:#f5f7fb;font-family:Arial, Helvetica, sans-serif;color:#222;">
<div style="max-width:640px;margin:20px auto;background:#fff;border:1px solid #e6eef6;padding:24px;border-radius:8px;">
  <h2>Booking request received</h2>
  <p>Dear %s,</p>
  <p>Thank you for your booking request at %s. We have received it and will confirm shortly.</p>
  <pre style="font-family:inherit">%s</pre>
  <p>Best regards,<br>%s</p>
</div>
</body>
</html>`,
		utils.HTMLEscape(b.GuestName),
		utils.HTMLEscape(hotel.Name),
		utils.HTMLEscape(stayLines(b)),
		utils.HTMLEscape(hotel.Name),
	)

	return utils.MailMessage{
		To:        b.GuestEmail,
		Subject:   fmt.Sprintf("%s: booking request %s", hotel.Name, b.ReferenceCode),
		PlainBody: plain,
		HTMLBody:  html,
	}
}

func adminNotification(hotel models.HotelSetting, b models.Booking) utils.MailMessage {
	plain := fmt.Sprintf(
		"New booking request.\n\n%s\nGuest: %s\nEmail: %s\nPhone: %s\nNotes: %s\n",
		stayLines(b), b.GuestName, b.GuestEmail, b.GuestPhone, b.Notes,
	)
	return utils.MailMessage{
		To:        hotel.AdminEmail,
		Subject:   fmt.Sprintf("New booking %s: %s, %d beds", b.ReferenceCode, b.Room.Name, b.Beds),
		PlainBody: plain,
	}
}
