package mailer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	gomail "gopkg.in/gomail.v2"

	"aspir_backend/internals/configs"
	regmodel "aspir_backend/internals/features/registration/model"
)

/* =========================================================
   SMTP mailer

   Plain-text transactional mails. Every send returns an error
   but callers treat mail as best-effort: a payment must never
   fail because SMTP is down.
========================================================= */

type Mailer struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	SupportEmail string
	StaffEmails  []string
	SiteURL      string
}

func New(cfg *configs.AppConfig) *Mailer {
	return &Mailer{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		User:         cfg.SMTPUser,
		Password:     cfg.SMTPPassword,
		From:         cfg.FromEmail,
		SupportEmail: cfg.SupportEmail,
		StaffEmails:  cfg.StaffEmails,
		SiteURL:      cfg.SiteURL,
	}
}

func (m *Mailer) send(to []string, subject, body string) error {
	if m.Host == "" || len(to) == 0 {
		return fmt.Errorf("mailer not configured")
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.From)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	dialer := gomail.NewDialer(m.Host, m.Port, m.User, m.Password)
	return dialer.DialAndSend(msg)
}

/* ===================== Participant mails ===================== */

func (m *Mailer) SendRegistrationConfirmation(reg *regmodel.Registration) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We have received your registration fee. Your spot in the ASPIR program is reserved.\n\n"+
			"Remaining balance: $%s (course fee)\n"+
			"You can complete your payment at %s/payment-status/%s\n\n"+
			"Questions? Reach us at %s.\n\n"+
			"ASPIR Program Team",
		reg.RegistrationFullName,
		reg.RemainingBalance().StringFixed(2),
		m.SiteURL, reg.RegistrationID,
		m.SupportEmail,
	)
	return m.send([]string{reg.RegistrationEmail}, "Registration Fee Received - ASPIR Program", body)
}

func (m *Mailer) SendCourseFeeReceived(reg *regmodel.Registration) error {
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"We have received your course fee payment.\n\n"+
			"Remaining balance: $%s (registration fee)\n"+
			"You can complete your payment at %s/payment-status/%s\n\n"+
			"Questions? Reach us at %s.\n\n"+
			"ASPIR Program Team",
		reg.RegistrationFullName,
		reg.RemainingBalance().StringFixed(2),
		m.SiteURL, reg.RegistrationID,
		m.SupportEmail,
	)
	return m.send([]string{reg.RegistrationEmail}, "Course Fee Received - ASPIR Program", body)
}

func (m *Mailer) SendPaymentComplete(reg *regmodel.Registration) error {
	participantLine := "Your participant ID will be sent to you shortly."
	if reg.RegistrationParticipantID != nil && *reg.RegistrationParticipantID != "" {
		participantLine = "Your participant ID: " + *reg.RegistrationParticipantID
	}
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your payment is complete. Welcome to the ASPIR program!\n\n"+
			"%s\n\n"+
			"We will contact you with onboarding details before the program starts.\n\n"+
			"Questions? Reach us at %s.\n\n"+
			"ASPIR Program Team",
		reg.RegistrationFullName,
		participantLine,
		m.SupportEmail,
	)
	return m.send([]string{reg.RegistrationEmail}, "Payment Complete - Welcome to ASPIR", body)
}

func (m *Mailer) SendParticipantID(reg *regmodel.Registration) error {
	if reg.RegistrationParticipantID == nil || *reg.RegistrationParticipantID == "" {
		return fmt.Errorf("registration %s has no participant ID", reg.RegistrationID)
	}
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your ASPIR participant ID is: %s\n\n"+
			"Keep this ID; you will use it throughout the program.\n\n"+
			"ASPIR Program Team",
		reg.RegistrationFullName,
		*reg.RegistrationParticipantID,
	)
	return m.send([]string{reg.RegistrationEmail}, "Your ASPIR Participant ID", body)
}

/* ===================== Staff mails ===================== */

func (m *Mailer) SendStaffPaymentNotification(reg *regmodel.Registration, paymentType string, amountUSD decimal.Decimal, reference string) error {
	if len(m.StaffEmails) == 0 {
		return nil
	}
	body := fmt.Sprintf(
		"Payment received.\n\n"+
			"Name:        %s\n"+
			"Email:       %s\n"+
			"Country:     %s\n"+
			"Type:        %s\n"+
			"Amount:      $%s\n"+
			"Reference:   %s\n"+
			"Status:      %s\n"+
			"Reg fee:     %v\n"+
			"Course fee:  %v\n",
		reg.RegistrationFullName,
		reg.RegistrationEmail,
		reg.RegistrationCountry,
		strings.ReplaceAll(paymentType, "_", " "),
		amountUSD.StringFixed(2),
		reference,
		reg.RegistrationStatus,
		reg.RegistrationFeePaid,
		reg.CourseFeePaid,
	)
	return m.send(m.StaffEmails, fmt.Sprintf("💰 Payment: %s ($%s)", reg.RegistrationFullName, amountUSD.StringFixed(2)), body)
}

func (m *Mailer) SendStaffNewRegistration(reg *regmodel.Registration) error {
	if len(m.StaffEmails) == 0 {
		return nil
	}
	body := fmt.Sprintf(
		"New registration.\n\n"+
			"Name:     %s\n"+
			"Email:    %s\n"+
			"Phone:    %s\n"+
			"Country:  %s\n"+
			"Age:      %d\n"+
			"Group:    %s\n"+
			"Type:     %s\n"+
			"Amount:   $%s\n",
		reg.RegistrationFullName,
		reg.RegistrationEmail,
		reg.RegistrationPhone,
		reg.RegistrationCountry,
		reg.RegistrationAge,
		reg.RegistrationGroup,
		reg.RegistrationEnrollmentType,
		reg.RegistrationAmount.StringFixed(2),
	)
	return m.send(m.StaffEmails, "🆕 New Registration: "+reg.RegistrationFullName, body)
}
