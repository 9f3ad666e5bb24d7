package notice

import (
	"embed"
	"log/slog"

	"github.com/tendant/simple-verify/pkg/notification"
)

//go:embed templates/*
var templateFiles embed.FS

func loadTemplate(filename string) string {
	content, err := templateFiles.ReadFile(filename)
	if err != nil {
		slog.Error("Error reading template file!", "err", err, "filename", filename)
		return ""
	}
	return string(content)
}

// NewNotificationManager creates a notification manager with the email
// notifier and all verification notice templates registered.
func NewNotificationManager(baseUrl string, smtpConfig notification.SMTPConfig) (*notification.NotificationManager, error) {
	notificationManager := notification.NewNotificationManager(baseUrl)

	emailNotifier, err := notification.NewEmailNotifier(smtpConfig)
	if err != nil {
		return nil, err
	}

	notificationManager.RegisterNotifier(notification.EmailSystem, emailNotifier)

	err = notificationManager.RegisterNotification(TwofaCodeNotice, notification.EmailSystem, notification.NoticeTemplate{
		Subject: "Your Verification Code",
		Text:    loadTemplate("templates/email/twofa_code.tmpl"),
		Html:    loadTemplate("templates/email/twofa_code.html"),
	})
	if err != nil {
		slog.Error("failed to register twofa code notification", "error", err)
		return nil, err
	}

	return notificationManager, nil
}
