package notification

// NotificationSystem represents a type of notification system (e.g., email, SMS).
type NotificationSystem string

// NoticeType represents a type of notification (e.g., "twofa_code").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
)

// NoticeTemplate holds the subject and bodies for a notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// NotificationData carries the recipient and template data for one send.
type NotificationData struct {
	To   string
	Data map[string]string
}

// Notifier sends a rendered notice through one delivery system.
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
