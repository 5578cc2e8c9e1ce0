package ports

import "context"

// UrgentDigest สรุป urgent tasks ของ user หนึ่งคน
type UrgentDigest struct {
	UserID string
	Email  string
	Tasks  []UrgentDigestItem
}

type UrgentDigestItem struct {
	Title   string
	DueDate string
}

// NotifierPort - Interface สำหรับส่งการแจ้งเตือน (Telegram, Email, etc.)
type NotifierPort interface {
	SendUrgentDigest(ctx context.Context, digest *UrgentDigest) error
	IsEnabled() bool
}
