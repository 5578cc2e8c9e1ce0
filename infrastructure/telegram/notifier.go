package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"task-tracker/domain/ports"
	"task-tracker/pkg/logger"
)

const defaultAPIBaseURL = "https://api.telegram.org"

// maxDigestItems จำกัดจำนวน task ต่อข้อความ (Telegram จำกัด 4096 ตัวอักษร)
const maxDigestItems = 20

// TelegramNotifier - Telegram implementation of NotifierPort
type TelegramNotifier struct {
	botToken   string
	chatID     string
	apiBaseURL string
	httpClient *http.Client
}

// NewTelegramNotifier สร้าง TelegramNotifier
// token หรือ chat id ว่าง = ปิดการแจ้งเตือน
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken:   strings.TrimSpace(botToken),
		chatID:     strings.TrimSpace(chatID),
		apiBaseURL: defaultAPIBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithAPIBaseURL ใช้ใน test เพื่อชี้ไปที่ httptest server
func (n *TelegramNotifier) WithAPIBaseURL(baseURL string) *TelegramNotifier {
	n.apiBaseURL = strings.TrimRight(baseURL, "/")
	return n
}

// IsEnabled ตรวจสอบว่าเปิดใช้งานการแจ้งเตือนหรือไม่
func (n *TelegramNotifier) IsEnabled() bool {
	return n.botToken != "" && n.chatID != ""
}

// SendUrgentDigest ส่งสรุป urgent tasks ของ user
func (n *TelegramNotifier) SendUrgentDigest(ctx context.Context, digest *ports.UrgentDigest) error {
	if digest == nil || len(digest.Tasks) == 0 {
		return nil
	}
	return n.sendMessage(ctx, formatDigest(digest))
}

func formatDigest(digest *ports.UrgentDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⏰ <b>Urgent tasks</b> (%d)\n", len(digest.Tasks))
	if digest.Email != "" {
		fmt.Fprintf(&b, "👤 %s\n", escapeHTML(digest.Email))
	}
	b.WriteString("\n")

	for i, item := range digest.Tasks {
		if i == maxDigestItems {
			fmt.Fprintf(&b, "… and %d more\n", len(digest.Tasks)-maxDigestItems)
			break
		}
		fmt.Fprintf(&b, "• <b>%s</b>", escapeHTML(truncateString(item.Title, 100)))
		if item.DueDate != "" {
			fmt.Fprintf(&b, " (due <code>%s</code>)", item.DueDate)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// sendMessage ส่งข้อความไปยัง Telegram
func (n *TelegramNotifier) sendMessage(ctx context.Context, message string) error {
	if !n.IsEnabled() {
		logger.DebugContext(ctx, "Telegram notification disabled, skipping")
		return nil
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBaseURL, n.botToken)

	payload := map[string]interface{}{
		"chat_id":    n.chatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to send Telegram message", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.ErrorContext(ctx, "Telegram API error", "status", resp.StatusCode)
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	logger.InfoContext(ctx, "Telegram notification sent")
	return nil
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// escapeHTML escape HTML special characters for Telegram
func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// truncateString ตัดตาม rune ไม่ให้ UTF-8 ขาดกลางตัว
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
