package infrastructure

import (
	"fmt"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"github.com/yourusername/flix-offline-go/internal/domain"
)

// commandRunner runs an external notifier binary
type commandRunner func(name string, args ...string) error

func runCommand(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// NotificationService handles sending notifications
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
	run    commandRunner
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
		run:    runCommand,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	switch n.config.Method {
	case "log", "":
		n.logger.Info(title, zap.String("message", message))
		return nil
	case "osascript":
		script := fmt.Sprintf("display notification %s with title %s",
			strconv.Quote(message), strconv.Quote(title))
		return n.exec("osascript", "-e", script)
	case "notify-send":
		return n.exec("notify-send", title, message)
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}

func (n *NotificationService) exec(name string, args ...string) error {
	if err := n.run(name, args...); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", name),
			zap.Error(err))
		return err
	}
	n.logger.Debug("Notification sent", zap.String("method", name))
	return nil
}

// NotifyDownloadCompleted sends notification when a download finishes
func (n *NotificationService) NotifyDownloadCompleted(download domain.Download) {
	title := "Download Completed"
	name := download.Title
	if download.SeasonLabel != nil && *download.SeasonLabel != "" {
		name = fmt.Sprintf("%s (%s)", name, *download.SeasonLabel)
	}
	message := fmt.Sprintf("%s is ready to watch offline", truncateString(name, 60))
	_ = n.Send(title, message)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
