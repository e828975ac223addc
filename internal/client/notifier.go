package client

import (
	"sync"

	"github.com/rs/zerolog"
)

// Level 通知级别
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification 一条提示通知（网页中以 toast 展示，CLI 中写日志）
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier 通知接收方
type Notifier interface {
	Notify(n Notification)
}

// Recorder 收集通知，供页面一次性渲染
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify 实现 Notifier
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// Notifications 返回已收集的通知副本
func (r *Recorder) Notifications() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// LogNotifier 把通知写入 zerolog
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier 创建基于日志的通知
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify 实现 Notifier
func (n *LogNotifier) Notify(notification Notification) {
	event := n.logger.Info()
	if notification.Level == LevelError {
		event = n.logger.Error()
	}
	event.Str("title", notification.Title).Msg(notification.Message)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notification) {}
