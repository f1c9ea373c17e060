package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// EventCloser 关闭已结束活动
type EventCloser interface {
	CloseEnded(ctx context.Context) (int64, error)
}

// EventCloseTask 活动自动关闭任务
// 结束时间已过且仍为 OPEN 的活动置为 CLOSED，公开报名随之停止
type EventCloseTask struct {
	closer  EventCloser
	spec    string
	timeout time.Duration
	Cron    *cron.Cron
	logger  *zap.Logger
}

// NewEventCloseTask 创建活动关闭任务，spec 为带秒的 cron 表达式
func NewEventCloseTask(closer EventCloser, spec string, logger *zap.Logger) *EventCloseTask {
	return &EventCloseTask{
		closer:  closer,
		spec:    spec,
		timeout: time.Minute,
		Cron:    cron.New(cron.WithSeconds()), // 支持秒级控制
		logger:  logger.Named("event_close"),
	}
}

// Start 启动定时任务
func (t *EventCloseTask) Start() error {
	// 首次执行
	go func() {
		t.logger.Info("服务启动，正在执行首次活动关闭检查")
		t.RunOnce()
	}()

	if _, err := t.Cron.AddFunc(t.spec, t.RunOnce); err != nil {
		return fmt.Errorf("无法启动活动关闭任务: %w", err)
	}

	t.Cron.Start()
	t.logger.Info("活动关闭任务已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止任务，等待正在执行的一轮结束
func (t *EventCloseTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 执行一轮
func (t *EventCloseTask) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if _, err := t.Execute(ctx); err != nil {
		t.logger.Error("活动关闭失败", zap.Error(err))
	}
}

// Execute 关闭已结束活动，返回关闭数量
func (t *EventCloseTask) Execute(ctx context.Context) (int64, error) {
	n, err := t.closer.CloseEnded(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		t.logger.Info("已关闭结束的活动", zap.Int64("count", n))
	}
	return n, nil
}
