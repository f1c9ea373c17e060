package task

import (
	"context"

	"go.uber.org/zap"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：活动自动关闭、内存清理（限流器、登录 state）
type TaskManager struct {
	eventCloseTask *EventCloseTask
	sweepTask      *SweepTask
	logger         *zap.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	EventCloser EventCloser
	Sweepers    []Sweeper
	Logger      *zap.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 活动自动关闭
	EventCloseEnabled bool
	EventCloseSpec    string

	// 内存清理
	SweepSpec string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		EventCloseEnabled: true,
		EventCloseSpec:    "0 */10 * * * *",
		SweepSpec:         "0 */5 * * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tm := &TaskManager{logger: logger.Named("task")}

	if cfg.EventCloseEnabled && deps.EventCloser != nil {
		tm.eventCloseTask = NewEventCloseTask(deps.EventCloser, cfg.EventCloseSpec, tm.logger)
	}

	if len(deps.Sweepers) > 0 && cfg.SweepSpec != "" {
		tm.sweepTask = NewSweepTask(cfg.SweepSpec, tm.logger, deps.Sweepers...)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务，任一任务启动失败时停止已启动的任务
func (tm *TaskManager) Start() error {
	tm.logger.Info("正在启动定时任务")

	if tm.eventCloseTask != nil {
		if err := tm.eventCloseTask.Start(); err != nil {
			return err
		}
	}
	if tm.sweepTask != nil {
		if err := tm.sweepTask.Start(); err != nil {
			tm.Stop()
			return err
		}
	}

	tm.logger.Info("定时任务已全部启动", zap.Any("status", tm.Status()))
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	if tm.eventCloseTask != nil {
		tm.eventCloseTask.Stop()
	}
	if tm.sweepTask != nil {
		tm.sweepTask.Stop()
	}
	tm.logger.Info("定时任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerEventClose 立即执行一次活动关闭
func (tm *TaskManager) TriggerEventClose(ctx context.Context) (int64, error) {
	if tm.eventCloseTask == nil {
		return 0, ErrTaskDisabled
	}
	return tm.eventCloseTask.Execute(ctx)
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"event_close": tm.eventCloseTask != nil,
		"sweep":       tm.sweepTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
)
