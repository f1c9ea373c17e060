package task

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper 可清理过期条目的内存组件
type Sweeper interface {
	Sweep() int
}

// SweeperFunc 函数适配为 Sweeper
type SweeperFunc func() int

func (f SweeperFunc) Sweep() int { return f() }

// SweepTask 内存清理任务
// 公开接口限流器中长时间未访问的 IP、未完成登录遗留的 OAuth state
type SweepTask struct {
	sweepers []Sweeper
	spec     string
	Cron     *cron.Cron
	logger   *zap.Logger
}

// NewSweepTask 创建清理任务
func NewSweepTask(spec string, logger *zap.Logger, sweepers ...Sweeper) *SweepTask {
	return &SweepTask{
		sweepers: sweepers,
		spec:     spec,
		Cron:     cron.New(cron.WithSeconds()),
		logger:   logger.Named("sweep"),
	}
}

// Start 启动清理任务
func (t *SweepTask) Start() error {
	if _, err := t.Cron.AddFunc(t.spec, func() { t.Execute() }); err != nil {
		return fmt.Errorf("无法启动内存清理任务: %w", err)
	}
	t.Cron.Start()
	t.logger.Info("内存清理任务已启动", zap.String("spec", t.spec))
	return nil
}

// Stop 停止任务
func (t *SweepTask) Stop() {
	<-t.Cron.Stop().Done()
}

// Execute 执行一次清理，返回清理总数
func (t *SweepTask) Execute() int {
	total := 0
	for _, s := range t.sweepers {
		total += s.Sweep()
	}
	if total > 0 {
		t.logger.Debug("已清理过期条目", zap.Int("count", total))
	}
	return total
}
