package seed

import (
	"sync"
	"time"

	"go.uber.org/zap"

	log "warbler/pkg/logger"
)

// ProgressTracker 进度显示器，每完成 10% 打一条日志
type ProgressTracker struct {
	name      string
	total     int
	current   int
	reported  int
	startTime time.Time
	mu        sync.Mutex
}

func NewProgressTracker(name string, total int) *ProgressTracker {
	return &ProgressTracker{
		name:      name,
		total:     total,
		startTime: time.Now(),
	}
}

func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current += n
	if p.total == 0 {
		return
	}

	step := p.current * 10 / p.total
	if step <= p.reported {
		return
	}
	p.reported = step

	elapsed := time.Since(p.startTime).Seconds()
	log.Info("生成进度",
		zap.String("table", p.name),
		zap.Int("current", p.current),
		zap.Int("total", p.total),
		zap.Float64("percent", float64(p.current)/float64(p.total)*100),
		zap.Float64("speed", float64(p.current)/elapsed),
	)
}

// Current 已完成数量
func (p *ProgressTracker) Current() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	log.Info("完成",
		zap.String("table", p.name),
		zap.Int("total", p.current),
		zap.Duration("elapsed", elapsed),
	)
}
