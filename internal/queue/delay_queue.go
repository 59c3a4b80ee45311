package queue

import (
	"time"

	"github.com/zeromicro/go-zero/core/collection"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"
)

const (
	wheelInterval = time.Second
	wheelSlots    = 300
)

// Handler 在延迟到期后于工作协程中被调用，入参是排期任务 id
type Handler func(id string)

// DelayQueue 是进程内延迟队列：时间轮管理到期触发，任务交给固定大小的
// 工作池执行。它只负责触发，不负责持久化——任务状态由数据库兜底。
type DelayQueue struct {
	wheel   *collection.TimingWheel
	runner  *threading.TaskRunner
	handler Handler
}

// NewDelayQueue creates a delay queue with the given worker count.
func NewDelayQueue(workers int, handler Handler) (*DelayQueue, error) {
	q := &DelayQueue{
		runner:  threading.NewTaskRunner(workers),
		handler: handler,
	}
	wheel, err := collection.NewTimingWheel(wheelInterval, wheelSlots, func(key, _ any) {
		id, ok := key.(string)
		if !ok {
			return
		}
		q.dispatch(id)
	})
	if err != nil {
		return nil, err
	}
	q.wheel = wheel
	return q, nil
}

// Push 安排任务在 delay 后触发。同一 id 重复 Push 会重置其延迟。
// 延迟小于时间轮精度时直接投递给工作池。
func (q *DelayQueue) Push(id string, delay time.Duration) {
	if delay < wheelInterval {
		logx.Infof("任务 %s 已到期，直接投递执行", id)
		q.dispatch(id)
		return
	}
	logx.Infof("任务 %s 进入延迟队列, 延迟 %s", id, delay)
	if err := q.wheel.SetTimer(id, id, delay); err != nil {
		logx.Errorf("任务 %s 设置定时器失败: %v", id, err)
		q.dispatch(id)
	}
}

// Remove 取消尚未触发的任务。已触发或不存在的 id 静默忽略。
func (q *DelayQueue) Remove(id string) {
	if err := q.wheel.RemoveTimer(id); err != nil {
		logx.Infof("任务 %s 移除定时器: %v", id, err)
	}
}

// Stop drains the wheel; in-flight handlers finish on their own.
func (q *DelayQueue) Stop() {
	q.wheel.Stop()
}

func (q *DelayQueue) dispatch(id string) {
	q.runner.Schedule(func() {
		q.handler(id)
	})
}
