package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/breathfree/quit_go_server/internal/pkg/queue"
)

// popTimeout 单次阻塞等待时长
const popTimeout = 5 * time.Second

// Source 通知来源
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.Notification, error)
}

// Handler 处理单条通知
type Handler interface {
	Process(ctx context.Context, msg *queue.Notification) error
}

// Run 启动 workers 个协程消费队列，ctx 取消后等待全部退出。失败的通知只记录日志，不重试
func Run(ctx context.Context, source Source, handler Handler, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			loop(ctx, workerID, source, handler)
		}(i)
	}
	wg.Wait()
}

func loop(ctx context.Context, workerID int, source Source, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			log.Debug().Int("worker", workerID).Msg("worker shutting down")
			return
		default:
		}

		msg, err := source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("worker", workerID).Msg("failed to pop notification")
			continue
		}
		if msg == nil {
			continue // 超时，继续等待
		}

		if err := handler.Process(ctx, msg); err != nil {
			log.Error().Err(err).Int("worker", workerID).
				Int64("user_id", msg.UserID).Str("kind", msg.Kind).Msg("notification failed")
		}
	}
}
