package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"GymTree/internal/cache"
	"GymTree/internal/model"
	pkgerrors "GymTree/pkg/errors"
	"GymTree/pkg/logger"
	"GymTree/storage/mq"
	"GymTree/utils"
)

// HandleWorkoutCompleted 消费训练完成事件
// 维护周统计计数并回填当日完成标记，消息级幂等由 redis 标记保证
func HandleWorkoutCompleted(body []byte) error {
	var msg model.WorkoutCompletedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		// 无法解析的消息重投也不会成功，确认后丢弃
		logger.Logger.Error("Failed to unmarshal workout completed message", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msgKey := utils.FormatID(msg.MessageID)
	fresh, err := cache.TryMarkMessageProcessing(ctx, msgKey, 0)
	if err != nil {
		return err
	}
	if !fresh {
		logger.Logger.Info("Skipping duplicate workout completed message",
			zap.Int64("message_id", msg.MessageID),
		)
		return nil
	}

	if err := process(ctx, msg); err != nil {
		if unmarkErr := cache.UnmarkMessageProcessing(ctx, msgKey); unmarkErr != nil {
			logger.Logger.Warn("Failed to unmark message for retry", zap.Error(unmarkErr))
		}
		if pkgerrors.IsSkip(err) {
			logger.Logger.Info("Skipping workout completed message",
				zap.Int64("message_id", msg.MessageID),
				zap.String("reason", err.Error()),
			)
			return nil
		}
		return err
	}

	return cache.MarkMessageProcessed(ctx, msgKey, 0)
}

func process(ctx context.Context, msg model.WorkoutCompletedMessage) error {
	date, err := time.Parse("2006-01-02", msg.WorkoutDate)
	if err != nil {
		return &pkgerrors.SkipMessageError{Reason: fmt.Sprintf("bad workout date %q", msg.WorkoutDate)}
	}

	weekKey := utils.DayKey(utils.WeekStart(date))
	if err := cache.IncrementWeeklyCompleted(ctx, msg.ProfileID, weekKey); err != nil {
		return err
	}

	// 回填当日完成标记，打卡进程崩溃时的兜底
	if err := cache.MarkWorkoutDone(ctx, msg.WorkoutDate, msg.ProfileID); err != nil {
		logger.Logger.Warn("Failed to backfill workout done marker",
			zap.Int64("profile_id", msg.ProfileID),
			zap.Error(err),
		)
	}

	logger.Logger.Info("Workout completed event processed",
		zap.Int64("profile_id", msg.ProfileID),
		zap.String("date", msg.WorkoutDate),
		zap.Int("current_streak", msg.CurrentStreak),
	)
	return nil
}

// Refresher 活跃会话刷新入口
type Refresher interface {
	Refresh(ctx context.Context, profileID int64)
}

// NewProfileChangedHandler 构造档案变更事件的处理函数
func NewProfileChangedHandler(refresher Refresher) mq.MessageHandler {
	return func(body []byte) error {
		var msg model.ProfileChangedMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			logger.Logger.Error("Failed to unmarshal profile changed message", zap.Error(err))
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		refresher.Refresh(ctx, msg.ProfileID)
		return nil
	}
}

// ConsumeWorkoutCompleted 启动训练完成事件消费，阻塞直到通道关闭
func ConsumeWorkoutCompleted() error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.WorkoutCompletedQueue,
		ConsumerTag:   "gymtree-stats-worker",
		PrefetchCount: 10,
		Handler:       HandleWorkoutCompleted,
	})
}

// ConsumeProfileChanged 启动档案变更事件消费，阻塞直到通道关闭
func ConsumeProfileChanged(refresher Refresher) error {
	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.ProfileChangedQueue,
		ConsumerTag:   "gymtree-session-refresher",
		PrefetchCount: 10,
		Handler:       NewProfileChangedHandler(refresher),
	})
}
