package queue

import (
	"time"

	"go.uber.org/zap"

	"GymTree/internal/model"
	"GymTree/pkg/logger"
	"GymTree/pkg/snowflake"
	"GymTree/storage/mq"
)

// Producer 事件发布器，实现引擎的 EventPublisher
type Producer struct{}

func NewProducer() *Producer {
	return &Producer{}
}

// PublishWorkoutCompleted 发布训练完成事件
func (p *Producer) PublishWorkoutCompleted(msg model.WorkoutCompletedMessage) error {
	return mq.PublishMessage(mq.EventsExchange, mq.WorkoutCompletedRoutingKey, msg)
}

// PublishProfileChanged 发布档案变更事件
// 发布失败只记日志，变更本身已经落库
func PublishProfileChanged(profileID int64, changeType string) {
	msg := model.ProfileChangedMessage{
		MessageID:  snowflake.NextID(snowflake.GeneratorTypeMessage),
		ProfileID:  profileID,
		ChangeType: changeType,
		Timestamp:  time.Now().Unix(),
	}

	if err := mq.PublishMessage(mq.EventsExchange, mq.ProfileChangedRoutingKey, msg); err != nil {
		logger.Logger.Error("Failed to publish profile changed event",
			zap.Int64("profile_id", profileID),
			zap.String("change_type", changeType),
			zap.Error(err),
		)
	}
}
