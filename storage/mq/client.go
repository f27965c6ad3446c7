package mq

import (
	"context"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"GymTree/config"
)

// 事件拓扑
const (
	EventsExchange        = "gymtree.events"
	WorkoutCompletedQueue = "gymtree.workout.completed"
	ProfileChangedQueue   = "gymtree.profile.changed"

	WorkoutCompletedRoutingKey = "workout.completed"
	ProfileChangedRoutingKey   = "profile.changed"
)

var (
	conn     *amqp.Connection
	connOnce sync.Once
	connErr  error
)

func Init() error {
	connOnce.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		conn, connErr = amqp.Dial(url)
		if connErr != nil {
			return
		}

		connErr = declareTopology()
	})

	return connErr
}

func Connection() *amqp.Connection {
	return conn
}

// declareTopology 声明交换机与队列，幂等
func declareTopology() error {
	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(
		EventsExchange,
		"direct",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	bindings := map[string]string{
		WorkoutCompletedQueue: WorkoutCompletedRoutingKey,
		ProfileChangedQueue:   ProfileChangedRoutingKey,
	}

	for queue, key := range bindings {
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			return err
		}
		if err := ch.QueueBind(queue, key, EventsExchange, false, nil); err != nil {
			return err
		}
	}

	return nil
}

func Close(ctx context.Context) error {
	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
