package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 验证引擎相关指标
var (
	verificationAttemptsTotal metric.Int64Counter
	verificationDuration      metric.Float64Histogram
	workoutsRecordedTotal     metric.Int64Counter
	locationSamplesTotal      metric.Int64Counter
	locationSamplesDropped    metric.Int64Counter
	distanceToGymMeters       metric.Float64Histogram
	activeSessions            metric.Int64UpDownCounter
)

// InitEngineMetrics 初始化验证引擎指标
func InitEngineMetrics(meter metric.Meter) error {
	var err error

	verificationAttemptsTotal, err = meter.Int64Counter(
		"engine.verification.attempts.total",
		metric.WithDescription("Total number of workout verification attempts"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return err
	}

	verificationDuration, err = meter.Float64Histogram(
		"engine.verification.duration",
		metric.WithDescription("Workout verification attempt duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5),
	)
	if err != nil {
		return err
	}

	workoutsRecordedTotal, err = meter.Int64Counter(
		"engine.workouts.recorded.total",
		metric.WithDescription("Total number of completed workouts recorded"),
		metric.WithUnit("{workout}"),
	)
	if err != nil {
		return err
	}

	locationSamplesTotal, err = meter.Int64Counter(
		"engine.location.samples.total",
		metric.WithDescription("Total number of location samples accepted"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return err
	}

	locationSamplesDropped, err = meter.Int64Counter(
		"engine.location.samples.dropped",
		metric.WithDescription("Location samples dropped by the accuracy filter"),
		metric.WithUnit("{sample}"),
	)
	if err != nil {
		return err
	}

	distanceToGymMeters, err = meter.Float64Histogram(
		"engine.distance_to_gym",
		metric.WithDescription("Distance between device and gym at proximity check"),
		metric.WithUnit("m"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 100, 250, 500, 1000, 5000, 20000),
	)
	if err != nil {
		return err
	}

	activeSessions, err = meter.Int64UpDownCounter(
		"engine.sessions.active",
		metric.WithDescription("Number of active verification sessions"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordVerificationAttempt 记录一次验证尝试及其结果
func RecordVerificationAttempt(ctx context.Context, outcome string, seconds float64) {
	if verificationAttemptsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	verificationAttemptsTotal.Add(ctx, 1, attrs)
	verificationDuration.Record(ctx, seconds, attrs)
}

// RecordWorkoutRecorded 记录一次打卡成功
func RecordWorkoutRecorded(ctx context.Context) {
	if workoutsRecordedTotal == nil {
		return
	}
	workoutsRecordedTotal.Add(ctx, 1)
}

// RecordLocationSample 记录采样接受/丢弃
func RecordLocationSample(ctx context.Context, accepted bool) {
	if locationSamplesTotal == nil {
		return
	}
	if accepted {
		locationSamplesTotal.Add(ctx, 1)
	} else {
		locationSamplesDropped.Add(ctx, 1)
	}
}

// RecordDistance 记录一次近邻检查得到的距离
func RecordDistance(ctx context.Context, meters float64, inRange bool) {
	if distanceToGymMeters == nil {
		return
	}
	distanceToGymMeters.Record(ctx, meters,
		metric.WithAttributes(attribute.Bool("in_range", inRange)),
	)
}

// SessionStarted / SessionStopped 维护活跃会话计数
func SessionStarted(ctx context.Context) {
	if activeSessions == nil {
		return
	}
	activeSessions.Add(ctx, 1)
}

func SessionStopped(ctx context.Context) {
	if activeSessions == nil {
		return
	}
	activeSessions.Add(ctx, -1)
}
