package errors

import "errors"

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID   = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
)

// 训练计划模块错误。
var (
	PlanEntryNotFound  = Definition{Code: "PLAN_ENTRY_NOT_FOUND", Message: "Workout plan entry not found"}
	PlanDayInvalid     = Definition{Code: "PLAN_DAY_INVALID", Message: "Invalid weekday name"}
	PlanDayDuplicate   = Definition{Code: "PLAN_DAY_DUPLICATE", Message: "Plan entry for this day already exists"}
	PlanWindowInvalid  = Definition{Code: "PLAN_WINDOW_INVALID", Message: "Start time must not be after end time"}
	PlanTimeInvalid    = Definition{Code: "PLAN_TIME_INVALID", Message: "Time must be HH:MM in 24-hour format"}
)

// 个人资料模块错误。
var (
	ProfileNotFound    = Definition{Code: "PROFILE_NOT_FOUND", Message: "Profile not found"}
	GymLocationInvalid = Definition{Code: "GYM_LOCATION_INVALID", Message: "Invalid gym coordinates"}
	GymLocationNotSet  = Definition{Code: "GYM_LOCATION_NOT_SET", Message: "Gym location not set"}
)

// 打卡验证模块错误。
var (
	WorkoutAlreadyRecorded = Definition{Code: "WORKOUT_ALREADY_RECORDED", Message: "Workout already recorded today"}
	SessionNotFound        = Definition{Code: "SESSION_NOT_FOUND", Message: "No active verification session"}
	SessionAlreadyActive   = Definition{Code: "SESSION_ALREADY_ACTIVE", Message: "Verification session already active"}
	LocationPermission     = Definition{Code: "LOCATION_PERMISSION_DENIED", Message: "Permission to access location was denied"}
	LocationUnavailable    = Definition{Code: "LOCATION_UNAVAILABLE", Message: "No location fix available"}
	SampleInvalid          = Definition{Code: "SAMPLE_INVALID", Message: "Invalid location sample"}
)

// token 包内部使用的哨兵错误。
var (
	ErrTokenGeneratorNotInitialized = errors.New("token generator not initialized")
	ErrUnexpectedSigningMethod      = errors.New("unexpected signing method")
	ErrInvalidToken                 = errors.New("invalid token")
	ErrInvalidTokenClaims           = errors.New("invalid token claims")
	ErrInvalidTokenType             = errors.New("invalid token type")
	ErrUserIDNotFound               = errors.New("user id not found in token")
)

// SkipMessageError 表示消息应被确认但跳过处理（重复投递等场景）。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return "skip message: " + e.Reason
}

// IsSkip 判断错误是否为跳过消息错误。
func IsSkip(err error) bool {
	var skip *SkipMessageError
	return errors.As(err, &skip)
}

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:           Unauthorized,
	InvalidUserID.Code:          InvalidUserID,
	TooManyRequests.Code:        TooManyRequests,
	PlanEntryNotFound.Code:      PlanEntryNotFound,
	PlanDayInvalid.Code:         PlanDayInvalid,
	PlanDayDuplicate.Code:       PlanDayDuplicate,
	PlanWindowInvalid.Code:      PlanWindowInvalid,
	PlanTimeInvalid.Code:        PlanTimeInvalid,
	ProfileNotFound.Code:        ProfileNotFound,
	GymLocationInvalid.Code:     GymLocationInvalid,
	GymLocationNotSet.Code:      GymLocationNotSet,
	WorkoutAlreadyRecorded.Code: WorkoutAlreadyRecorded,
	SessionNotFound.Code:        SessionNotFound,
	SessionAlreadyActive.Code:   SessionAlreadyActive,
	LocationPermission.Code:     LocationPermission,
	LocationUnavailable.Code:    LocationUnavailable,
	SampleInvalid.Code:          SampleInvalid,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
