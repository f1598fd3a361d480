package apperrors

import "errors"

var (
	ErrEventNotFound        = errors.New("event not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrNotificationNotFound = errors.New("notification not found")

	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")

	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidOperation = errors.New("invalid operation")

	// 成員狀態相關
	ErrAlreadyMember    = errors.New("user is already a participant")
	ErrAlreadyRequested = errors.New("user already requested to join")
	ErrNoSuchRequest    = errors.New("no such join request")
	ErrEventFull        = errors.New("event is full")
	ErrNotAParticipant  = errors.New("user is not a participant")

	// ErrVersionConflict 只在 repository 與 service 之間流通，不會回給呼叫端
	ErrVersionConflict  = errors.New("version conflict")
	ErrConcurrentUpdate = errors.New("event was modified concurrently, please retry")

	ErrInternalServerError = errors.New("internal server error")
)
