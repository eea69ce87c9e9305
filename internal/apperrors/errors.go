package apperrors

import (
	"errors"

	"github.com/palemoky/spymaster/internal/protocol"
)

// StoreError 文档存储与传输层错误
type StoreError struct {
	Code    int
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}

// 预定义错误
var (
	ErrInvalidMsg        = newStoreError(protocol.ErrCodeInvalidMsg)
	ErrServerFull        = newStoreError(protocol.ErrCodeServerFull)
	ErrRateLimited       = newStoreError(protocol.ErrCodeRateLimited)
	ErrInvalidRoom       = newStoreError(protocol.ErrCodeInvalidRoom)
	ErrInvalidPath       = newStoreError(protocol.ErrCodeInvalidPath)
	ErrNotSubscribed     = newStoreError(protocol.ErrCodeNotSubscribed)
	ErrAlreadySubscribed = newStoreError(protocol.ErrCodeAlreadySubscribed)
	ErrStoreUnavailable  = newStoreError(protocol.ErrCodeStoreUnavailable)
	ErrConnectionLost    = newStoreError(protocol.ErrCodeConnectionLost)
)

var byCode = map[int]*StoreError{}

func newStoreError(code int) *StoreError {
	e := &StoreError{Code: code, Message: protocol.ErrorMessages[code]}
	byCode[code] = e
	return e
}

// FromCode 将远端返回的错误码还原为本地错误，已知错误码返回预定义错误以便 errors.Is 比较
func FromCode(code int, message string) error {
	if e, ok := byCode[code]; ok {
		return e
	}
	if message == "" {
		message = protocol.ErrorMessages[protocol.ErrCodeUnknown]
	}
	return &StoreError{Code: code, Message: message}
}

// Code 提取错误码，非 StoreError 返回未知错误码
func Code(err error) int {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Code
	}
	return protocol.ErrCodeUnknown
}
