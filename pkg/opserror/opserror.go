package opserror

import (
	"errors"
	"fmt"
)

// Error 单个操作错误
// Code 用于错误分类和测试断言，ExitCode 决定进程退出码
type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ExitCode int    `json:"-"` // 进程退出码，不会序列化
	RawError error  `json:"-"` // 内部错误，用于调试，不会序列化
}

// Error 实现 error 接口
func (e *Error) Error() string {
	str := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.RawError != nil {
		str += fmt.Sprintf(" (RawError: %v)", e.RawError)
	}
	return str
}

// Is 实现 errors.Is 接口，用于错误类型判断
// 如果 target 是 *Error 类型且 Code 相同，则返回 true
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}

	if e == nil || t == nil {
		return false
	}

	return e.Code == t.Code
}

// Unwrap 实现 errors.Unwrap 接口，返回底层错误
// 如果设置了 RawError，则返回 RawError；否则返回 nil
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.RawError
}

// 编译时检查 Error 是否实现了所有必需的接口
var _ interface {
	// Error 必须实现的接口
	Error() string
	// 实现了该接口后，可以使用 errors.Is() 函数来判断错误类型
	Is(target error) bool
	// 实现了该接口后，可以使用 errors.As() 和 errors.Unwrap() 函数来获取到原始的错误类型
	Unwrap() error
} = (*Error)(nil)

// NewError 创建新的错误
// 默认退出码为 1
func NewError(code, message string) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: 1,
	}
}

// NewErrorWithExitCode 创建新的错误，指定退出码
func NewErrorWithExitCode(code, message string, exitCode int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
	}
}

// NewErrorWithRaw 创建新的错误，包含原始错误信息
// rawError 用于调试，不会出现在面向操作员的消息中
// 默认退出码为 1
func NewErrorWithRaw(code, message string, rawError error) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: 1,
		RawError: rawError,
	}
}

// WrapError 包装预定义的错误，添加原始错误信息
// 保留预定义错误的 Code 和 ExitCode，但使用自定义消息和原始错误
func WrapError(baseErr *Error, message string, rawError error) *Error {
	return &Error{
		Code:     baseErr.Code,
		Message:  message,
		ExitCode: baseErr.ExitCode,
		RawError: rawError,
	}
}

// ExitCodeOf 返回错误对应的进程退出码
// 非 *Error 类型的错误统一返回 1，nil 返回 0
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}

	var opsErr *Error
	if errors.As(err, &opsErr) && opsErr.ExitCode != 0 {
		return opsErr.ExitCode
	}
	return 1
}
