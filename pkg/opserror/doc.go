// Package opserror 提供统一的操作错误类型，用于所有模块的错误处理和退出码映射
//
// 每个错误携带一个稳定的 Code（用于分类和测试断言）和一个 ExitCode
// （进程退出时使用）。错误默认是致命的：调用方报告后立即退出，不会自动重试。
//
// 使用示例：
//
//	// 包装预定义错误
//	err := opserror.WrapError(opserror.ErrStorageNotFound,
//	    fmt.Sprintf("storage pool %q not found", name), rawErr)
//
//	// 判断错误类型
//	if errors.Is(err, opserror.ErrStorageNotFound) {
//	    ...
//	}
//
//	// 进程退出
//	os.Exit(opserror.ExitCodeOf(err))
package opserror
