package opserror

// 预定义的操作错误
// 每类可恢复的失败对应一个固定的 Code 和退出码，便于测试断言和脚本判断
var (
	// ErrMissingTool 宿主机缺少必需的管理命令（qm / pvesm / virt-customize 等）
	ErrMissingTool = &Error{
		Code:     "Preflight.MissingTool",
		Message:  "A required host command is not available in PATH.",
		ExitCode: 2,
	}

	// ErrUnknownOption 未知的命令行选项
	ErrUnknownOption = &Error{
		Code:     "Usage.UnknownOption",
		Message:  "Unknown option.",
		ExitCode: 2,
	}

	// ErrInvalidVMID VMID 不是合法的数字或超出 Proxmox 允许的范围
	ErrInvalidVMID = &Error{
		Code:     "VMID.Invalid",
		Message:  "The VMID is not a valid Proxmox VE VM identifier.",
		ExitCode: 3,
	}

	// ErrStorageNotFound 指定的存储池不存在或不可用
	ErrStorageNotFound = &Error{
		Code:     "Storage.NotFound",
		Message:  "The requested storage pool does not exist on this node.",
		ExitCode: 4,
	}

	// ErrImageNotFound 自定义镜像路径不存在
	ErrImageNotFound = &Error{
		Code:     "Image.NotFound",
		Message:  "The cloud image file does not exist.",
		ExitCode: 5,
	}

	// ErrSSHKeyNotFound SSH 公钥文件不存在或无法解析
	ErrSSHKeyNotFound = &Error{
		Code:     "Credential.SSHKeyNotFound",
		Message:  "The SSH public key file does not exist or is not a valid public key.",
		ExitCode: 6,
	}

	// ErrPasswordMismatch 两次输入的密码不一致
	ErrPasswordMismatch = &Error{
		Code:     "Credential.PasswordMismatch",
		Message:  "The passwords entered do not match.",
		ExitCode: 6,
	}

	// ErrInternalError 内部错误
	ErrInternalError = &Error{
		Code:     "InternalError",
		Message:  "An internal error has occurred.",
		ExitCode: 1,
	}
)
