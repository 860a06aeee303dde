package constants

import "time"

// 审计动作
const (
	AuditLogin            = "LOGIN"
	AuditLoginFailed      = "LOGIN_FAILED"
	AuditLoginDirectory   = "LOGIN_DIRECTORY"
	AuditRegister         = "REGISTER"
	AuditChangePassword   = "CHANGE_PASSWORD"
	AuditCreateConnection = "CREATE_CONNECTION"
	AuditUpdateConnection = "UPDATE_CONNECTION"
	AuditDeleteConnection = "DELETE_CONNECTION"
	AuditToggleFavorite   = "TOGGLE_FAVORITE"
	AuditViewConnection   = "VIEW_CONNECTION"
	AuditLaunchConnection = "LAUNCH_CONNECTION"
	AuditCreateUser       = "CREATE_USER"
	AuditUpdateUser       = "UPDATE_USER"
	AuditToggleUserStatus = "TOGGLE_USER_STATUS"
	AuditDeleteUser       = "DELETE_USER"
	AuditExport           = "EXPORT_AUDIT"
	AuditArchive          = "ARCHIVE_AUDIT"
)

// 写入审计记录的超时时间，与请求本身的取消无关
const AuditWriteTimeout = 3 * time.Second
