package protocol

// 错误码
const (
	ErrCodeUnknown           = 1000
	ErrCodeInvalidMsg        = 1001
	ErrCodeServerFull        = 1002 // 连接数已满
	ErrCodeRateLimited       = 1003 // 消息过于频繁
	ErrCodeInvalidRoom       = 2001
	ErrCodeInvalidPath       = 2002
	ErrCodeNotSubscribed     = 2003
	ErrCodeAlreadySubscribed = 2004
	ErrCodeStoreUnavailable  = 5001 // 后端存储不可用
	ErrCodeConnectionLost    = 5002 // 连接已断开
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:           "未知错误",
	ErrCodeInvalidMsg:        "无效的消息格式",
	ErrCodeServerFull:        "服务器连接数已满",
	ErrCodeRateLimited:       "操作过于频繁，请稍后再试",
	ErrCodeInvalidRoom:       "无效的房间号",
	ErrCodeInvalidPath:       "无效的文档路径",
	ErrCodeNotSubscribed:     "尚未订阅该房间",
	ErrCodeAlreadySubscribed: "已订阅该房间",
	ErrCodeStoreUnavailable:  "存储不可用",
	ErrCodeConnectionLost:    "与服务器的连接已断开",
}
