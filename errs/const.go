package errs

const (
	ErrCode_OK              = 0
	ErrCode_Unknown         = 1
	ErrCode_Closed          = 2
	ErrCode_QueueFull       = 3
	ErrCode_Config          = 4
	ErrCode_Relay           = 5
	ErrCode_SchedulerPinned = 6
)

var (
	Unknown         = CreateCodeError(ErrCode_Unknown, "UNKNOWN")
	Closed          = CreateCodeError(ErrCode_Closed, "CLOSED")
	QueueFull       = CreateCodeError(ErrCode_QueueFull, "QUEUE_FULL")
	Config          = CreateCodeError(ErrCode_Config, "CONFIG")
	Relay           = CreateCodeError(ErrCode_Relay, "RELAY")
	SchedulerPinned = CreateCodeError(ErrCode_SchedulerPinned, "SCHEDULER_PINNED")
)
