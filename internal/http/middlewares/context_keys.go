package middlewares

const (
	ctxUserKey = "auth.user"
	ctxTaskKey = "tasks.task"

	CtxRequestID = "request_id"
)
