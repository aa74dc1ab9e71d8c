package audit

import (
	"context"

	"example.com/snapgram/pkg/log"
)

// Audit actions.
const (
	ActionRegister    = "user.register"
	ActionLogin       = "user.login"
	ActionLoginFailed = "user.login_failed"
	ActionCreatePost  = "post.create"
	ActionLikePost    = "post.like"
	ActionComment     = "post.comment"
	ActionFollow      = "graph.follow"
	ActionUnfollow    = "graph.unfollow"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action string, userID string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action string, userID string, detail string, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUserID, userID).
		Str(FieldDetail, detail).
		Msg(msg)
}
