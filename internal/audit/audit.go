package audit

import (
	"context"

	"github.com/chatdir/chatdir/internal/log"
)

// Audit actions for directory mutations.
const (
	ActionCreateRoom = "room.create"
	ActionDeleteRoom = "room.delete"
	ActionRenameRoom = "room.rename"
	ActionJoinRoom   = "room.join"
	ActionLeaveRoom  = "room.leave"
	ActionCreateUser = "user.create"
	ActionDeleteUser = "user.delete"
	ActionRenameUser = "user.rename"
)

// Field constants for audit entries.
const (
	FieldAction = "action"
	FieldDetail = "detail"
)

// Log emits a structured audit log entry via the context logger.
func Log(ctx context.Context, action, subject, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUser, subject).
		Msg(msg)
}

// LogWithDetail emits an audit log with an extra detail field.
func LogWithDetail(ctx context.Context, action, subject, detail, msg string) {
	l := log.Ctx(ctx)
	l.Info().
		Str(log.FieldLogType, log.LogTypeAudit).
		Str(FieldAction, action).
		Str(log.FieldUser, subject).
		Str(FieldDetail, detail).
		Msg(msg)
}
