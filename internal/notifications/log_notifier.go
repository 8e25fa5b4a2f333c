package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for a mail provider by writing the notification to
// the log.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyRoleAssigned(ctx context.Context, in RoleAssignedInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.role_assigned",
		"user_id", in.UserID,
		"email", in.Email,
		"name", in.Name,
		"role", in.Role.String(),
	)
	return nil
}
