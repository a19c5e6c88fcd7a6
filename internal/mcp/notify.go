package mcp

import (
	"log/slog"

	"github.com/hpungsan/pocket/internal/progress"
)

// ProgressUpdatedMethod is the notification sent to every client after a
// capsule's progress is saved.
const ProgressUpdatedMethod = "notifications/pocket/progress_updated"

type notifier interface {
	SendNotificationToAllClients(method string, params map[string]any)
}

// progressNotifier forwards saved progress to clients so library views can
// refresh their known counts and best scores.
func progressNotifier(n notifier, l *slog.Logger) progress.Observer {
	return func(c progress.Change) {
		l.Debug("sending progress notification", "capsule_id", c.CapsuleID)
		n.SendNotificationToAllClients(ProgressUpdatedMethod, map[string]any{
			"capsule_id":  c.CapsuleID,
			"known_count": c.Record.KnownFlashcards.Len(),
			"best_score":  c.Record.BestScore,
		})
	}
}
