package orchestrators

import (
	"context"
	"log/slog"

	"github.com/betterpursue/sproom/internal/adapters/gateway"
	"github.com/betterpursue/sproom/internal/domain/account"
	"github.com/betterpursue/sproom/internal/domain/activity"
)

// CommentGateway covers the comment endpoint.
type CommentGateway interface {
	CreateComment(ctx context.Context, activityID int64, content string) (activity.Comment, error)
}

// CreateCommentInput carries input for the orchestrator.
type CreateCommentInput struct {
	ActivityID int64
	Content    string
}

// CreateCommentDeps holds dependencies for CreateComment.
type CreateCommentDeps struct {
	Gateway  CommentGateway
	Notifier Notifier
	Session  *account.Session
}

// ExecuteCreateComment posts a comment on an activity.
// PRE: Deps are populated
// POST: Returns the backend's stored comment
func ExecuteCreateComment(ctx context.Context, input CreateCommentInput, deps CreateCommentDeps) (activity.Comment, error) {
	if deps.Session == nil || deps.Session.Validate() != nil {
		deps.Notifier.Error("please sign in first")
		return activity.Comment{}, ErrNotSignedIn
	}
	if input.ActivityID <= 0 {
		deps.Notifier.Error("invalid activity")
		return activity.Comment{}, ErrInvalidActivityID
	}
	if err := activity.ValidateCommentContent(input.Content); err != nil {
		deps.Notifier.Error(err.Error())
		return activity.Comment{}, err
	}

	comment, err := deps.Gateway.CreateComment(ctx, input.ActivityID, input.Content)
	if err != nil {
		deps.Notifier.Error(gateway.MessageOf(err, "failed to post comment"))
		slog.Error("comment_failed", "activity_id", input.ActivityID, "error", err)
		return activity.Comment{}, err
	}

	deps.Notifier.Success("comment posted")
	return comment, nil
}
