package git

import (
	"context"
	"log/slog"
	"strings"
)

// sequencer handles multi-commit cherry-pick and revert runs, where only
// sequencer/todo says what is being applied. The sha in the todo list is
// used as is.
func (b *statusBuilder) sequencer(ctx context.Context) (Status, error) {
	todo, ok, err := b.dir.readRaw(ctx, "sequencer", "todo")
	if err != nil || !ok || strings.TrimSpace(todo) == "" {
		return nil, err
	}
	op, sha, ok := parseSequencerTodo(todo)
	if !ok {
		slog.Debug("unrecognized sequencer todo", slog.String("repo", b.repoPath))
		return nil, nil
	}
	return b.pickStatus(ctx, op, sha)
}
