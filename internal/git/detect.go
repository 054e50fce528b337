package git

import (
	"context"
	"log/slog"
	"slices"

	"github.com/go-git/go-billy/v5"
)

type marker uint8

// Declaration order is detection priority: the rebase directories outrank
// the single-head files, and the sequencer only matters when neither
// CHERRY_PICK_HEAD nor REVERT_HEAD is present.
const (
	markerRebaseApply marker = iota
	markerRebaseMerge
	markerMerge
	markerCherryPick
	markerRevert
	markerSequencer
)

func (m marker) String() string {
	switch m {
	case markerRebaseApply:
		return "rebase-apply"
	case markerRebaseMerge:
		return "rebase-merge"
	case markerMerge:
		return "merge"
	case markerCherryPick:
		return "cherry-pick"
	case markerRevert:
		return "revert"
	default:
		return "sequencer"
	}
}

var markerEntries = map[string]struct {
	marker marker
	dir    bool
}{
	"CHERRY_PICK_HEAD": {marker: markerCherryPick},
	"MERGE_HEAD":       {marker: markerMerge},
	"REVERT_HEAD":      {marker: markerRevert},
	"rebase-apply":     {marker: markerRebaseApply, dir: true},
	"rebase-merge":     {marker: markerRebaseMerge, dir: true},
	"sequencer":        {marker: markerSequencer, dir: true},
}

// detectMarkers lists the control directory once and returns every paused
// operation marker found, highest priority first. A listing failure is
// reported as no markers.
func detectMarkers(ctx context.Context, fsys billy.Filesystem) ([]marker, error) {
	entries, err := fsys.ReadDir(".")
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		slog.Debug("control dir scan", slog.String("root", fsys.Root()), slog.Any("error", err))
		return nil, nil
	}
	var found []marker
	for _, entry := range entries {
		m, ok := markerEntries[entry.Name()]
		if !ok || m.dir != entry.IsDir() {
			continue
		}
		found = append(found, m.marker)
	}
	slices.Sort(found)
	return found, nil
}
