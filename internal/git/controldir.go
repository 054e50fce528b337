package git

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// controlDir reads raw values out of a repository's git directory. It never
// interprets them.
type controlDir struct {
	fs billy.Filesystem
}

// read returns the trimmed content of the file at parts. ok is false when the
// file cannot be read for any reason.
func (c controlDir) read(ctx context.Context, parts ...string) (string, bool, error) {
	content, ok, err := c.readRaw(ctx, parts...)
	return strings.TrimSpace(content), ok, err
}

// readRaw is read without trimming, for files whose line layout matters.
func (c controlDir) readRaw(ctx context.Context, parts ...string) (string, bool, error) {
	name := path.Join(parts...)
	data, err := util.ReadFile(c.fs, name)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", false, ctxErr
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("control dir read", slog.String("path", name), slog.Any("error", err))
		}
		return "", false, nil
	}
	return string(data), true, nil
}

// readInt parses the file at parts as a decimal integer, returning 0 when it
// is missing or malformed.
func (c controlDir) readInt(ctx context.Context, parts ...string) (int, error) {
	s, ok, err := c.read(ctx, parts...)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (c controlDir) exists(ctx context.Context, parts ...string) (bool, error) {
	_, err := c.fs.Stat(path.Join(parts...))
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	return err == nil, nil
}
