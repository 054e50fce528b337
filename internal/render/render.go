// Package render formats a paused operation status for the terminal.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/thiagokokada/git-paused/internal/git"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want text or json)", raw)
	}
}

type Options struct {
	Format Format
	Color  bool
	Theme  ThemePreference
}

// Write renders status to w. A nil status renders as "no operation in
// progress" (text) or null (json).
func Write(w io.Writer, status git.Status, opts Options) error {
	switch opts.Format {
	case FormatJSON:
		return writeJSON(w, status, opts)
	case FormatText, "":
		return writeText(w, status)
	default:
		return fmt.Errorf("unsupported format %q", opts.Format)
	}
}

func writeText(w io.Writer, status git.Status) error {
	if status == nil {
		_, err := fmt.Fprintln(w, "no operation in progress")
		return err
	}
	base := status.Base()

	header := string(status.Operation()) + " in progress"
	if rb, ok := status.(*git.RebaseStatus); ok {
		header += rebaseState(rb)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(label, value string) {
		fmt.Fprintf(tw, "  %s:\t%s\n", label, value)
	}
	row("current", describeCurrent(status))
	row("incoming", describeRef(base.Incoming))
	row("HEAD", describeRef(base.HEAD))

	switch s := status.(type) {
	case *git.MergeStatus:
		if s.MergeBase != nil {
			row("merge base", describeRef(*s.MergeBase))
		}
	case *git.RebaseStatus:
		row("onto", describeRef(s.Onto))
		row("source", describeRef(s.Source))
		if s.MergeBase != nil {
			row("merge base", describeRef(*s.MergeBase))
		}
		if s.Steps.Total > 0 {
			row("step", fmt.Sprintf("%d/%d", s.Steps.Current.Number, s.Steps.Total))
		}
		if c := s.Steps.Current.Commit; c != nil {
			row("applying", describeRef(*c))
		}
	}
	return tw.Flush()
}

func rebaseState(rb *git.RebaseStatus) string {
	var flags []string
	if rb.IsInteractive {
		flags = append(flags, "interactive")
	}
	switch {
	case rb.IsPaused:
		flags = append(flags, "paused")
	case !rb.HasStarted:
		flags = append(flags, "not started")
	}
	if len(flags) == 0 {
		return ""
	}
	return " (" + strings.Join(flags, ", ") + ")"
}

// describeCurrent labels a missing Current. Cherry-picks and reverts only
// lack one on a detached HEAD; for merges and rebases it means no single
// branch or tag could be named.
func describeCurrent(status git.Status) string {
	if ref := status.Base().Current; ref != nil {
		return describeRef(*ref)
	}
	switch status.(type) {
	case *git.MergeStatus, *git.RebaseStatus:
		return "(unknown)"
	default:
		return "(detached)"
	}
}

func describeRef(ref git.Reference) string {
	switch ref.Type {
	case git.RefTypeBranch:
		return withSHA(ref.Name, ref.SHA)
	case git.RefTypeTag:
		return withSHA("tag "+ref.Name, ref.SHA)
	}
	if ref.SHA == "" {
		return "-"
	}
	subject, _, _ := strings.Cut(ref.Message, "\n")
	if subject = strings.TrimSpace(subject); subject != "" {
		return shortSHA(ref.SHA) + " " + subject
	}
	return shortSHA(ref.SHA)
}

func withSHA(label, sha string) string {
	if sha == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, shortSHA(sha))
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func writeJSON(w io.Writer, status git.Status, opts Options) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newStatusView(status)); err != nil {
		return fmt.Errorf("encode status: %w", err)
	}
	if !opts.Color {
		_, err := w.Write(buf.Bytes())
		return err
	}
	return highlight(w, buf.String(), "json", StyleFor(opts.Theme))
}

func highlight(w io.Writer, source, language string, style *chroma.Style) error {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return fmt.Errorf("tokenise %s: %w", language, err)
	}
	return formatters.Get("terminal256").Format(w, style, iterator)
}
