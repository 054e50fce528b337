package cmd

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/thiagokokada/git-paused/internal/buildinfo"
	"github.com/thiagokokada/git-paused/internal/git"
	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
	"github.com/thiagokokada/git-paused/internal/logging"
	"github.com/thiagokokada/git-paused/internal/render"
)

const (
	envBackend = "GIT_PAUSED_BACKEND"
	envGit     = "GIT_PAUSED_GIT"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
}

// options holds the persistent flags shared by every command.
type options struct {
	repoPath  string
	backend   string
	gitBinary string
	verbose   bool
	logFormat string
}

func (o *options) newService() (*git.Service, error) {
	return git.New(git.Config{Backend: o.backend, GitBinary: o.gitBinary})
}

type outputOptions struct {
	format string
	color  string
	theme  string
}

func (o *outputOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", string(render.FormatText), "output format: text or json")
	cmd.Flags().StringVar(&o.color, "color", render.ColorAuto.String(), "colorize json output: auto, always or never")
	cmd.Flags().StringVar(&o.theme, "theme", render.ThemeAuto.String(), "highlight theme: auto, light or dark")
}

func (o *outputOptions) renderOptions(w io.Writer) (render.Options, error) {
	format, err := render.ParseFormat(o.format)
	if err != nil {
		return render.Options{}, err
	}
	color, err := render.ParseColorMode(o.color)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Format: format,
		Color:  color.Enabled(w),
		Theme:  render.ThemePreferenceFromString(o.theme),
	}, nil
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "git-paused",
		Short: "Inspect and resume paused git operations",
		Long: "Report the rebase, merge, cherry-pick or revert a repository is in the middle of, " +
			"and abort or continue it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := "warn"
			if o.verbose {
				level = "debug"
			}
			logger, err := logging.New(stderr, level, o.logFormat)
			if err != nil {
				return err
			}
			logger.Debug("starting", slog.String("version", buildinfo.Read().String()), slog.String("command", cmd.Name()))
			slog.SetDefault(logger)
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&o.repoPath, "repo", "C", ".", "path inside the repository")
	flags.StringVar(&o.backend, "backend", cmp.Or(os.Getenv(envBackend), git.BackendCLI),
		"reference resolver: cli or native (env "+envBackend+")")
	flags.StringVar(&o.gitBinary, "git", os.Getenv(envGit), "git binary to run (env "+envGit+")")
	flags.BoolVarP(&o.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")

	rootCmd.AddCommand(
		newStatusCommand(o, stdout),
		newAbortCommand(o, stderr),
		newContinueCommand(o, stderr),
		newWatchCommand(o, stdout),
		newVersionCommand(o, stdout),
	)
	return rootCmd
}

func newStatusCommand(o *options, stdout io.Writer) *cobra.Command {
	out := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the paused operation, if any",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ro, err := out.renderOptions(stdout)
			if err != nil {
				return err
			}
			svc, err := o.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			status, err := svc.GetPausedOperationStatus(cmd.Context(), o.repoPath)
			if err != nil {
				return err
			}
			return render.Write(stdout, status, ro)
		},
	}
	out.addFlags(cmd)
	return cmd
}

func newAbortCommand(o *options, stderr io.Writer) *cobra.Command {
	var quit bool
	cmd := &cobra.Command{
		Use:   "abort",
		Short: "Abort the paused operation",
		Long:  "Abort the paused operation and restore the pre-operation state. Does nothing when no operation is in progress.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			err = svc.AbortPausedOperation(cmd.Context(), o.repoPath, git.AbortOptions{Quit: quit})
			return withHint(stderr, err)
		},
	}
	cmd.Flags().BoolVar(&quit, "quit", false, "stop the operation but keep the working tree and index as they are")
	return cmd
}

func newContinueCommand(o *options, stderr io.Writer) *cobra.Command {
	var skip bool
	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continue the paused operation",
		Long:  "Continue the paused operation after conflicts were resolved. Does nothing when no operation is in progress.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := o.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			err = svc.ContinuePausedOperation(cmd.Context(), o.repoPath, git.ContinueOptions{Skip: skip})
			return withHint(stderr, err)
		},
	}
	cmd.Flags().BoolVar(&skip, "skip", false, "skip the current step instead of applying it")
	return cmd
}

// withHint prints the remediation for a classified transition failure.
func withHint(stderr io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var reason git.FailureReason
	var abortErr *git.PausedOperationAbortError
	var contErr *git.PausedOperationContinueError
	switch {
	case errors.As(err, &abortErr):
		reason = abortErr.Reason
	case errors.As(err, &contErr):
		reason = contErr.Reason
	}
	if hint := reason.Hint(); hint != "" {
		fmt.Fprintf(stderr, "hint: %s\n", hint)
	}
	return err
}

func newWatchCommand(o *options, stdout io.Writer) *cobra.Command {
	out := &outputOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the paused operation every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ro, err := out.renderOptions(stdout)
			if err != nil {
				return err
			}
			svc, err := o.newService()
			if err != nil {
				return err
			}
			defer svc.Close()

			err = watch(cmd.Context(), svc, o.repoPath, stdout, ro)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	out.addFlags(cmd)
	return cmd
}

// watch renders the status once and again after every change that alters
// the rendered output.
func watch(ctx context.Context, svc *git.Service, repoPath string, w io.Writer, ro render.Options) error {
	changes := make(chan struct{}, 1)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Watch(ctx, repoPath, func() {
			select {
			case changes <- struct{}{}:
			default:
			}
		})
	})
	g.Go(func() error {
		var last []byte
		for {
			status, err := svc.GetPausedOperationStatus(ctx, repoPath)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := render.Write(&buf, status, ro); err != nil {
				return err
			}
			if !bytes.Equal(buf.Bytes(), last) {
				if _, err := w.Write(buf.Bytes()); err != nil {
					return err
				}
				last = buf.Bytes()
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-changes:
			}
		}
	})
	return g.Wait()
}

func newVersionCommand(o *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			fmt.Fprintf(stdout, "git-paused %s\n", buildinfo.Read())
			gitVersion, err := gitbackend.GitVersion(o.gitBinary)
			if err != nil {
				fmt.Fprintf(stdout, "git: unavailable (%v)\n", err)
				return nil
			}
			fmt.Fprintf(stdout, "%s (minimum %s)\n", gitVersion, gitbackend.MinGitVersion())
			return nil
		},
	}
}
