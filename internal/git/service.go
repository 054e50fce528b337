package git

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"golang.org/x/sync/singleflight"

	gitbackend "github.com/thiagokokada/git-paused/internal/git/backend"
)

const (
	BackendCLI    = "cli"
	BackendNative = "native"
)

type Config struct {
	// Backend selects the reference resolver: BackendCLI (default) or
	// BackendNative. git itself is always needed to run transitions.
	Backend   string
	GitBinary string
}

// Service answers paused operation questions for any number of
// repositories and runs their transitions.
type Service struct {
	backend        gitbackend.Backend
	openControlDir func(gitDir string) billy.Filesystem

	cache       *statusCache
	transitions singleflight.Group

	// locations maps a caller supplied path to its repository.
	locations sync.Map
}

type location struct {
	root   string
	gitDir string
}

type Option func(*Service)

// WithControlDir replaces the filesystem used to read git directories.
func WithControlDir(open func(gitDir string) billy.Filesystem) Option {
	return func(s *Service) { s.openControlDir = open }
}

func New(cfg Config, opts ...Option) (*Service, error) {
	cli, err := gitbackend.NewCLI(cfg.GitBinary)
	if err != nil {
		return nil, err
	}
	var b gitbackend.Backend
	switch cfg.Backend {
	case "", BackendCLI:
		b = cli
	case BackendNative:
		b = gitbackend.NewNative(cli)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendCLI, BackendNative)
	}
	slog.Debug("git service", slog.String("backend", cmp.Or(cfg.Backend, BackendCLI)))
	return NewWithBackend(b, opts...), nil
}

func NewWithBackend(b gitbackend.Backend, opts ...Option) *Service {
	s := &Service{
		backend:        b,
		openControlDir: func(gitDir string) billy.Filesystem { return osfs.New(gitDir) },
		cache:          newStatusCache(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetPausedOperationStatus returns the paused operation of the repository
// containing repoPath, or nil when nothing is in progress. Results are
// cached until Invalidate is called for the repository.
func (s *Service) GetPausedOperationStatus(ctx context.Context, repoPath string) (Status, error) {
	loc, err := s.locate(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	return s.cache.getOrCreate(ctx, loc.root, func(ctx context.Context) (Status, error) {
		b := &statusBuilder{
			backend:  s.backend,
			dir:      controlDir{fs: s.openControlDir(loc.gitDir)},
			repoPath: loc.root,
		}
		return b.build(ctx)
	})
}

// Invalidate forgets the cached status of the repository containing
// repoPath. The next read rebuilds it.
func (s *Service) Invalidate(repoPath string) {
	if v, ok := s.locations.Load(repoPath); ok {
		repoPath = v.(location).root
	}
	s.cache.invalidate(repoPath)
}

// Close drops every cached status. Builds still in flight are discarded.
func (s *Service) Close() {
	s.cache.close()
}

func (s *Service) resolveRoot(ctx context.Context, repoPath string) (string, error) {
	loc, err := s.locate(ctx, repoPath)
	return loc.root, err
}

func (s *Service) locate(ctx context.Context, repoPath string) (location, error) {
	if v, ok := s.locations.Load(repoPath); ok {
		return v.(location), nil
	}
	root, gitDir, err := gitbackend.Locate(ctx, s.backend, repoPath)
	if err != nil {
		return location{}, err
	}
	loc := location{root: root, gitDir: gitDir}
	s.locations.Store(repoPath, loc)
	s.locations.Store(root, loc)
	return loc, nil
}
