package backend

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Minimum supported git version for the CLI backend. "git merge --quit" is
// the newest subcommand flag we rely on.
var minGitVersion = gitVersion{major: 2, minor: 23, patch: 0}

type gitVersion struct {
	major int
	minor int
	patch int
}

func MinGitVersion() string {
	return minGitVersion.String()
}

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v.major, v.minor, v.patch)
}

func (v gitVersion) less(other gitVersion) bool {
	if v.major != other.major {
		return v.major < other.major
	}
	if v.minor != other.minor {
		return v.minor < other.minor
	}
	return v.patch < other.patch
}

func parseGitVersionOutput(out string) (gitVersion, bool) {
	s := strings.TrimSpace(out)
	if s == "" {
		return gitVersion{}, false
	}
	// Common formats:
	// - "git version 2.44.0"
	// - "git version 2.39.3 (Apple Git-146)"
	// - "git version 2.39.3.windows.1"
	if idx := strings.Index(s, "git version"); idx >= 0 {
		s = strings.TrimSpace(s[idx+len("git version"):])
	}
	start := strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return gitVersion{}, false
	}
	s = s[start:]
	end := 0
	for end < len(s) {
		c := s[end]
		if (c >= '0' && c <= '9') || c == '.' {
			end++
			continue
		}
		break
	}
	s = strings.Trim(s[:end], ".")
	if s == "" {
		return gitVersion{}, false
	}

	parts := strings.Split(s, ".")
	if len(parts) < 2 {
		return gitVersion{}, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return gitVersion{}, false
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return gitVersion{}, false
	}
	patch := 0
	if len(parts) >= 3 {
		if p, err := strconv.Atoi(parts[2]); err == nil {
			patch = p
		}
	}
	return gitVersion{major: major, minor: minor, patch: patch}, true
}

func validateGitVersionOutput(out string) error {
	got, ok := parseGitVersionOutput(out)
	if !ok {
		return fmt.Errorf("unable to parse git version output: %q", strings.TrimSpace(out))
	}
	if got.less(minGitVersion) {
		return fmt.Errorf("git %s is too old; git-paused requires git >= %s", got, minGitVersion)
	}
	return nil
}

type gitVersionInfo struct {
	out string
	err error
}

var (
	gitVersionMu    sync.Mutex
	gitVersionByBin = map[string]gitVersionInfo{}
)

func gitVersionInfoCached(bin string) gitVersionInfo {
	gitVersionMu.Lock()
	defer gitVersionMu.Unlock()
	if info, ok := gitVersionByBin[bin]; ok {
		return info
	}
	var info gitVersionInfo
	outBytes, err := exec.Command(bin, "--version").CombinedOutput()
	info.out = strings.TrimSpace(string(outBytes))
	switch {
	case err != nil && info.out != "":
		info.err = fmt.Errorf("%s --version: %v: %s", bin, err, info.out)
	case err != nil:
		info.err = fmt.Errorf("%s --version: %w", bin, err)
	}
	gitVersionByBin[bin] = info
	return info
}

// GitVersion reports the raw "git --version" output of bin ("git" when empty).
func GitVersion(bin string) (string, error) {
	if strings.TrimSpace(bin) == "" {
		bin = defaultGitBinary
	}
	info := gitVersionInfoCached(bin)
	return info.out, info.err
}

func ensureMinGitVersion(bin string) error {
	info := gitVersionInfoCached(bin)
	if info.err != nil {
		return info.err
	}
	return validateGitVersionOutput(info.out)
}
