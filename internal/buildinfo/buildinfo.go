package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// Info describes the running binary.
type Info struct {
	Version string
	Tags    string
	// Revision is the VCS commit the binary was built from, when recorded.
	Revision string
	Modified bool
}

var readBuildInfo = debug.ReadBuildInfo

// Read collects build metadata. Version is "dev" when the module version is
// unset, as it is for `go run` and local builds.
func Read() Info {
	res := Info{Version: "dev"}
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return res
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		res.Version = v
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "-tags":
			res.Tags = setting.Value
		case "vcs.revision":
			res.Revision = setting.Value
		case "vcs.modified":
			res.Modified = setting.Value == "true"
		}
	}
	return res
}

func (i Info) String() string {
	s := i.Version
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if i.Modified {
			rev += "-dirty"
		}
		s = fmt.Sprintf("%s (%s)", s, rev)
	}
	if i.Tags != "" {
		s = fmt.Sprintf("%s (tags: %s)", s, i.Tags)
	}
	return s
}
