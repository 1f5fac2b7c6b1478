package version

import (
	"runtime/debug"
	"strings"
)

const devel = "(devel)"

// String reports the released module version, or "(devel)" with the short
// VCS revision for local and pseudo-versioned builds.
func String() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return devel
	}
	return fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) string {
	v := info.Main.Version
	if v != "" && v != devel && !strings.Contains(v, "+dirty") && !isPseudoVersion(v) {
		return v
	}

	var revision string
	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if revision == "" {
		return devel
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified {
		revision += "-dirty"
	}
	return "(devel " + revision + ")"
}

// isPseudoVersion matches vX.Y.Z-<14 digit timestamp>-<12+ hex hash>.
func isPseudoVersion(v string) bool {
	v, _, _ = strings.Cut(v, "+")

	parts := strings.Split(v, "-")
	if len(parts) < 3 {
		return false
	}

	ts := parts[len(parts)-2]
	hash := parts[len(parts)-1]
	// Pre-release pseudo-versions fold the timestamp into "0.<ts>".
	if i := strings.LastIndexByte(ts, '.'); i >= 0 {
		ts = ts[i+1:]
	}
	return len(ts) == 14 && strings.Trim(ts, "0123456789") == "" &&
		len(hash) >= 12 && strings.Trim(hash, "0123456789abcdefABCDEF") == ""
}
