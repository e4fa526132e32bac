// Package buildinfo carries the firmware identity stamped in at link time:
//
//	-ldflags "-X tab5/internal/buildinfo.Version=v1.2.0 -X tab5/internal/buildinfo.Commit=abc1234"
package buildinfo

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short returns the most specific identifier available: the version when
// set, else the commit, else "dev".
func Short() string {
	if Version != "" && Version != "dev" {
		return Version
	}
	if Commit != "" && Commit != "unknown" {
		return Commit
	}
	return "dev"
}

// Long adds the commit and build date when they are known.
func Long() string {
	s := Short()
	if Commit != "" && Commit != "unknown" && s != Commit {
		s += " " + Commit
	}
	if Date != "" && Date != "unknown" {
		s += " " + Date
	}
	return s
}
