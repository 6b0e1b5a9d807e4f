// Package version holds the restdoc build information.
package version

// Set at build time with
// go build -ldflags "-X restdoc/internal/version.Version=1.0.0 -X restdoc/internal/version.Commit=abc123"
var (
	Version   = "0.4.0"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the version, followed by the short commit when one was
// stamped into the binary.
func Info() string {
	if Commit == "unknown" || len(Commit) <= 7 {
		return Version
	}
	return Version + " (" + Commit[:7] + ")"
}

// Full returns the multi-line text printed by "restdoc version".
func Full() string {
	return "restdoc version " + Version + "\n" +
		"Commit: " + Commit + "\n" +
		"Built: " + BuildDate + "\n"
}

// GeneratorName identifies restdoc in generated documents and reports.
func GeneratorName() string {
	return "restdoc/" + Version
}
