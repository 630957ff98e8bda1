package spades

// Release is the version of this build. Release builds override it with
//
//	-ldflags "-X github.com/iov-one/spades.Release=v0.1.0"
var Release = "v0.1.0-dev"

// GitCommit is the commit the binaries were built from, set the same way.
var GitCommit = ""

// Version is reported by the version commands and by the ABCI Info call.
func Version() string {
	if GitCommit == "" {
		return Release
	}
	return Release + " " + GitCommit
}
