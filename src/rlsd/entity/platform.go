package entity

// Platform is the operating system and architecture pair of a Go build.
type Platform struct {
	GOOS   string
	GOARCH string
}

var _hostTriples = map[Platform]string{
	{GOOS: "linux", GOARCH: "amd64"}:   "x86_64-unknown-linux-gnu",
	{GOOS: "linux", GOARCH: "arm64"}:   "aarch64-unknown-linux-gnu",
	{GOOS: "darwin", GOARCH: "amd64"}:  "x86_64-apple-darwin",
	{GOOS: "darwin", GOARCH: "arm64"}:  "aarch64-apple-darwin",
	{GOOS: "windows", GOARCH: "amd64"}: "x86_64-pc-windows-msvc",
	{GOOS: "windows", GOARCH: "arm64"}: "aarch64-pc-windows-msvc",
}

// HostTriple returns the Rust target triple of the platform.
func (p Platform) HostTriple() (string, bool) {
	t, ok := _hostTriples[p]
	return t, ok
}

// ExecutableSuffix returns the file name suffix of executables on the platform.
func (p Platform) ExecutableSuffix() string {
	if p.GOOS == "windows" {
		return ".exe"
	}
	return ""
}
