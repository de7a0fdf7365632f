package cmd

const appName = "deploymon"

// version is set at build time with -ldflags "-X github.com/dduksang/deploymon/internal/cmd.version=...".
var version = "dev"

// AppName returns the name of the application.
func AppName() string {
	return appName
}

// Version returns the build version of the application.
func Version() string {
	return version
}

// UserAgent returns the User-Agent sent with probes and alerts.
func UserAgent() string {
	return appName + "/" + version
}
