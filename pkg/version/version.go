package version

// Application version information
var (
	Version = "0.1.0"
	Commit  = ""
)

// Name is the service name reported by the info endpoints.
const Name = "File Server"
