package consts

// Recommended permissions for files and directories Tokbarr might create.
const (
	PermsHomeProgDir = 0o755
	PermsGenericDir  = 0o755
	PermsVideoFile   = 0o644
	PermsLogFile     = 0o644
)
