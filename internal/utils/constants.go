package utils

// EmptyString represents a reusable empty string constant.
const EmptyString = ""

// Application-wide names shared by configuration, output, and the entry point.
const (
	// ApplicationName is the binary and command name.
	ApplicationName = "dirindex"
	// GlobalConfigDirectoryName is the directory under the user's home holding the global configuration.
	GlobalConfigDirectoryName = "." + ApplicationName
	// ConfigFileName is the configuration file name inside the global configuration directory.
	ConfigFileName = "config.yaml"
	// LocalConfigFileName is the configuration file looked up in the working directory.
	LocalConfigFileName = "." + ApplicationName + ".yaml"
	// OutputFolderPrefix starts the name of the folder receiving generated files.
	OutputFolderPrefix = "Items_in_"
	// LockFileName guards an output folder against concurrent writers.
	LockFileName = "." + ApplicationName + ".lock"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// Messages reported by the entry point.
const (
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %v"
	ApplicationExecutionFailedMessage       = "application execution failed"
)
