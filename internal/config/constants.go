package config

const (
	// DefaultEnvFile is the dotenv file read when no other is given.
	DefaultEnvFile = ".env"
	// DefaultTestsDir is the directory of YAML test definitions.
	DefaultTestsDir = "tests"
	// DefaultWorkers is the number of tests run concurrently.
	DefaultWorkers = 4
	// DefaultLogLevel is the logrus level name.
	DefaultLogLevel = "info"
	// DefaultLogFilePath is where file logging writes.
	DefaultLogFilePath = "logs/test_results.log"
	// DefaultLokiTags labels every pushed log stream.
	DefaultLokiTags = "application=query-validator"
	// DefaultMaxErroneousRows caps erroneous rows printed per failed test.
	DefaultMaxErroneousRows = 10
	// DefaultSafeHostnames are the database hosts fixture migrations may write to.
	DefaultSafeHostnames = "localhost,127.0.0.1,::1"
)

// Environment variable names.
const (
	EnvDatabaseURI      = "DB_URI"
	EnvTestFiles        = "TEST_FILES"
	EnvWorkers          = "WORKERS"
	EnvLogLevel         = "LOG_LEVEL"
	EnvLogToConsole     = "LOG_TO_CONSOLE"
	EnvLogToFile        = "LOG_TO_FILE"
	EnvLogFilePath      = "LOG_FILE_PATH"
	EnvLokiHost         = "LOKI_HOST"
	EnvLokiUsername     = "LOKI_USERNAME"
	EnvLokiPassword     = "LOKI_PASSWORD"
	EnvLokiTags         = "LOKI_TAGS"
	EnvMaxErroneousRows = "MAX_ERRONEOUS_ROWS"
	EnvSafeHostnames    = "SAFE_HOSTNAMES"
)
