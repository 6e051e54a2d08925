package envvar

const (
	// ProteusEnv is the environment variable used to determine the environment
	ProteusEnv = "PROTEUS_ENV"

	// ProteusModelsPath is the environment variable used to override the models directory
	ProteusModelsPath = "PROTEUS_MODELS_PATH"

	// ProteusLogFile is the environment variable used to override the log file location
	ProteusLogFile = "PROTEUS_LOG_FILE"
)
