package config

const (
	defaultVisionBaseURL      = "https://api.openai.com/v1/chat/completions"
	defaultVisionModel        = "gpt-4o"
	defaultVisionMaxTokens    = 2000
	defaultVisionTimeout      = 60
	defaultRecordStoreBackend = "airtable"
	defaultRecordStoreTimeout = 30
	defaultRecordStoreDBPath  = "~/.local/share/larder/recipes.db"
	defaultRateLimitMS        = 5000
	defaultLockPath           = "~/.local/share/larder/larder.lock"
	defaultNotifyTimeout      = 10
	defaultLogLevel           = "info"
	defaultLogFormat          = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Storage: Storage{
			UseSSL: true,
		},
		Vision: Vision{
			BaseURL:        defaultVisionBaseURL,
			Model:          defaultVisionModel,
			MaxTokens:      defaultVisionMaxTokens,
			TimeoutSeconds: defaultVisionTimeout,
		},
		RecordStore: RecordStore{
			Backend:        defaultRecordStoreBackend,
			DBPath:         defaultRecordStoreDBPath,
			TimeoutSeconds: defaultRecordStoreTimeout,
		},
		Pipeline: Pipeline{
			RateLimitMS: defaultRateLimitMS,
			LockPath:    defaultLockPath,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
