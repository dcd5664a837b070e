package cfg

type Cfg struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Application configuration
	Port         string
	PollInterval int
	WorkerCount  int
	AdminAPIKey  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
