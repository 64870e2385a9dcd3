package config

// Config holds all configuration for the application.
type Config struct {
	DBName        string
	MigrationsDir string
	Port          string
	Turso         TursoConfig
	CORS          CORSConfig
}
type TursoConfig struct {
	PrimaryURL string
	AuthToken  string
}
type CORSConfig struct {
	AllowedOrigins []string
}
