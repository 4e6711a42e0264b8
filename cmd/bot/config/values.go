package config

const (
	// AppName is the name of the application.
	AppName = "warden"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvStoreDriver selects the store backend: sqlite, mysql or mongo.
	EnvStoreDriver = `STORE_DRIVER`

	// EnvDatabaseDSN is the data source name of the sqlite or mysql store.
	EnvDatabaseDSN = `DATABASE_DSN`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMongoDatabase is the environment variable for the MongoDB database name.
	EnvMongoDatabase = `MONGO_DATABASE`
)

const (
	// DriverMongo keeps the store in MongoDB.
	DriverMongo = "mongo"

	// DefaultMonitoringPort is used when no monitoring port is configured.
	DefaultMonitoringPort = "8080"

	// DefaultMongoDatabase is used when no MongoDB database is configured.
	DefaultMongoDatabase = AppName
)

// Config is the configuration of the bot process.
type Config struct {
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// StoreDriver is sqlite, mysql or mongo.
	StoreDriver string

	// DatabaseDSN is the DSN of the sqlite or mysql store.
	DatabaseDSN string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MongoDatabase is the name of the MongoDB database.
	MongoDatabase string
}

// UsesMongo reports whether the store lives in MongoDB.
func (c *Config) UsesMongo() bool {
	return c.StoreDriver == DriverMongo
}
