package configuration

import (
	"fmt"
	"os"
	"strconv"

	"postpilot/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Storage     Storage     `json:"storage"`
	Worker      Worker      `json:"worker"`
	Publish     Publish     `json:"publish"`
	Sweeper     Sweeper     `json:"sweeper"`
	YouTube     YouTube     `json:"youtube"`
	Logger      Logger      `json:"logger"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	CronToken   string `json:"cronToken"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql  Db `json:"psql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type RedisClient struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID   string `json:"projectID"`
	ResultTopic string `json:"resultTopic"`
}

type ServiceBus struct {
	Namespace    string `json:"namespace"`
	FailureQueue string `json:"failureQueue"`
}

// Storage configures the artifact bucket and the signed-URL window. The window
// must cover the maximum expected publish fan-out so downstream platform calls
// never race expiry.
type Storage struct {
	Bucket          string `json:"bucket"`
	AccountID       string `json:"accountId"`
	SignedURLTTLMin int    `json:"signedUrlTtlMinutes"`
}

type Worker struct {
	Endpoint   string `json:"endpoint"`
	ServiceKey string `json:"serviceKey"`
}

type Publish struct {
	Platforms          []string `json:"platforms"`
	MaxConcurrent      int      `json:"maxConcurrent"`
	PerPlatformTimeout int      `json:"perPlatformTimeoutSeconds"`
}

type Sweeper struct {
	RetentionDays int `json:"retentionDays"`
	Concurrency   int `json:"concurrency"`
}

type YouTube struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

type Logger struct {
	Format string `json:"format"`
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}

	if C.Database.Mongo.Host == "" {
		if v := os.Getenv("MONGO_HOST"); v != "" {
			C.Database.Mongo.Host = v
		} else {
			C.Database.Mongo.Host = "localhost"
		}
	}
	if C.Database.Mongo.Port == "" {
		if v := os.Getenv("MONGO_PORT"); v != "" {
			C.Database.Mongo.Port = v
		} else {
			C.Database.Mongo.Port = "27017"
		}
	}
	if C.Database.Mongo.Name == "" {
		if v := os.Getenv("MONGO_DB_NAME"); v != "" {
			C.Database.Mongo.Name = v
		} else {
			C.Database.Mongo.Name = "postpilot"
		}
	}
	if C.Database.Mongo.User == "" {
		C.Database.Mongo.User = os.Getenv("MONGO_USER")
	}
	if C.Database.Mongo.Password == "" {
		C.Database.Mongo.Password = os.Getenv("MONGO_PASSWORD")
	}

	// Optional MSSQL config via environment (Azure SQL in production)
	if C.Database.Mssql.Name == "" {
		C.Database.Mssql.Name = os.Getenv("MSSQL_DB_NAME")
	}
	if C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = os.Getenv("MSSQL_HOST")
	}
	if C.Database.Mssql.User == "" {
		C.Database.Mssql.User = os.Getenv("MSSQL_USER")
	}
	if C.Database.Mssql.Password == "" {
		C.Database.Mssql.Password = os.Getenv("MSSQL_PASSWORD")
	}
	if C.Database.Mssql.Port == "" {
		if v := os.Getenv("MSSQL_PORT"); v != "" {
			C.Database.Mssql.Port = v
		} else {
			C.Database.Mssql.Port = "1433"
		}
	}
}

func initApp(C *Config) {
	// Secrets come from the environment, never from source
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	if v := os.Getenv("CRON_TOKEN"); v != "" {
		C.App.CronToken = v
	}
	if v := os.Getenv("WORKER_SERVICE_KEY"); v != "" {
		C.Worker.ServiceKey = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		C.Storage.Bucket = v
	}

	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}

	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}

	if C.Storage.SignedURLTTLMin <= 0 {
		C.Storage.SignedURLTTLMin = 60
	}
	if len(C.Publish.Platforms) == 0 {
		C.Publish.Platforms = []string{"YouTube", "TikTok", "Instagram", "Facebook", "Twitter"}
	}
	if C.Publish.MaxConcurrent <= 0 {
		C.Publish.MaxConcurrent = 4
	}
	if C.Publish.PerPlatformTimeout <= 0 {
		C.Publish.PerPlatformTimeout = 300
	}
	if C.Sweeper.RetentionDays <= 0 {
		C.Sweeper.RetentionDays = 30
	}
	if C.Pubsub.ResultTopic == "" {
		C.Pubsub.ResultTopic = "publication-results"
	}
	if C.ServiceBus.FailureQueue == "" {
		C.ServiceBus.FailureQueue = "publish-failures"
	}

	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}
