package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Addr               string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // memory | postgres
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	UploadConfig struct {
		Backend           string // disk | s3
		Dir               string
		PublicPath        string
		MaxSize           int64
		S3Endpoint        string
		S3Region          string
		S3Bucket          string
		S3AccessKeyID     string
		S3SecretAccessKey string
	}

	RedisConfig struct {
		Addr        string
		Password    string
		DB          int
		PDFCacheTTL time.Duration
	}

	KafkaConfig struct {
		Brokers []string
		Topic   string
		GroupID string
	}

	Config struct {
		Debug            bool
		TestMode         bool
		Env              string
		Build            string
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		DefaultFromEmail string
		SendgridApiKey   string
		RollbarToken     string
		DefaultClassID   string
		WorkDir          string

		Server   ServerConfig
		Database DatabaseConfig
		Upload   UploadConfig
		Redis    RedisConfig
		Kafka    KafkaConfig
	}
)

func (c DatabaseConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c Config) DefaultFromAddress() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmail)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.DefaultFromEmail}
	}
	return *addr
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Rèn Luyện")
	v.SetDefault("secretKey", "q8v$-3rn)l2y!x7k=ha#wm4p(s0e^t+c6u*j@9b&d1f5g_zr")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("defaultFromEmail", "Rèn Luyện <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("defaultClassID", "CNTT2021A")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)

	v.SetDefault("database.engine", "memory")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "renluyen")
	v.SetDefault("database.user", "renluyen")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("upload.backend", "disk")
	v.SetDefault("upload.dir", "uploads")
	v.SetDefault("upload.publicPath", "/uploads")
	v.SetDefault("upload.maxSize", int64(5*1024*1024))
	v.SetDefault("upload.s3Endpoint", "")
	v.SetDefault("upload.s3Region", "us-east-1")
	v.SetDefault("upload.s3Bucket", "")
	v.SetDefault("upload.s3AccessKeyID", "")
	v.SetDefault("upload.s3SecretAccessKey", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pdfCacheTTL", 10*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "evaluation-events")
	v.SetDefault("kafka.groupID", "renluyen-notifier")
}

// NewConfig loads the app configuration from the environment.
// ENV selects the environment (DEV (default), TEST, QA, PROD) and is also used as the
// prefix of every variable, eg. DEV_DATABASE_ENGINE=postgres.
func NewConfig() *Config {
	v := viper.New()
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := fromViper(v)
	conf.Env = env
	conf.WorkDir = workDir
	return conf
}

// NewTestConfig returns a deterministic in-memory configuration.
func NewTestConfig() *Config {
	v := viper.New()
	setDefaults(v)
	v.Set("testMode", true)
	v.Set("secretKey", "secret")

	conf := fromViper(v)
	conf.Env = "TEST"
	return conf
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Build:            v.GetString("build"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		DefaultFromEmail: v.GetString("defaultFromEmail"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		DefaultClassID:   v.GetString("defaultClassID"),
		Server: ServerConfig{
			Host:               v.GetString("server.host"),
			Addr:               v.GetString("server.addr"),
			DebugHost:          v.GetString("server.debugHost"),
			ShutdownTimeout:    v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta: v.GetDuration("server.jwtExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Upload: UploadConfig{
			Backend:           v.GetString("upload.backend"),
			Dir:               v.GetString("upload.dir"),
			PublicPath:        v.GetString("upload.publicPath"),
			MaxSize:           v.GetInt64("upload.maxSize"),
			S3Endpoint:        v.GetString("upload.s3Endpoint"),
			S3Region:          v.GetString("upload.s3Region"),
			S3Bucket:          v.GetString("upload.s3Bucket"),
			S3AccessKeyID:     v.GetString("upload.s3AccessKeyID"),
			S3SecretAccessKey: v.GetString("upload.s3SecretAccessKey"),
		},
		Redis: RedisConfig{
			Addr:        v.GetString("redis.addr"),
			Password:    v.GetString("redis.password"),
			DB:          v.GetInt("redis.db"),
			PDFCacheTTL: v.GetDuration("redis.pdfCacheTTL"),
		},
		Kafka: KafkaConfig{
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
			GroupID: v.GetString("kafka.groupID"),
		},
	}
}
