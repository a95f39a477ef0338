package appconfig

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	MongoURI          string
	Clinic            string
	ClinicName        string
	AccessSecret      string
	OtpTTL            time.Duration
	OtpStore          string // memory | mongo
	EmailTransport    string // dev | smtp | sendgrid
	SmtpHost          string
	SmtpPort          int
	SmtpUsername      string
	SmtpPassword      string
	FromEmail         string
	FromName          string
	SendgridApiKey    string
	DeviceStoragePath string
	NetworkTimeout    time.Duration
	LogLevel          string
	DevMode           bool
	MetricsAddr       string
}

// LoadDefaults fills development values; never rely on AccessSecret's
// default outside a dev box.
func (c *AppConfig) LoadDefaults() {
	c.MongoURI = "mongodb://localhost:27017"
	c.Clinic = "default"
	c.ClinicName = "Clinic"
	c.AccessSecret = "secretKey"
	c.OtpTTL = 180 * time.Second
	c.OtpStore = "memory"
	c.EmailTransport = "dev"
	c.SmtpHost = "smtp.gmail.com"
	c.SmtpPort = 587
	c.DeviceStoragePath = "clinic_device.db"
	c.NetworkTimeout = 12 * time.Second
	c.LogLevel = "info"
}

// Load reads an optional .env file, then the environment, over defaults.
func Load(envFiles ...string) (*AppConfig, error) {
	// a missing .env is normal outside development
	_ = godotenv.Load(envFiles...)

	c := &AppConfig{}
	c.LoadDefaults()

	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.Clinic = getEnv("CLINIC_ID", c.Clinic)
	c.ClinicName = getEnv("CLINIC_NAME", c.ClinicName)
	c.AccessSecret = getEnv("ACCESS_SECRET", c.AccessSecret)
	c.OtpStore = getEnv("OTP_STORE", c.OtpStore)
	c.EmailTransport = getEnv("EMAIL_TRANSPORT", c.EmailTransport)
	c.SmtpHost = getEnv("SMTP_HOST", c.SmtpHost)
	c.SmtpUsername = getEnv("SMTP_USERNAME", c.SmtpUsername)
	c.SmtpPassword = getEnv("SMTP_PASSWORD", c.SmtpPassword)
	c.FromEmail = getEnv("FROM_EMAIL", c.FromEmail)
	c.FromName = getEnv("FROM_NAME", c.FromName)
	c.SendgridApiKey = getEnv("SENDGRID_API_KEY", c.SendgridApiKey)
	c.DeviceStoragePath = getEnv("DEVICE_STORAGE_PATH", c.DeviceStoragePath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.MetricsAddr = getEnv("METRICS_ADDR", c.MetricsAddr)

	var err error
	if c.SmtpPort, err = getEnvInt("SMTP_PORT", c.SmtpPort); err != nil {
		return nil, err
	}
	if c.OtpTTL, err = getEnvDuration("OTP_TTL", c.OtpTTL); err != nil {
		return nil, err
	}
	if c.NetworkTimeout, err = getEnvDuration("NETWORK_TIMEOUT", c.NetworkTimeout); err != nil {
		return nil, err
	}
	if c.DevMode, err = getEnvBool("DEV_MODE", c.DevMode); err != nil {
		return nil, err
	}

	return c, c.Validate()
}

func (c *AppConfig) Validate() error {
	if c.Clinic == "" {
		return errors.New("CLINIC_ID is required")
	}
	if c.AccessSecret == "" {
		return errors.New("ACCESS_SECRET is required")
	}
	if c.OtpTTL <= 0 {
		return errors.New("OTP_TTL must be positive")
	}

	switch c.OtpStore {
	case "memory", "mongo":
	default:
		return errors.New("OTP_STORE must be memory or mongo")
	}

	switch c.EmailTransport {
	case "dev":
	case "smtp":
		if c.SmtpUsername == "" || c.SmtpPassword == "" || c.FromEmail == "" {
			return errors.New("smtp transport needs SMTP_USERNAME, SMTP_PASSWORD and FROM_EMAIL")
		}
	case "sendgrid":
		if c.SendgridApiKey == "" || c.FromEmail == "" {
			return errors.New("sendgrid transport needs SENDGRID_API_KEY and FROM_EMAIL")
		}
	default:
		return errors.New("EMAIL_TRANSPORT must be dev, smtp or sendgrid")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

// getEnvDuration accepts Go durations ("180s") or bare seconds ("180").
func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	return time.ParseDuration(value)
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}
