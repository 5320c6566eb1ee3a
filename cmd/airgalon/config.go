package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	endpoint          string
	dsn               string
	redisAddr         string
	redisPassword     string
	sendgridAPIKey    string
	mailFrom          string
	midtransServerKey string
	midtransEnv       string
	appURL            string
	allowedOrigins    []string
	supplierLogins    []string
	trustProxy        bool
	logLevel          string
	env               string
	authSecretKey     string
}

func generateRandomString(length int) string {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func getEnv(key string, target *string) {
	if value := os.Getenv(key); value != "" {
		*target = value
	}
}

// NewConfig reads flags, then a .env file if present, then the environment.
// Environment values win over flags.
func NewConfig() Config {
	var config Config

	flag.StringVar(&config.endpoint, "a", "localhost:8090", "address and port to run server")
	flag.StringVar(&config.dsn, "d", "", "data source name for database connection")
	flag.StringVar(&config.redisAddr, "r", "localhost:6379", "redis address for checkout sessions and order updates")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("WARNING: .env file wasn't loaded due to %s\n", err)
	}

	getEnv("RUN_ADDRESS", &config.endpoint)
	getEnv("DATABASE_URI", &config.dsn)
	getEnv("REDIS_ADDR", &config.redisAddr)
	getEnv("REDIS_PASSWORD", &config.redisPassword)
	getEnv("SENDGRID_API_KEY", &config.sendgridAPIKey)
	getEnv("MIDTRANS_SERVER_KEY", &config.midtransServerKey)

	config.mailFrom = "no-reply@airgalon.id"
	getEnv("MAIL_FROM", &config.mailFrom)

	config.midtransEnv = "sandbox"
	getEnv("MIDTRANS_ENV", &config.midtransEnv)

	config.appURL = "http://localhost:5173"
	getEnv("APP_URL", &config.appURL)

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.allowedOrigins = strings.Split(origins, ",")
	}

	// SUPPLIER_LOGINS seeds the supplier accounts; other roles are assigned by suppliers.
	if logins := os.Getenv("SUPPLIER_LOGINS"); logins != "" {
		for _, login := range strings.Split(logins, ",") {
			if login = strings.TrimSpace(login); login != "" {
				config.supplierLogins = append(config.supplierLogins, login)
			}
		}
	}

	if value := os.Getenv("TRUST_PROXY"); value != "" {
		trust, err := strconv.ParseBool(value)
		if err != nil {
			log.Printf("WARNING: TRUST_PROXY=%q isn't a boolean, proxy headers stay ignored\n", value)
		}
		config.trustProxy = trust
	}

	config.logLevel = "error"
	getEnv("LOG_LEVEL", &config.logLevel)

	config.env = "production"
	getEnv("ENV", &config.env)

	getEnv("AUTH_SECRET_KEY", &config.authSecretKey)
	if config.authSecretKey == "" {
		if config.env == "production" {
			config.authSecretKey = generateRandomString(10)
			log.Printf("WARNING: AUTH_SECRET_KEY has to be defined for production environment\n")
		} else {
			config.authSecretKey = "development-key"
		}
	}

	return config
}
