package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr                 string
	SelfID               string
	Initializer          string
	TokenName            string
	TokenSymbol          string
	TokenDecimals        uint8
	JWTSigningKey        string
	RedisAddr            string
	RedisStream          string
	KafkaBrokers         []string
	KafkaTopic           string
	EventDeliveryTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("TOKENHOST_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	selfID := os.Getenv("TOKENHOST_SELF_ID")
	if selfID == "" {
		selfID = "tokenhost"
	}

	initializer := os.Getenv("TOKENHOST_INITIALIZER")
	if initializer == "" {
		initializer = "admin"
	}

	tokenName := os.Getenv("TOKEN_NAME")
	if tokenName == "" {
		tokenName = "Token"
	}
	tokenSymbol := os.Getenv("TOKEN_SYMBOL")
	if tokenSymbol == "" {
		tokenSymbol = "TOK"
	}
	var tokenDecimals uint8
	if raw := os.Getenv("TOKEN_DECIMALS"); raw != "" {
		if v, err := strconv.ParseUint(raw, 10, 8); err == nil {
			tokenDecimals = uint8(v)
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	stream := os.Getenv("REDIS_STREAM")
	if stream == "" {
		stream = "tokenhost.events"
	}

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "tokenhost.events"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	deliveryTimeout := 5 * time.Second
	if raw := os.Getenv("EVENT_DELIVERY_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			deliveryTimeout = d
		}
	}

	return Server{
		Addr:                 addr,
		SelfID:               selfID,
		Initializer:          initializer,
		TokenName:            tokenName,
		TokenSymbol:          tokenSymbol,
		TokenDecimals:        tokenDecimals,
		JWTSigningKey:        jwtSigningKey,
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisStream:          stream,
		KafkaBrokers:         brokers,
		KafkaTopic:           topic,
		EventDeliveryTimeout: deliveryTimeout,
	}
}
