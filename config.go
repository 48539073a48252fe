package utxoorders

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is resolved once at startup and differs per network deployment.
type Config struct {
	SellContract string
	SwapContract string
	FeeAddress   string

	Postgres     string
	Migrations   string
	JungleBus    string
	Subscription string
	FromBlock    uint64
	KafkaBrokers []string
	KafkaTopic   string
	Listen       string
}

// LoadConfig reads the environment, after merging any .env files given.
func LoadConfig(envFiles ...string) (cfg *Config, err error) {
	for _, f := range envFiles {
		// missing .env files are fine, the environment may already be set
		_ = godotenv.Load(f)
	}

	cfg = &Config{
		SellContract: os.Getenv("SELL_CONTRACT"),
		SwapContract: os.Getenv("SWAP_CONTRACT"),
		FeeAddress:   os.Getenv("FEE_ADDRESS"),
		Postgres:     os.Getenv("POSTGRES"),
		Migrations:   getenv("MIGRATIONS", "file://migrations"),
		JungleBus:    getenv("JUNGLEBUS", "https://junglebus.gorillapool.io"),
		Subscription: os.Getenv("SUBSCRIPTION"),
		KafkaTopic:   getenv("KAFKA_TOPIC", "unsigned-transactions"),
		Listen:       getenv("LISTEN", "0.0.0.0:8080"),
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	if from := os.Getenv("FROM_BLOCK"); from != "" {
		if cfg.FromBlock, err = strconv.ParseUint(from, 10, 64); err != nil {
			return nil, err
		}
	}

	switch {
	case cfg.SellContract == "":
		err = errors.New("SELL_CONTRACT is not set")
	case cfg.SwapContract == "":
		err = errors.New("SWAP_CONTRACT is not set")
	case cfg.FeeAddress == "":
		err = errors.New("FEE_ADDRESS is not set")
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
