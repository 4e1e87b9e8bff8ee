package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-yaml/yaml"

	"airdrop-service/internal/domain"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Campaign Campaign `yaml:"campaign"`
	Chain    Chain    `yaml:"chain"`
	Services Services `yaml:"services"`
}

type Server struct {
	ListenAddr    string `yaml:"listenAddr"`
	PostgresDsn   string `yaml:"postgresDsn"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	RedisDB       int    `yaml:"redisDB"`
	EnableTrace   bool   `yaml:"enableTrace"`
	TraceEndpoint string `yaml:"traceEndpoint"`
}

type RewardTier struct {
	MinXPPoints int     `yaml:"minXpPoints"`
	TokenAmount float64 `yaml:"tokenAmount"`
}

type Campaign struct {
	MinXPPoints      int            `yaml:"minXpPoints"`
	CutoffDate       string         `yaml:"cutoffDate"` // YYYY-MM-DD, UTC
	ClosesAt         string         `yaml:"closesAt"`   // RFC3339; empty keeps the campaign open
	BlockedCountries []string       `yaml:"blockedCountries"`
	ActivityXPPoints map[string]int `yaml:"activityXpPoints"`
	RewardTiers      []RewardTier   `yaml:"rewardTiers"`
	SignedMessage    string         `yaml:"signedMessage"`

	// ---
	Cutoff time.Time
	Closes *time.Time
}

type Chain struct {
	RPCURL               string `yaml:"rpcUrl"`
	TokenAddress         string `yaml:"tokenAddress"`
	SenderPrivateKey     string `yaml:"senderPrivateKey"`
	ExplorerTxURL        string `yaml:"explorerTxUrl"`
	FinalityPollInterval string `yaml:"finalityPollInterval"`
	FinalityTimeout      string `yaml:"finalityTimeout"`

	// ---
	PollInterval time.Duration
	PollTimeout  time.Duration
}

type Services struct {
	IdentityVerifierURL string `yaml:"identityVerifierUrl"`
	GeolocationURL      string `yaml:"geolocationUrl"`
	ReconcileInterval   string `yaml:"reconcileInterval"`
	ReconcileBatchSize  int    `yaml:"reconcileBatchSize"`
	ClaimLeaseTTL       string `yaml:"claimLeaseTtl"`

	// ---
	Reconcile time.Duration
	LeaseTTL  time.Duration
}

func Load(path string) (Config, error) {

	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	err = yaml.NewDecoder(file).Decode(&config)
	if err != nil {
		return Config{}, err
	}

	if key := os.Getenv("AIRDROP_SENDER_PRIVATE_KEY"); key != "" {
		config.Chain.SenderPrivateKey = key
	}

	applyDefaults(&config)

	config.Campaign.Cutoff, err = time.Parse("2006-01-02", config.Campaign.CutoffDate)
	if err != nil {
		return Config{}, fmt.Errorf("invalid campaign.cutoffDate: %w", err)
	}

	if config.Campaign.ClosesAt != "" {
		closes, err := time.Parse(time.RFC3339, config.Campaign.ClosesAt)
		if err != nil {
			return Config{}, fmt.Errorf("invalid campaign.closesAt: %w", err)
		}
		config.Campaign.Closes = &closes
	}

	config.Chain.PollInterval, err = parseDuration(config.Chain.FinalityPollInterval, 3*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid chain.finalityPollInterval: %w", err)
	}
	config.Chain.PollTimeout, err = parseDuration(config.Chain.FinalityTimeout, 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid chain.finalityTimeout: %w", err)
	}
	config.Services.Reconcile, err = parseDuration(config.Services.ReconcileInterval, 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid services.reconcileInterval: %w", err)
	}
	config.Services.LeaseTTL, err = parseDuration(config.Services.ClaimLeaseTTL, 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid services.claimLeaseTtl: %w", err)
	}

	return config, nil
}

func applyDefaults(c *Config) {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8000"
	}
	if c.Campaign.MinXPPoints == 0 {
		c.Campaign.MinXPPoints = domain.DefaultMinXPPoints
	}
	if c.Campaign.CutoffDate == "" {
		c.Campaign.CutoffDate = domain.DefaultCutoffDate
	}
	if len(c.Campaign.BlockedCountries) == 0 {
		c.Campaign.BlockedCountries = domain.DefaultBlockedCountries
	}
	if len(c.Campaign.ActivityXPPoints) == 0 {
		c.Campaign.ActivityXPPoints = domain.DefaultActivityXPPoints
	}
	if c.Campaign.SignedMessage == "" {
		c.Campaign.SignedMessage = domain.DefaultSignedMessage
	}
	if c.Services.GeolocationURL == "" {
		c.Services.GeolocationURL = "http://ip-api.com"
	}
	if c.Services.ReconcileBatchSize == 0 {
		c.Services.ReconcileBatchSize = 50
	}
}

func parseDuration(s string, fallback time.Duration) (time.Duration, error) {
	if s == "" {
		return fallback, nil
	}
	return time.ParseDuration(s)
}
