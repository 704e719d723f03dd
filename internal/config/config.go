package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	DBConnectionString string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`

	// Object storage settings
	S3URL       string `envconfig:"S3_URL" required:"true"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"eschool-bucket"`
	S3Region    string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`

	// Payment processor settings. When STRIPE_SECRET_KEY is empty the key is
	// resolved from Secret Manager under StripeSecretName.
	StripeSecretKey  string  `envconfig:"STRIPE_SECRET_KEY"`
	StripeSecretName string  `envconfig:"STRIPE_SECRET_NAME" default:"stripe-secret-key"`
	StripeSuccessURL string  `envconfig:"STRIPE_SUCCESS_URL" default:"http://localhost:3000/stripe/success"`
	StripeCancelURL  string  `envconfig:"STRIPE_CANCEL_URL" default:"http://localhost:3000/stripe/cancel"`
	Currency         string  `envconfig:"CURRENCY" default:"krw"`
	PlatformFeeRate  float64 `envconfig:"PLATFORM_FEE_RATE" default:"0.30"`

	// Event publishing settings
	GCPProjectID       string `envconfig:"GCP_PROJECT_ID"`
	GCPCredentialsFile string `envconfig:"GCP_CREDENTIALS_FILE"`
	EventsTopic        string `envconfig:"EVENTS_TOPIC" default:"marketplace-events"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
