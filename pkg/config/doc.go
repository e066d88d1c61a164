// Package config loads service configuration from the environment.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for struct parsing. Each component declares its
// own config struct with env tags and receives it explicitly at construction;
// nothing below cmd/ reads the environment directly.
//
//	type Config struct {
//	    SigningSecret string `env:"LICENSE_SIGNING_SECRET"`
//	    Product       string `env:"LICENSE_PRODUCT" envDefault:"linksphinx"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Errors wrap ErrParsingConfig or ErrLoadingEnvFile and can be checked with
// errors.Is.
package config
