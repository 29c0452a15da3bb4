package config

import (
	"flag"
	"fmt"

	"hamawards/internal/flagx"
)

func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database connection string")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "secret key for signing tokens")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity duration")
	fs.StringVar(&config.S3RootUser, "s3u", config.S3RootUser, "object storage access key")
	fs.StringVar(&config.S3RootPassword, "s3p", config.S3RootPassword, "object storage secret key")
	fs.StringVar(&config.S3Bucket, "s3b", config.S3Bucket, "object storage bucket for award backgrounds")
	fs.StringVar(&config.S3Region, "s3r", config.S3Region, "object storage region")
	fs.StringVar(&config.S3BaseEndpoint, "s3e", config.S3BaseEndpoint, "object storage endpoint")

	// The config file flag belongs to the JSON layer; keep only our own.
	own := []string{"-a", "-d", "-k", "-t", "-s3u", "-s3p", "-s3b", "-s3r", "-s3e"}
	if err := fs.Parse(flagx.FilterArgs(args, own)); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}

	return nil
}
