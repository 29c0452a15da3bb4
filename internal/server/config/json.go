package config

import (
	"encoding/json"
	"fmt"
	"os"

	"hamawards/internal/flagx"
	"hamawards/internal/timex"
)

// JsonConfig mirrors Config for the JSON file layer. Missing keys leave the
// previous layer's values untouched.
type JsonConfig struct {
	ListenAddr            *string         `json:"listen_addr"`
	DatabaseDSN           *string         `json:"database_dsn"`
	SecretKey             *string         `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	S3RootUser            *string         `json:"s3_root_user"`
	S3RootPassword        *string         `json:"s3_root_password"`
	S3Bucket              *string         `json:"s3_bucket"`
	S3Region              *string         `json:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint"`
}

func parseJson(config *Config, args []string) error {
	fileName := flagx.JsonConfigFlags(args)
	if fileName == "" {
		return nil
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	if jc.ListenAddr != nil {
		config.ListenAddr = *jc.ListenAddr
	}
	if jc.DatabaseDSN != nil {
		config.DatabaseDSN = *jc.DatabaseDSN
	}
	if jc.SecretKey != nil {
		config.SecretKey = *jc.SecretKey
	}
	if jc.TokenValidityDuration != nil {
		config.TokenValidityDuration = jc.TokenValidityDuration.Duration
	}
	if jc.S3RootUser != nil {
		config.S3RootUser = *jc.S3RootUser
	}
	if jc.S3RootPassword != nil {
		config.S3RootPassword = *jc.S3RootPassword
	}
	if jc.S3Bucket != nil {
		config.S3Bucket = *jc.S3Bucket
	}
	if jc.S3Region != nil {
		config.S3Region = *jc.S3Region
	}
	if jc.S3BaseEndpoint != nil {
		config.S3BaseEndpoint = *jc.S3BaseEndpoint
	}

	return nil
}
