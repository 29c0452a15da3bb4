package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sc "hamawards/internal/server/config"
)

func stubPresign(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewClient := newS3ClientFromConfig
	origNewPresign := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewClient
		newS3PresignClient = origNewPresign
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3/put/" + *in.Key}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://s3/get/" + *in.Key}, nil
	}
}

func TestBackgroundService_PresignedPutURL(t *testing.T) {
	stubPresign(t)

	svc := NewBackgroundService(&sc.Config{S3Bucket: "backgrounds"})

	key, url, err := svc.GetPresignedPutURL(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "backgrounds/"))
	assert.Equal(t, "https://s3/put/"+key, url)
}

func TestBackgroundService_PresignedPutURL_UniqueKeys(t *testing.T) {
	stubPresign(t)

	svc := NewBackgroundService(&sc.Config{S3Bucket: "backgrounds"})

	k1, _, err := svc.GetPresignedPutURL(context.Background())
	require.NoError(t, err)
	k2, _, err := svc.GetPresignedPutURL(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestBackgroundService_PresignedGetURL(t *testing.T) {
	stubPresign(t)

	svc := NewBackgroundService(&sc.Config{S3Bucket: "backgrounds"})

	url, err := svc.GetPresignedGetURL(context.Background(), "backgrounds/2024/5/abc")
	require.NoError(t, err)
	assert.Equal(t, "https://s3/get/backgrounds/2024/5/abc", url)
}

func TestBackgroundService_ConfigError(t *testing.T) {
	stubPresign(t)
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	}

	svc := NewBackgroundService(&sc.Config{S3Bucket: "backgrounds"})

	_, _, err := svc.GetPresignedPutURL(context.Background())
	assert.Error(t, err)

	_, err = svc.GetPresignedGetURL(context.Background(), "k")
	assert.Error(t, err)
}
