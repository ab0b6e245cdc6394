// Package r2 archives raw generation exchanges (prompt + model response) to
// a Cloudflare R2 bucket so bad generations can be inspected after the fact.
package r2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Client uploads generation exchanges to Cloudflare R2.
type Client struct {
	s3Client   *s3.Client
	bucketName string
}

// NewClient creates and configures a new R2 client instance using environment
// variables. It returns (nil, nil) if R2 environment variables are not fully
// configured, allowing the application to proceed with archival disabled.
func NewClient() (*Client, error) {
	accountID := os.Getenv("CLOUDFLARE_ACCOUNT_ID")
	bucketName := os.Getenv("R2_BUCKET_NAME")
	accessKeyID := os.Getenv("R2_ACCESS_KEY_ID")
	secretAccessKey := os.Getenv("R2_SECRET_ACCESS_KEY")

	if accountID == "" || bucketName == "" || accessKeyID == "" || secretAccessKey == "" {
		log.Println("WARN: Cloudflare R2 environment variables not fully configured (CLOUDFLARE_ACCOUNT_ID, R2_BUCKET_NAME, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY). Generation archival will be skipped.")
		return nil, nil
	}

	// R2 endpoint format: https://<ACCOUNT_ID>.r2.cloudflarestorage.com
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config for R2: %w", err)
	}

	log.Printf("INFO: R2 client initialized for bucket '%s'", bucketName)
	return &Client{
		s3Client:   s3.NewFromConfig(cfg),
		bucketName: bucketName,
	}, nil
}

// exchange is the archived document layout.
type exchange struct {
	Topic      string    `json:"topic"`
	Strategy   string    `json:"strategy"`
	Prompt     string    `json:"prompt"`
	Response   string    `json:"response"`
	ArchivedAt time.Time `json:"archived_at"`
}

// ArchiveGeneration uploads one prompt/response pair as a JSON object under
// generations/<date>/<id>.json and returns the object key.
func (c *Client) ArchiveGeneration(ctx context.Context, topic, strategy, prompt, response string) (string, error) {
	if c == nil || c.s3Client == nil {
		return "", fmt.Errorf("R2 client not initialized, skipping archive")
	}

	now := time.Now().UTC()
	body, err := json.Marshal(exchange{
		Topic:      topic,
		Strategy:   strategy,
		Prompt:     prompt,
		Response:   response,
		ArchivedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal exchange: %w", err)
	}

	objectKey := fmt.Sprintf("generations/%s/%s.json", now.Format("2006-01-02"), uuid.New())

	_, err = c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucketName),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload exchange to R2 (key: %s): %w", objectKey, err)
	}
	return objectKey, nil
}
