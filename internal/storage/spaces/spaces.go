// Package spaces implements S3-compatible object storage for fetched images
package spaces

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// Provider implements a digitalocean spaces based image storage
type Provider struct {
	spaces *s3.S3
	space  string
}

// New returns a new Provider instance
func New(space, endpoint, accessKey, secretKey string) (*Provider, error) {
	spacesSession, err := session.NewSession(&aws.Config{
		Credentials: credentials.NewStaticCredentials(accessKey, secretKey, ""),
		Endpoint:    aws.String(endpoint),
		Region:      aws.String("us-east-1"), // Needs to be us-east-1 for Spaces, or it'll fail
	})
	if err != nil {
		return nil, err
	}

	return &Provider{
		spaces: s3.New(spacesSession),
		space:  space,
	}, nil
}

// Put uploads the image data under the given key
func (p *Provider) Put(ctx context.Context, key string, data []byte, contentType string) error {
	object := s3.PutObjectInput{
		Bucket:      &p.space,
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	_, err := p.spaces.PutObjectWithContext(ctx, &object)
	return err
}
