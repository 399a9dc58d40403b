// services/spaces.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/craftdeck/craftdeck/craftdeck/database/models"
)

// SpacesService serves card artwork out of DigitalOcean Spaces
// (S3-compatible object storage).
type SpacesService struct {
	client   *s3.Client
	bucket   string
	region   string
	CardRoot string
}

func NewSpacesService(spacesKey, spacesSecret, region, bucket, cardRoot string) *SpacesService {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		panic(fmt.Sprintf("Unable to load Spaces config: %v", err))
	}

	client := s3.NewFromConfig(cfg)

	return &SpacesService{
		client:   client,
		bucket:   bucket,
		region:   region,
		CardRoot: strings.TrimPrefix(cardRoot, "/"),
	}
}

// cardImageKey builds the object key for a card's artwork. Cards whose
// catalog entry has an explicit image ref use it verbatim.
func (s *SpacesService) cardImageKey(card *models.Card) string {
	if card.ImageRef != "" {
		return strings.TrimPrefix(card.ImageRef, "/")
	}

	ext := "jpg"
	if card.Animated {
		ext = "gif"
	}
	name := strings.ReplaceAll(strings.ToLower(card.Name), " ", "_")
	return fmt.Sprintf("%s%s/%d_%s.%s", s.CardRoot, card.Category, card.ID, name, ext)
}

// CardImageURL returns the public URL for a card's artwork.
func (s *SpacesService) CardImageURL(card *models.Card) string {
	return fmt.Sprintf("https://%s.%s.digitaloceanspaces.com/%s",
		s.bucket, s.region, s.cardImageKey(card))
}

// CardImageExists checks whether the artwork object is present.
func (s *SpacesService) CardImageExists(ctx context.Context, card *models.Card) (bool, error) {
	key := s.cardImageKey(card)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		if strings.Contains(err.Error(), "NotFound") || strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteCardImage removes the artwork object for a card.
func (s *SpacesService) DeleteCardImage(ctx context.Context, card *models.Card) error {
	key := s.cardImageKey(card)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %w", key, err)
	}
	return nil
}

func (s *SpacesService) GetBucket() string {
	return s.bucket
}

func (s *SpacesService) GetRegion() string {
	return s.region
}

func (s *SpacesService) GetCardRoot() string {
	return s.CardRoot
}
