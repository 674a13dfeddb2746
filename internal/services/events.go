package services

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/Lllllllleong/storyflow/internal/models"
)

// GCSEvent is the payload of a Cloud Storage object event.
type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

// s3Notification is the S3-style upload notification shape. Object keys in it
// are URL-encoded.
type s3Notification struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key string `json:"key"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseStorageEvent extracts the uploaded object references from an event payload.
func ParseStorageEvent(data []byte) ([]models.ObjectRef, error) {
	var notification s3Notification
	if err := json.Unmarshal(data, &notification); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if len(notification.Records) > 0 {
		refs := make([]models.ObjectRef, 0, len(notification.Records))
		for i, rec := range notification.Records {
			key, err := url.QueryUnescape(rec.S3.Object.Key)
			if err != nil {
				return nil, fmt.Errorf("record %d: invalid object key %q: %w", i, rec.S3.Object.Key, err)
			}
			if rec.S3.Bucket.Name == "" || key == "" {
				return nil, fmt.Errorf("record %d: %w: missing bucket or key", i, ErrUnsupportedEvent)
			}
			refs = append(refs, models.ObjectRef{Bucket: rec.S3.Bucket.Name, Key: key})
		}
		return refs, nil
	}

	var gcsEvent GCSEvent
	if err := json.Unmarshal(data, &gcsEvent); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if gcsEvent.Bucket == "" || gcsEvent.Name == "" {
		return nil, fmt.Errorf("%w: missing bucket or name", ErrUnsupportedEvent)
	}
	return []models.ObjectRef{{Bucket: gcsEvent.Bucket, Key: gcsEvent.Name}}, nil
}
