package storage

import "review-harvester/models"

// ReviewWriter is the interface any storage backend must satisfy.
type ReviewWriter interface {
	Write(reviews []*models.Review) error
	Close() error
}
