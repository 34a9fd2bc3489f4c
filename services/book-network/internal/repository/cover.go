package repository

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CoverStore persists book cover images.
type CoverStore interface {
	// Upload stores the image and returns its file id.
	Upload(ctx context.Context, filename, contentType string, source io.Reader) (bson.ObjectID, error)

	// Open returns a reader over the stored image. The caller must close it.
	Open(ctx context.Context, id bson.ObjectID) (io.ReadCloser, error)

	Delete(ctx context.Context, id bson.ObjectID) error
}

type gridFSCoverStore struct {
	bucket *mongo.GridFSBucket
}

// NewGridFSCoverStore stores covers in the named GridFS bucket.
func NewGridFSCoverStore(db *mongo.Database, bucketName string) CoverStore {
	return &gridFSCoverStore{
		bucket: db.GridFSBucket(options.GridFSBucket().SetName(bucketName)),
	}
}

func (s *gridFSCoverStore) Upload(
	ctx context.Context,
	filename, contentType string,
	source io.Reader,
) (bson.ObjectID, error) {
	opts := options.GridFSUpload().SetMetadata(bson.M{"content_type": contentType})
	return s.bucket.UploadFromStream(ctx, filename, source, opts)
}

func (s *gridFSCoverStore) Open(ctx context.Context, id bson.ObjectID) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStream(ctx, id)
	if err != nil {
		return nil, err
	}

	return stream, nil
}

func (s *gridFSCoverStore) Delete(ctx context.Context, id bson.ObjectID) error {
	return s.bucket.Delete(ctx, id)
}
