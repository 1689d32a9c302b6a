package remote

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// Header names recognized by buildPutInput. Anything else is attached as
// user metadata.
const (
	HeaderContentType        = "Content-Type"
	HeaderContentEncoding    = "Content-Encoding"
	HeaderContentLength      = "Content-Length"
	HeaderContentDisposition = "Content-Disposition"
	HeaderContentLanguage    = "Content-Language"
	HeaderCacheControl       = "Cache-Control"
	HeaderACL                = "x-amz-acl"
)

// S3Store implements Store on top of the AWS SDK.
type S3Store struct {
	client s3iface.S3API
	bucket string
}

// NewS3Store opens a session using the default credential chain
// (environment, shared config, instance role) and returns a store bound to
// bucket. Endpoint overrides the service URL for S3-compatible stores and
// may be empty.
func NewS3Store(bucket, region, endpoint string) (*S3Store, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *cfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("opening AWS session: %w", err)
	}

	return &S3Store{client: s3.New(sess), bucket: bucket}, nil
}

// NewS3StoreWithClient returns a store using an existing client.
func NewS3StoreWithClient(client s3iface.S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

func (s *S3Store) Query(ctx context.Context, key string) (QueryResult, error) {
	out, err := s.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isAbsent(err) {
			return QueryResult{}, nil
		}
		return QueryResult{}, fmt.Errorf("querying %s: %w", key, err)
	}

	meta := ObjectMeta{Key: key}
	if out.ETag != nil {
		meta.ETag = *out.ETag
	}
	if out.LastModified != nil {
		meta.LastModified = *out.LastModified
	}
	if out.ContentLength != nil {
		meta.Size = *out.ContentLength
	}
	return QueryResult{Found: true, Meta: meta}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, headers map[string]string) error {
	input := buildPutInput(s.bucket, key, body, headers)
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("putting %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	err := s.client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, _ bool) bool {
			for _, obj := range page.Contents {
				if obj.Key != nil {
					keys = append(keys, *obj.Key)
				}
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("listing %q: %w", prefix, err)
	}
	return keys, nil
}

func (s *S3Store) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	objects := make([]*s3.ObjectIdentifier, len(keys))
	for i, key := range keys {
		objects[i] = &s3.ObjectIdentifier{Key: aws.String(key)}
	}

	out, err := s.client.DeleteObjectsWithContext(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(s.bucket),
		Delete: &s3.Delete{Objects: objects, Quiet: aws.Bool(true)},
	})
	if err != nil {
		return fmt.Errorf("deleting %d objects: %w", len(keys), err)
	}
	if len(out.Errors) > 0 {
		first := out.Errors[0]
		return fmt.Errorf("deleting %s: %s (%d of %d failed)",
			aws.StringValue(first.Key), aws.StringValue(first.Message), len(out.Errors), len(keys))
	}
	return nil
}

// buildPutInput maps a header set onto the typed PutObject fields.
// Content-Length is dropped — the SDK derives it from the body. Unrecognized
// headers become user metadata.
func buildPutInput(bucket, key string, body []byte, headers map[string]string) *s3.PutObjectInput {
	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	}

	for name, value := range headers {
		switch name {
		case HeaderContentType:
			input.ContentType = aws.String(value)
		case HeaderContentEncoding:
			input.ContentEncoding = aws.String(value)
		case HeaderCacheControl:
			input.CacheControl = aws.String(value)
		case HeaderContentDisposition:
			input.ContentDisposition = aws.String(value)
		case HeaderContentLanguage:
			input.ContentLanguage = aws.String(value)
		case HeaderACL:
			input.ACL = aws.String(value)
		case HeaderContentLength:
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				input.ContentLength = aws.Int64(n)
			}
		default:
			if input.Metadata == nil {
				input.Metadata = make(map[string]*string)
			}
			input.Metadata[name] = aws.String(value)
		}
	}
	return input
}

// isAbsent reports whether a HeadObject error means the object does not
// exist. 404 and the NotFound/NoSuchKey codes are definitive; 403 is
// included because HeadObject reports Forbidden instead of NotFound when the
// caller lacks s3:ListBucket on the bucket.
func isAbsent(err error) bool {
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		if reqErr.StatusCode() == 404 || reqErr.StatusCode() == 403 {
			return true
		}
	}
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeNoSuchKey, "NotFound":
			return true
		}
	}
	return false
}
