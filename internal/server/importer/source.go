package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	sc "github.com/dmitrijs2005/dzakcloud/internal/server/config"
)

// Source yields the legacy JSON files by name. Open returns an error
// matching fs.ErrNotExist when the file is absent.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// DirSource reads files from a local directory.
type DirSource struct {
	Dir string
}

func (s DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.Dir, name))
}

func (s DirSource) String() string { return s.Dir }

type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads files from bucket/prefix in an S3-compatible store.
type S3Source struct {
	Bucket string
	Prefix string
	client objectGetter
}

var newS3Client = func(ctx context.Context, cfg *sc.Config) (objectGetter, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := path.Join(s.Prefix, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, fmt.Errorf("s3://%s/%s: %w", s.Bucket, key, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	return out.Body, nil
}

func (s *S3Source) String() string {
	return "s3://" + path.Join(s.Bucket, s.Prefix)
}

func isNoSuchKey(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey"
}

// NewSource resolves a location: "s3://bucket/prefix" selects S3, anything
// else is a local directory.
func NewSource(ctx context.Context, cfg *sc.Config, location string) (Source, error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		if location == "" {
			location = "data"
		}
		return DirSource{Dir: location}, nil
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, fmt.Errorf("invalid s3 location %q: missing bucket", location)
	}

	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("s3 client: %w", err)
	}
	return &S3Source{Bucket: bucket, Prefix: strings.Trim(prefix, "/"), client: client}, nil
}
