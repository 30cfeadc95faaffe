// Package etl loads the postcode CSV into the location store and reports on
// the loaded table.
package etl

import (
	"context"
	"encoding/csv"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"locator/internal/errors"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// source is an open CSV object together with its bucket.
type source struct {
	io.ReadCloser

	bucket *blob.Bucket
}

func (s *source) Close() error {
	return errors.Join(s.ReadCloser.Close(), s.bucket.Close())
}

// OpenSource opens a CSV from a local path or a bucket URL such as
// file:///data/locations.csv, gs://bucket/locations.csv or s3://bucket/locations.csv.
// Cloud schemes need their driver registered by the binary.
func OpenSource(ctx context.Context, location string) (io.ReadCloser, error) {
	bucket, key, err := openBucket(ctx, location)
	if err != nil {
		return nil, err
	}

	reader, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		_ = bucket.Close()

		return nil, errors.Wrapf(err, "failed to open %s", location)
	}

	return &source{ReadCloser: reader, bucket: bucket}, nil
}

func openBucket(ctx context.Context, location string) (*blob.Bucket, string, error) {
	if !strings.Contains(location, "://") {
		abs, err := filepath.Abs(location)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to resolve %s", location)
		}

		bucket, err := fileblob.OpenBucket(filepath.Dir(abs), nil)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to open directory of %s", location)
		}

		return bucket, filepath.Base(abs), nil
	}

	u, err := url.Parse(location)
	if err != nil {
		return nil, "", errors.Wrapf(err, "invalid source URL %s", location)
	}

	var bucketURL, key string
	if u.Scheme == fileblob.Scheme {
		bucketURL = "file://" + filepath.ToSlash(filepath.Dir(u.Path))
		key = filepath.Base(u.Path)
	} else {
		key = strings.TrimPrefix(u.Path, "/")
		bucketURL = u.Scheme + "://" + u.Host
		if u.RawQuery != "" {
			bucketURL += "?" + u.RawQuery
		}
	}
	if key == "" {
		return nil, "", errors.Errorf("source URL %s names no object", location)
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to open bucket %s", bucketURL)
	}

	return bucket, key, nil
}

// CountRows counts the data records of a CSV source, excluding the header.
func CountRows(ctx context.Context, location string) (int64, error) {
	rc, err := OpenSource(ctx, location)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	reader := csv.NewReader(rc)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	var rows int64
	for {
		_, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, errors.Wrapf(err, "failed to read %s", location)
		}
		rows++
	}

	if rows == 0 {
		return 0, nil
	}

	return rows - 1, nil
}
