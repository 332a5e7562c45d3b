package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(endpoint string) *S3Service {
	client := s3.New(s3.Options{
		Region: "us-east-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "SECRET"}, nil
		}),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: true,
	})
	return NewS3Service(client)
}

func TestS3Service_GetObjectURL(t *testing.T) {
	svc := newTestService("http://127.0.0.1:9000")

	url, err := svc.GetObjectURL(context.Background(), "ledger", "statements/account-1/a.csv", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/ledger/statements/account-1/a.csv")
	assert.Contains(t, url, "X-Amz-Expires=900")
}

func TestS3Service_ListObjects(t *testing.T) {
	var gotPrefix string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefix = r.URL.Query().Get("prefix")
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>ledger</Name><Prefix>statements/account-1/</Prefix><KeyCount>1</KeyCount><MaxKeys>1000</MaxKeys>
<IsTruncated>false</IsTruncated>
<Contents><Key>statements/account-1/a.csv</Key><LastModified>2026-01-02T03:04:05.000Z</LastModified><Size>42</Size></Contents>
</ListBucketResult>`))
	}))
	defer srv.Close()

	objects, err := newTestService(srv.URL).ListObjects(context.Background(), "ledger", "statements/account-1/")
	require.NoError(t, err)
	assert.Equal(t, "statements/account-1/", gotPrefix)
	require.Len(t, objects, 1)
	assert.Equal(t, "statements/account-1/a.csv", objects[0].Key)
	assert.EqualValues(t, 42, objects[0].Size)
	require.NotNil(t, objects[0].LastModified)
}

func TestS3Service_RequiresBucket(t *testing.T) {
	svc := newTestService("http://127.0.0.1:9000")
	ctx := context.Background()

	_, err := svc.PutObject(ctx, "", "k", strings.NewReader("x"), "text/csv")
	assert.ErrorIs(t, err, errBucketRequired)

	_, err = svc.ListObjects(ctx, "", "")
	assert.ErrorIs(t, err, errBucketRequired)

	assert.ErrorIs(t, svc.DeletePrefix(ctx, "", "p"), errBucketRequired)
	assert.Error(t, svc.DeletePrefix(ctx, "ledger", "  "))

	_, err = svc.PutObject(ctx, "ledger", "/", strings.NewReader("x"), "text/csv")
	assert.Error(t, err)
}
