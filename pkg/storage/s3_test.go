package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const noSuchKeyXML = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

// fakeS3 serves path-style Get/Put/Delete object requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// /<bucket>/<key>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}
	switch req.Method {
	case http.MethodPut:
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		if decoded, ok := decodeAWSChunked(body); ok {
			body = decoded
		}
		f.objects[key] = body
		return fakeResponse(http.StatusOK, nil, http.Header{"ETag": {`"etag"`}}), nil
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return fakeResponse(http.StatusNotFound, []byte(noSuchKeyXML), http.Header{"Content-Type": {"application/xml"}}), nil
		}
		return fakeResponse(http.StatusOK, body, http.Header{
			"Content-Type":   {"application/json"},
			"Content-Length": {strconv.Itoa(len(body))},
		}), nil
	case http.MethodDelete:
		delete(f.objects, key)
		return fakeResponse(http.StatusNoContent, nil, http.Header{}), nil
	}
	return fakeResponse(http.StatusNotImplemented, nil, http.Header{}), nil
}

func fakeResponse(code int, body []byte, header http.Header) *http.Response {
	return &http.Response{
		StatusCode:    code,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
}

// decodeAWSChunked unwraps a single chunk aws-chunked payload.
func decodeAWSChunked(b []byte) ([]byte, bool) {
	parts := strings.Split(string(b), "\r\n")
	if len(parts) < 3 {
		return nil, false
	}
	size, err := strconv.ParseInt(strings.SplitN(parts[0], ";", 2)[0], 16, 64)
	if err != nil || int64(len(parts[1])) != size || !strings.HasPrefix(parts[2], "0") {
		return nil, false
	}
	return []byte(parts[1]), true
}

func newFakeS3Store(t *testing.T, prefix string) (*S3, *fakeS3) {
	t.Helper()
	t.Setenv("AWS_CONFIG_FILE", "/dev/null")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/dev/null")
	fake := &fakeS3{objects: make(map[string][]byte)}
	store, err := NewS3(context.Background(), S3Config{
		Bucket:          "forms",
		Prefix:          prefix,
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	if err != nil {
		t.Fatalf("new s3 store: %v", err)
	}
	return store, fake
}

func TestS3StoresUnderPrefixedJSONKey(t *testing.T) {
	store, fake := newFakeS3Store(t, "/builder/")
	if err := store.Put(context.Background(), DefaultKey, []byte(`[]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	want := fmt.Sprintf("builder/%s.json", DefaultKey)
	if got, ok := fake.objects[want]; !ok || string(got) != `[]` {
		t.Fatalf("expected object %q, have %v", want, fake.objects)
	}
}

func TestS3RequiresBucket(t *testing.T) {
	if _, err := NewS3(context.Background(), S3Config{}); err == nil {
		t.Fatal("expected missing bucket to be rejected")
	}
}
