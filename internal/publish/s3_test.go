package publish

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agrocaged/internal/config"
	apperrors "agrocaged/internal/errors"
	"agrocaged/internal/exporter"
	"agrocaged/internal/shared/testutil"
)

type putCall struct {
	key             string
	body            string
	contentType     string
	contentEncoding string
}

type fakePutter struct {
	mu       sync.Mutex
	failures int
	err      error
	calls    []putCall
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.calls = append(f.calls, putCall{
		key:             aws.ToString(in.Key),
		body:            string(body),
		contentType:     aws.ToString(in.ContentType),
		contentEncoding: aws.ToString(in.ContentEncoding),
	})

	if f.err != nil {
		return nil, f.err
	}
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("503 slow down")
	}
	return &s3.PutObjectOutput{}, nil
}

func writeOutputSet(t *testing.T) (string, []exporter.Artifact) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"kpis.json":                         `{"saldo":1}`,
		"granular_cube.json.gz":             "gz",
		filepath.Join("csv", "by_sexo.csv"): "sexo\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir, []exporter.Artifact{
		{Name: "kpis", Path: "kpis.json"},
		{Name: "granularCube", Path: "granular_cube.json.gz"},
		{Name: "bySexo", Path: "csv/by_sexo.csv"},
	}
}

func newTestPublisher(t *testing.T, client ObjectPutter, prefix string) *S3Publisher {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	p := NewWithClient(client, config.PublishConfig{
		Bucket:     "dashboards",
		Prefix:     prefix,
		MaxElapsed: 200 * time.Millisecond,
	}, logger)
	p.interval = time.Millisecond
	return p
}

func TestPublishUploadsEveryArtifact(t *testing.T) {
	dir, artifacts := writeOutputSet(t)
	client := &fakePutter{}
	p := newTestPublisher(t, client, "/agro/parana/")

	require.NoError(t, p.Publish(context.Background(), dir, artifacts))

	require.Len(t, client.calls, 3)
	assert.Equal(t, putCall{
		key:         "agro/parana/kpis.json",
		body:        `{"saldo":1}`,
		contentType: "application/json",
	}, client.calls[0])
	assert.Equal(t, "agro/parana/granular_cube.json.gz", client.calls[1].key)
	assert.Equal(t, "application/json", client.calls[1].contentType)
	assert.Equal(t, "gzip", client.calls[1].contentEncoding)
	assert.Equal(t, "agro/parana/csv/by_sexo.csv", client.calls[2].key)
	assert.Equal(t, "text/csv; charset=utf-8", client.calls[2].contentType)
}

func TestPublishRetriesTransientFailures(t *testing.T) {
	dir, artifacts := writeOutputSet(t)
	client := &fakePutter{failures: 2}
	p := newTestPublisher(t, client, "")

	require.NoError(t, p.Publish(context.Background(), dir, artifacts[:1]))

	require.Len(t, client.calls, 3)
	for _, c := range client.calls {
		assert.Equal(t, "kpis.json", c.key)
	}
}

func TestPublishGivesUpAfterMaxElapsed(t *testing.T) {
	dir, artifacts := writeOutputSet(t)
	client := &fakePutter{err: errors.New("access denied")}
	p := newTestPublisher(t, client, "")

	err := p.Publish(context.Background(), dir, artifacts)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNetwork))
	assert.Contains(t, err.Error(), "s3://dashboards/kpis.json")
	assert.Greater(t, len(client.calls), 1)
}

func TestPublishMissingArtifact(t *testing.T) {
	dir, _ := writeOutputSet(t)
	p := newTestPublisher(t, &fakePutter{}, "")

	err := p.Publish(context.Background(), dir, []exporter.Artifact{{Name: "ghost", Path: "ghost.json"}})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}

func TestPublishCancelled(t *testing.T) {
	dir, artifacts := writeOutputSet(t)
	client := &fakePutter{}
	p := newTestPublisher(t, client, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, dir, artifacts)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.calls)
}

func TestNewS3PublisherRequiresBucket(t *testing.T) {
	_, err := NewS3Publisher(context.Background(), config.PublishConfig{}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"metadata.json":         "application/json",
		"granular_cube.json.gz": "application/json",
		"csv/kpis.csv":          "text/csv; charset=utf-8",
		"dashboard.xlsx":        "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"notes.bin":             "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentType(name), name)
	}
}
