// FILE: internal/service/consumer_service_test.go
package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-mailassist-be/internal/entity"
	"ai-mailassist-be/pkg/embedding"
)

type stubEmbedder struct{}

func (stubEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	return nil, errors.New("embedding backend down")
}

// recordingLogger captures structured log calls so tests can assert the
// consumer reports its failures through the app logger.
type recordingLogger struct {
	mu     sync.Mutex
	errors []string
	infos  []string
}

func (l *recordingLogger) Debug(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Info(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, message)
}
func (l *recordingLogger) Warn(module, message string, details map[string]interface{}) {}
func (l *recordingLogger) Error(module, message string, details map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, message)
}
func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) errorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.errors)
}

type recordingEmbeddingRepo struct {
	replaced chan replaceCall
}

type replaceCall struct {
	source     string
	embeddings []*entity.DocumentEmbedding
}

func newRecordingEmbeddingRepo() *recordingEmbeddingRepo {
	return &recordingEmbeddingRepo{replaced: make(chan replaceCall, 1)}
}

func (r *recordingEmbeddingRepo) CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error {
	return nil
}
func (r *recordingEmbeddingRepo) DeleteBySource(ctx context.Context, source string) error {
	return nil
}
func (r *recordingEmbeddingRepo) ReplaceForSource(ctx context.Context, source string, embeddings []*entity.DocumentEmbedding) error {
	r.replaced <- replaceCall{source: source, embeddings: embeddings}
	return nil
}
func (r *recordingEmbeddingRepo) SearchSimilar(ctx context.Context, emb []float32, limit int) ([]*entity.DocumentEmbedding, error) {
	return nil, nil
}
func (r *recordingEmbeddingRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func TestUploadFlowsThroughToEmbeddingStore(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := newRecordingEmbeddingRepo()

	consumer := NewConsumerService(pubSub, "EMBED_DOCUMENT", repo, stubEmbedder{}, &recordingLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService("EMBED_DOCUMENT", pubSub)
	require.NoError(t, publisher.PublishEmbedDocument("report.txt", "quarterly revenue grew twelve percent"))

	select {
	case call := <-repo.replaced:
		assert.Equal(t, "report.txt", call.source)
		require.Len(t, call.embeddings, 1, "short content is a single chunk")
		e := call.embeddings[0]
		assert.Equal(t, "report.txt", e.Source)
		assert.Equal(t, 0, e.ChunkIndex)
		assert.Equal(t, []float32{0.1, 0.2, 0.3}, e.EmbeddingValue)
		assert.Equal(t, "quarterly revenue grew twelve percent", e.Document)
	case <-time.After(2 * time.Second):
		t.Fatal("embedding was never stored")
	}
}

func TestLongUploadIsChunked(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := newRecordingEmbeddingRepo()

	consumer := NewConsumerService(pubSub, "EMBED_DOCUMENT", repo, stubEmbedder{}, &recordingLogger{})
	require.NoError(t, consumer.Consume(context.Background()))

	long := make([]byte, 4000)
	for i := range long {
		long[i] = 'a'
	}

	publisher := NewPublisherService("EMBED_DOCUMENT", pubSub)
	require.NoError(t, publisher.PublishEmbedDocument("big.txt", string(long)))

	select {
	case call := <-repo.replaced:
		assert.Greater(t, len(call.embeddings), 1)
		for i, e := range call.embeddings {
			assert.Equal(t, i, e.ChunkIndex)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("embedding was never stored")
	}
}

func TestEmbeddingFailureIsLogged(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	repo := newRecordingEmbeddingRepo()
	logs := &recordingLogger{}

	consumer := NewConsumerService(pubSub, "EMBED_DOCUMENT", repo, failingEmbedder{}, logs)
	require.NoError(t, consumer.Consume(context.Background()))

	publisher := NewPublisherService("EMBED_DOCUMENT", pubSub)
	require.NoError(t, publisher.PublishEmbedDocument("report.txt", "some content"))

	// the failure path must log through the app logger, not store anything
	require.Eventually(t, func() bool {
		return logs.errorCount() > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, repo.replaced)
}
