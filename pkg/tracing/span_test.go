package tracing

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/relevance-engine/pkg/logger"
)

func TestChildInheritsTraceID(t *testing.T) {
	ctx, root := Start(context.Background(), "reload")
	_, err := uuid.Parse(root.TraceID)
	require.NoError(t, err)

	_, child := Start(ctx, "load")
	child.End()
	root.End()

	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, []*Span{child}, root.Children())
	assert.Same(t, root, FromContext(ctx))
}

func TestRootUsesRequestID(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-42")
	_, span := Start(ctx, "search")
	assert.Equal(t, "req-42", span.TraceID)
}

func TestConcurrentChildren(t *testing.T) {
	ctx, root := Start(context.Background(), "build")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, s := Start(ctx, "part")
			s.SetAttr("worker", true)
			s.End()
		}()
	}
	wg.Wait()
	assert.Len(t, root.Children(), 8)
}

func TestLogWritesTree(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New(&buf, "debug", "text")

	ctx, root := Start(context.Background(), "reload")
	root.SetAttr("pages", 3)
	_, child := Start(ctx, "pagerank")
	child.End()
	root.End()
	root.Log(ctx, l)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "span=reload")
	assert.Contains(t, lines[0], "pages=3")
	assert.Contains(t, lines[0], "depth=0")
	assert.Contains(t, lines[1], "span=pagerank")
	assert.Contains(t, lines[1], "depth=1")
}

func TestFromContextEmpty(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
