package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"whatsapp-hub/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProcessor is a test implementation of EventProcessor
type mockProcessor struct {
	name           string
	processedCount atomic.Int32
	processingTime time.Duration
	processedIDs   []string
	mu             sync.Mutex
	onProcess      func(event EventMessage) error
}

func newMockProcessor(name string, processingTime time.Duration) *mockProcessor {
	return &mockProcessor{
		name:           name,
		processingTime: processingTime,
		processedIDs:   make([]string, 0),
	}
}

func (m *mockProcessor) Process(ctx context.Context, event EventMessage) error {
	if m.processingTime > 0 {
		time.Sleep(m.processingTime)
	}

	m.mu.Lock()
	m.processedIDs = append(m.processedIDs, event.ID)
	m.mu.Unlock()
	m.processedCount.Add(1)

	if m.onProcess != nil {
		return m.onProcess(event)
	}
	return nil
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) getProcessedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.processedIDs))
	copy(result, m.processedIDs)
	return result
}

func TestWorkerProcessesEventsUntilChannelClosed(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger()
	processor := newMockProcessor("inbound-messages", 10*time.Millisecond)

	eventCh := make(chan eventWithMsg, 10)
	var wg sync.WaitGroup

	c := &consumer{
		processor: processor,
		logger:    logger,
		eventCh:   eventCh,
	}

	wg.Add(1)
	go c.worker(&wg, 0, context.Background())

	for i := 0; i < 5; i++ {
		eventCh <- eventWithMsg{
			event: EventMessage{ID: fmt.Sprintf("msg-%d", i), Type: "message.received"},
		}
	}

	close(eventCh)
	wg.Wait()

	assert.Equal(t, int32(5), processor.processedCount.Load())
	assert.Len(t, processor.getProcessedIDs(), 5)
}

func TestWorkerCompletesInFlightEventBeforeExiting(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger()
	processor := newMockProcessor("inbound-messages", 100*time.Millisecond)

	eventCh := make(chan eventWithMsg, 10)
	var wg sync.WaitGroup

	c := &consumer{
		processor: processor,
		logger:    logger,
		eventCh:   eventCh,
	}

	wg.Add(1)
	go c.worker(&wg, 0, context.Background())

	eventCh <- eventWithMsg{
		event: EventMessage{ID: "slow-event"},
	}

	// Close the channel while the event is still processing; the worker
	// must still finish it.
	time.Sleep(20 * time.Millisecond)
	close(eventCh)
	wg.Wait()

	assert.Equal(t, int32(1), processor.processedCount.Load())
	assert.Contains(t, processor.getProcessedIDs(), "slow-event")
}

func TestMultipleWorkersProcessEventsConcurrently(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger()
	processor := newMockProcessor("inbound-messages", 50*time.Millisecond)

	eventCh := make(chan eventWithMsg, 100)
	var wg sync.WaitGroup

	c := &consumer{
		processor: processor,
		logger:    logger,
		eventCh:   eventCh,
	}

	numWorkers := 5
	numEvents := 20

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go c.worker(&wg, i, context.Background())
	}

	for i := 0; i < numEvents; i++ {
		eventCh <- eventWithMsg{
			event: EventMessage{ID: fmt.Sprintf("msg-%d", i)},
		}
	}

	close(eventCh)

	start := time.Now()
	wg.Wait()
	elapsed := time.Since(start)

	assert.Equal(t, int32(numEvents), processor.processedCount.Load())
	// Sequential processing would take 1s; 5 workers should finish in ~200ms.
	assert.Less(t, elapsed, 500*time.Millisecond, "Workers should process concurrently")
}

func TestConsumerStopWaitsForInFlightEvents(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger()
	processor := newMockProcessor("inbound-messages", 200*time.Millisecond)

	c := &consumer{
		config: ConsumerConfig{
			NumWorkers:   2,
			QueueSize:    10,
			DrainTimeout: 5 * time.Second,
		},
		processor: processor,
		logger:    logger,
		eventCh:   make(chan eventWithMsg, 10),
		doneCh:    make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel

	var workerWg sync.WaitGroup
	for i := 0; i < c.config.NumWorkers; i++ {
		workerWg.Add(1)
		go c.worker(&workerWg, i, ctx)
	}

	for i := 0; i < 4; i++ {
		c.eventCh <- eventWithMsg{
			event: EventMessage{ID: fmt.Sprintf("msg-%d", i)},
		}
	}

	time.Sleep(50 * time.Millisecond)

	c.stopping.Store(true)
	cancel()
	close(c.eventCh)

	start := time.Now()
	workerWg.Wait()
	elapsed := time.Since(start)

	assert.Equal(t, int32(4), processor.processedCount.Load())
	assert.Greater(t, elapsed, 100*time.Millisecond, "Should wait for in-flight events")
}

func TestStopOnceEnsuresSingleExecution(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger()
	processor := newMockProcessor("inbound-messages", 0)

	c := &consumer{
		config:    ConsumerConfig{},
		processor: processor,
		logger:    logger,
		eventCh:   make(chan eventWithMsg, 10),
		doneCh:    make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFetch = cancel

	close(c.doneCh)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()

	assert.True(t, c.stopping.Load())
	assert.Error(t, ctx.Err())
}

func TestNewConsumerDefaults(t *testing.T) {
	t.Parallel()

	logger := observability.NewLogger()
	processor := newMockProcessor("inbound-messages", 0)

	c := NewConsumer(ConsumerConfig{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "attribution-workers",
		Topic:         "whatsapp.message.received",
	}, processor, logger)

	require.NotNil(t, c)
}

func TestDefaultConsumerConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConsumerConfig(
		[]string{"broker1:9092", "broker2:9092"},
		"attribution-workers",
		"whatsapp.message.received",
	)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, config.Brokers)
	assert.Equal(t, "attribution-workers", config.ConsumerGroup)
	assert.Equal(t, "whatsapp.message.received", config.Topic)
	assert.Equal(t, 10, config.NumWorkers)
	assert.Equal(t, 100, config.QueueSize)
	assert.Equal(t, 30*time.Second, config.DrainTimeout)
}
