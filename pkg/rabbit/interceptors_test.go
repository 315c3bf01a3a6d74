package rabbit_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rabbitz-io/rabbit/pkg/rabbit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	chain := rabbit.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	// Add multiple interceptors
	chain.AddRequestInterceptor(func(ctx context.Context, req *rabbit.InterceptedRequest) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *rabbit.InterceptedRequest) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}

	err := chain.ExecuteRequestInterceptors(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_ResponseInterceptors(t *testing.T) {
	chain := rabbit.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	// Add multiple interceptors
	chain.AddResponseInterceptor(func(ctx context.Context, req *rabbit.InterceptedRequest, resp *rabbit.InterceptedResponse) error {
		executionOrder = append(executionOrder, "first")
		return nil
	})

	chain.AddResponseInterceptor(func(ctx context.Context, req *rabbit.InterceptedRequest, resp *rabbit.InterceptedResponse) error {
		executionOrder = append(executionOrder, "second")
		return nil
	})

	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}
	resp := &rabbit.InterceptedResponse{
		StatusCode: 200,
	}

	err := chain.ExecuteResponseInterceptors(ctx, req, resp)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_RequestInterceptorError(t *testing.T) {
	chain := rabbit.NewInterceptorChain()
	ctx := context.Background()

	var reached bool

	chain.AddRequestInterceptor(func(ctx context.Context, req *rabbit.InterceptedRequest) error {
		return assert.AnError
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *rabbit.InterceptedRequest) error {
		reached = true
		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &rabbit.InterceptedRequest{Method: "GET", Path: "/test"})
	require.ErrorIs(t, err, assert.AnError)
	assert.False(t, reached)
}

func TestHeaderInterceptor(t *testing.T) {
	headers := map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	}

	interceptor := rabbit.HeaderInterceptor(headers)
	ctx := context.Background()
	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}

	err := interceptor(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

// recordingLogger captures log entries for assertions.
type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "debug: "+msg)
}

func (l *recordingLogger) Info(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "info: "+msg)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "warn: "+msg)
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.entries = append(l.entries, "error: "+msg)
}

func TestLoggingInterceptors(t *testing.T) {
	logger := &recordingLogger{}
	ctx := context.Background()
	req := &rabbit.InterceptedRequest{Method: "GET", Path: "/users"}

	err := rabbit.LoggingInterceptor(logger)(ctx, req)
	require.NoError(t, err)

	responseInterceptor := rabbit.LoggingResponseInterceptor(logger)

	err = responseInterceptor(ctx, req, &rabbit.InterceptedResponse{StatusCode: 200})
	require.NoError(t, err)

	// A failed call logs at error level
	err = responseInterceptor(ctx, req, &rabbit.InterceptedResponse{Error: assert.AnError})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"debug: API Request",
		"debug: API Response",
		"error: API Response Error",
	}, logger.entries)
}

func TestMetricsCollector(t *testing.T) {
	collector := rabbit.NewMetricsCollector()

	// Unknown endpoints have no metrics
	assert.Nil(t, collector.GetMetrics("GET /users"))

	requestInterceptor := rabbit.MetricsRequestInterceptor(collector)
	responseInterceptor := rabbit.MetricsResponseInterceptor(collector)

	ctx := context.Background()
	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/users",
	}

	err := requestInterceptor(ctx, req)
	require.NoError(t, err)

	// Simulate some latency
	time.Sleep(10 * time.Millisecond)

	err = responseInterceptor(ctx, req, &rabbit.InterceptedResponse{StatusCode: 200})
	require.NoError(t, err)

	metrics := collector.GetMetrics("GET /users")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Equal(t, int64(0), metrics.TotalErrors)
	assert.Positive(t, metrics.AverageLatency)
	assert.False(t, metrics.LastRequestTime.IsZero())

	// A server error counts toward TotalErrors
	req2 := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/users",
	}

	err = responseInterceptor(ctx, req2, &rabbit.InterceptedResponse{StatusCode: 500})
	require.NoError(t, err)

	metrics = collector.GetMetrics("GET /users")
	assert.Equal(t, int64(2), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)

	// A transport failure without a status also counts
	err = responseInterceptor(ctx, req2, &rabbit.InterceptedResponse{Error: assert.AnError})
	require.NoError(t, err)

	metrics = collector.GetMetrics("GET /users")
	assert.Equal(t, int64(3), metrics.TotalRequests)
	assert.Equal(t, int64(2), metrics.TotalErrors)

	// Endpoints are tracked independently
	assert.Nil(t, collector.GetMetrics("DELETE /users"))
}

func TestCircuitBreaker(t *testing.T) {
	config := &rabbit.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          100 * time.Millisecond,
		SuccessThreshold: 1,
	}
	breaker := rabbit.NewCircuitBreaker(config)

	requestInterceptor := rabbit.CircuitBreakerRequestInterceptor(breaker)
	responseInterceptor := rabbit.CircuitBreakerResponseInterceptor(breaker)

	ctx := context.Background()
	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}

	// Circuit is closed initially
	err := requestInterceptor(ctx, req)
	require.NoError(t, err)

	// Failures up to the threshold open the circuit
	for range 2 {
		err = responseInterceptor(ctx, req, &rabbit.InterceptedResponse{StatusCode: 500})
		require.NoError(t, err)
	}

	err = requestInterceptor(ctx, req)
	require.ErrorIs(t, err, rabbit.ErrCircuitBreakerOpen)

	// After the open window the circuit lets a trial request through
	time.Sleep(150 * time.Millisecond)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)

	// A success in half-open closes the circuit again
	err = responseInterceptor(ctx, req, &rabbit.InterceptedResponse{StatusCode: 200})
	require.NoError(t, err)

	err = requestInterceptor(ctx, req)
	require.NoError(t, err)
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	config := &rabbit.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          50 * time.Millisecond,
		SuccessThreshold: 2,
	}
	breaker := rabbit.NewCircuitBreaker(config)

	requestInterceptor := rabbit.CircuitBreakerRequestInterceptor(breaker)
	responseInterceptor := rabbit.CircuitBreakerResponseInterceptor(breaker)

	ctx := context.Background()
	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}

	for range 2 {
		err := responseInterceptor(ctx, req, &rabbit.InterceptedResponse{StatusCode: 500})
		require.NoError(t, err)
	}

	time.Sleep(80 * time.Millisecond)

	// The trial request is let through half-open
	err := requestInterceptor(ctx, req)
	require.NoError(t, err)

	// A failure during the trial reopens immediately
	err = responseInterceptor(ctx, req, &rabbit.InterceptedResponse{StatusCode: 503})
	require.NoError(t, err)

	err = requestInterceptor(ctx, req)
	require.ErrorIs(t, err, rabbit.ErrCircuitBreakerOpen)
}

func TestRateLimiter(t *testing.T) {
	limiter := rabbit.NewRateLimiter(2)
	defer limiter.Stop()

	interceptor := limiter.Interceptor()
	ctx := context.Background()
	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}

	// The burst allowance passes immediately
	require.NoError(t, interceptor(ctx, req))
	require.NoError(t, interceptor(ctx, req))

	// An exhausted bucket blocks until ctx is done
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := interceptor(cancelled, req)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := rabbit.NewRateLimiter(20)
	defer limiter.Stop()

	interceptor := limiter.Interceptor()
	req := &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	}

	// Drain the burst allowance
	for range 20 {
		require.NoError(t, interceptor(context.Background(), req))
	}

	// The next request unblocks once a permit is refilled
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := interceptor(ctx, req)
	require.NoError(t, err)
}

func TestRateLimiter_StopIdempotent(t *testing.T) {
	limiter := rabbit.NewRateLimiter(1)

	limiter.Stop()
	limiter.Stop()

	// A permit acquired before Stop remains usable
	err := limiter.Interceptor()(context.Background(), &rabbit.InterceptedRequest{
		Method: "GET",
		Path:   "/test",
	})
	require.NoError(t, err)
}

func TestMetricsResponseInterceptor_StatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantError  bool
	}{
		{"success", http.StatusOK, false},
		{"created", http.StatusCreated, false},
		{"client error", http.StatusNotFound, true},
		{"server error", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := rabbit.NewMetricsCollector()
			interceptor := rabbit.MetricsResponseInterceptor(collector)
			req := &rabbit.InterceptedRequest{Method: "GET", Path: "/status"}

			err := interceptor(context.Background(), req, &rabbit.InterceptedResponse{StatusCode: tt.statusCode})
			require.NoError(t, err)

			metrics := collector.GetMetrics("GET /status")
			require.NotNil(t, metrics)

			if tt.wantError {
				assert.Equal(t, int64(1), metrics.TotalErrors)
			} else {
				assert.Equal(t, int64(0), metrics.TotalErrors)
			}
		})
	}
}
