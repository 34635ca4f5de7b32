package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"dragon-duel-client/game"
	"dragon-duel-client/metrics"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "http://www.dragonsofmugloar.com"
	DefaultTimeout = 30 * time.Second

	ContentTypeJSON = "application/json; charset=utf-8"

	roundPath   = "/api/game"
	weatherPath = "/weather/api/report/"
)

// Operation names, used as metric labels and in errors.
const (
	OpFetchRound       = "fetch_round"
	OpSubmitAllocation = "submit_allocation"
	OpFetchWeather     = "fetch_weather"
)

// Realm holds basic-auth credentials applied to every call.
type Realm struct {
	Username string
	Password string
}

// Client issues non-blocking calls to the game service. A Client is safe for
// concurrent use; its settings are fixed at construction.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
	maxConns   int
	realm      *Realm
	limiter    *rate.Limiter

	inflight  *Inflight
	closeOnce sync.Once
	drained   chan struct{}
}

type Option func(c *Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient replaces the underlying transport. Timeout and pool options
// are then left to the caller's client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithMaxConnsPerHost(n int) Option {
	return func(c *Client) { c.maxConns = n }
}

func WithRealm(username, password string) Option {
	return func(c *Client) {
		if username == "" {
			return
		}
		c.realm = &Realm{Username: username, Password: password}
	}
}

// WithRateLimit caps outbound calls to rps with the given burst; rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		timeout:  DefaultTimeout,
		inflight: NewInflight(),
		drained:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if c.maxConns > 0 {
			transport.MaxConnsPerHost = c.maxConns
			transport.MaxIdleConnsPerHost = c.maxConns
		}
		c.httpClient = &http.Client{Transport: transport, Timeout: c.timeout}
	}
	c.baseURL = strings.TrimRight(c.baseURL, "/")
	return c
}

// FetchRound requests the next knight.
func (c *Client) FetchRound(ctx context.Context) *Future[game.Round] {
	return execute[game.Round](ctx, c, OpFetchRound, DecodeJSON, http.MethodGet, roundPath, nil)
}

// SubmitAllocation submits the dragon for round roundID.
func (c *Client) SubmitAllocation(ctx context.Context, roundID int, a game.Allocation) *Future[game.SubmissionResult] {
	path := fmt.Sprintf("%s/%d/solution", roundPath, roundID)
	return execute[game.SubmissionResult](ctx, c, OpSubmitAllocation, DecodeJSON, http.MethodPut, path, a)
}

// FetchWeather requests the weather report for a station. The report is XML.
func (c *Client) FetchWeather(ctx context.Context, stationID int) *Future[game.WeatherReport] {
	return execute[game.WeatherReport](ctx, c, OpFetchWeather, DecodeXML, http.MethodGet, weatherPath+strconv.Itoa(stationID), nil)
}

// Close stops accepting calls and blocks until every in-flight call has resolved.
func (c *Client) Close() {
	c.shutdown()
	<-c.drained
}

// CloseAsync stops accepting calls and drains in-flight calls in the background.
func (c *Client) CloseAsync() {
	c.shutdown()
}

func (c *Client) shutdown() {
	c.closeOnce.Do(func() {
		c.inflight.Close()
		log.Info().Interface("inflight", c.inflight.Snapshot()).Msg("client: closing; draining in-flight calls")
		go func() {
			c.inflight.Wait()
			c.httpClient.CloseIdleConnections()
			close(c.drained)
			log.Info().Msg("client: drained")
		}()
	})
}

// Closed reports whether Close or CloseAsync has been called.
func (c *Client) Closed() bool {
	return c.inflight.Closed()
}

// Drained is closed once the client is closed and no call is in flight.
func (c *Client) Drained() <-chan struct{} {
	return c.drained
}

// Inflight returns in-flight call counts per operation.
func (c *Client) Inflight() map[string]int {
	return c.inflight.Snapshot()
}

func isSuccess(statusCode int) bool {
	return statusCode > 199 && statusCode < 400
}

// execute issues one call and returns its future. The request is detached
// from ctx cancellation: the service cannot cancel a call once it is sent.
func execute[T any](ctx context.Context, c *Client, op string, target DecodeTarget, method, path string, payload any) *Future[T] {
	var zero T
	fut := newFuture[T]()
	start := time.Now()
	url := c.baseURL + path

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("op", op).Msg("client: failed to encode request body")
			resolve(fut, op, start, zero, &EncodeError{Op: op, Err: err})
			return fut
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), method, url, body)
	if err != nil {
		resolve(fut, op, start, zero, &TransportError{Op: op, URL: url, Err: err})
		return fut
	}
	if payload != nil {
		req.Header.Set("Content-Type", ContentTypeJSON)
	}
	if c.realm != nil {
		req.SetBasicAuth(c.realm.Username, c.realm.Password)
	}

	if !c.inflight.Begin(op) {
		resolve(fut, op, start, zero, &TransportError{Op: op, URL: url, Err: ErrClosed})
		return fut
	}
	metrics.CallsInFlight.Inc()
	log.Debug().Str("op", op).Str("method", method).Str("url", url).Msg("client: call issued")

	go func() {
		defer func() {
			metrics.CallsInFlight.Dec()
			c.inflight.End(op)
		}()
		v, err := do[T](c, req, op, target)
		resolve(fut, op, start, v, err)
	}()
	return fut
}

func do[T any](c *Client, req *http.Request, op string, target DecodeTarget) (T, error) {
	var v T
	url := req.URL.String()
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return v, &TransportError{Op: op, URL: url, Err: err}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return v, &TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return v, &TransportError{Op: op, URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if !isSuccess(resp.StatusCode) {
		return v, &ProtocolError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := target.decode(body, &v); err != nil {
		return v, &DecodeError{Op: op, Target: target, Body: string(body), Err: err}
	}
	return v, nil
}

func resolve[T any](fut *Future[T], op string, start time.Time, v T, err error) {
	duration := time.Since(start)
	metrics.CallDuration.WithLabelValues(op).Observe(duration.Seconds())
	metrics.CallsTotal.WithLabelValues(op, Kind(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Str("op", op).Str("kind", Kind(err)).Dur("duration", duration).Msg("client: call failed")
		fut.fail(err)
		return
	}
	log.Debug().Str("op", op).Dur("duration", duration).Msg("client: call succeeded")
	fut.succeed(v)
}
