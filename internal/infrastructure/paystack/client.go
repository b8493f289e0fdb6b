package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	dompay "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/sony/gobreaker/v2"
)

const (
	DefaultBaseURL = "https://api.paystack.co"
	DefaultTimeout = 15 * time.Second

	peerPaystack       = "paystack"
	endpointInitialize = "transaction.initialize"
	endpointVerify     = "transaction.verify"
	statusSuccess      = "success"
	maxBodyBytes       = 1 << 20

	breakerFailures = 5
	breakerOpenFor  = 30 * time.Second
)

// errRejected marks a definitive 4xx answer. The gateway is healthy, so it
// does not count against the breaker.
var errRejected = errors.New("paystack: request rejected")

type Config struct {
	SecretKey  string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the Paystack transaction API. Calls are never retried; a
// breaker opens after consecutive transport or server failures and fails
// fast while open.
type Client struct {
	http    *http.Client
	baseURL string
	secret  string
	cb      *gobreaker.CircuitBreaker[*envelope]
	log     observability.Logger

	extCounter   observability.Counter
	extHistogram observability.Histogram
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func New(cfg Config, tel observability.Observability) *Client {
	if tel == nil {
		tel = observability.Nop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	log := tel.Logger().With(observability.F("component", peerPaystack))

	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.SecretKey,
		cb: gobreaker.NewCircuitBreaker[*envelope](gobreaker.Settings{
			Name:        peerPaystack,
			MaxRequests: 1,
			Timeout:     breakerOpenFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= breakerFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, errRejected)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("circuit_breaker_state_change",
					observability.F("breaker", name),
					observability.F("from", from.String()),
					observability.F("to", to.String()),
				)
			},
		}),
		log:          log,
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

type initializeBody struct {
	Email       string          `json:"email"`
	Amount      int64           `json:"amount"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CallbackURL string          `json:"callback_url,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

func (c *Client) Initialize(ctx context.Context, req dompay.InitializeRequest) (dompay.Authorization, error) {
	body, err := json.Marshal(initializeBody{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Metadata:    req.Metadata,
		CallbackURL: req.CallbackURL,
	})
	if err != nil {
		return dompay.Authorization{}, fmt.Errorf("%w: encode initialize: %v", dompay.ErrGateway, err)
	}

	env, err := c.call(ctx, endpointInitialize, http.MethodPost, "/transaction/initialize", body)
	if err != nil {
		return dompay.Authorization{}, gatewayError(err)
	}
	var data initializeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return dompay.Authorization{}, fmt.Errorf("%w: decode initialize data: %v", dompay.ErrGateway, err)
	}
	if data.AuthorizationURL == "" || data.Reference == "" {
		return dompay.Authorization{}, fmt.Errorf("%w: initialize returned no authorization", dompay.ErrGateway)
	}
	return dompay.Authorization{
		AuthorizationURL: data.AuthorizationURL,
		AccessCode:       data.AccessCode,
		Reference:        data.Reference,
	}, nil
}

type verifyData struct {
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
	Metadata json.RawMessage `json:"metadata"`
}

// Verify reports the gateway's view of a transaction. A reference the gateway
// refuses outright is ErrDeclined; transport and server failures are ErrGateway.
func (c *Client) Verify(ctx context.Context, reference string) (dompay.Verification, error) {
	if reference == "" {
		return dompay.Verification{}, dompay.ErrMissingReference
	}

	env, err := c.call(ctx, endpointVerify, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil)
	if err != nil {
		if errors.Is(err, errRejected) {
			return dompay.Verification{}, fmt.Errorf("%w: %v", dompay.ErrDeclined, err)
		}
		return dompay.Verification{}, gatewayError(err)
	}
	var data verifyData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return dompay.Verification{}, fmt.Errorf("%w: decode verify data: %v", dompay.ErrGateway, err)
	}
	return dompay.Verification{
		Success:       data.Status == statusSuccess,
		Status:        data.Status,
		Reference:     data.Reference,
		PaidAmount:    dompay.FromMinor(data.Amount),
		Currency:      data.Currency,
		CustomerEmail: data.Customer.Email,
		Metadata:      data.Metadata,
	}, nil
}

func (c *Client) call(ctx context.Context, endpoint, method, path string, body []byte) (_ *envelope, err error) {
	start := time.Now()
	defer func() {
		outcome := "success"
		switch {
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			outcome = "short_circuit"
		case errors.Is(err, errRejected):
			outcome = "rejected"
		case err != nil:
			outcome = "error"
		}
		c.extCounter.Add(1,
			observability.L("peer", peerPaystack),
			observability.L("endpoint", endpoint),
			observability.L("outcome", outcome),
		)
		c.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", peerPaystack),
			observability.L("endpoint", endpoint),
		)
		if err != nil {
			logctx.FromOr(ctx, c.log).Warn("paystack_call_failed",
				observability.F("endpoint", endpoint),
				observability.F("outcome", outcome),
				observability.E(err),
			)
		}
	}()

	return c.cb.Execute(func() (*envelope, error) {
		return c.do(ctx, method, path, body)
	})
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*envelope, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		msg := env.Message
		if decodeErr != nil || msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, fmt.Errorf("%w: http %d: %s", errRejected, resp.StatusCode, msg)
	case decodeErr != nil:
		return nil, fmt.Errorf("decode envelope: %w", decodeErr)
	case !env.Status:
		return nil, fmt.Errorf("%w: %s", errRejected, env.Message)
	}
	return &env, nil
}

func gatewayError(err error) error {
	return fmt.Errorf("%w: %v", dompay.ErrGateway, err)
}
