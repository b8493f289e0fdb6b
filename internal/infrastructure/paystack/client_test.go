package paystack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	dompay "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{SecretKey: "sk_test_123", BaseURL: srv.URL}, observability.Nop())
}

func TestInitialize(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "ada@example.com", body["email"])
		assert.EqualValues(t, 2000, body["amount"])
		assert.Equal(t, "https://api.example/cb", body["callback_url"])
		assert.IsType(t, map[string]any{}, body["metadata"])

		_, _ = io.WriteString(w, `{"status":true,"message":"Authorization URL created",`+
			`"data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref-1"}}`)
	})

	auth, err := c.Initialize(context.Background(), dompay.InitializeRequest{
		Email:       "ada@example.com",
		AmountMinor: 2000,
		Metadata:    json.RawMessage(`{"items":[]}`),
		CallbackURL: "https://api.example/cb",
	})
	require.NoError(t, err)
	assert.Equal(t, dompay.Authorization{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		AccessCode:       "abc",
		Reference:        "ref-1",
	}, auth)
}

func TestVerify_Success(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		_, _ = io.WriteString(w, `{"status":true,"message":"Verification successful","data":{`+
			`"status":"success","reference":"ref-1","amount":2000,"currency":"NGN",`+
			`"customer":{"email":"ada@example.com"},"metadata":"{\"items\":[]}"}}`)
	})

	v, err := c.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.True(t, v.Success)
	assert.True(t, v.PaidAmount.Equal(decimal.RequireFromString("20.00")))
	assert.Equal(t, "NGN", v.Currency)
	assert.Equal(t, "ada@example.com", v.CustomerEmail)
	assert.JSONEq(t, `"{\"items\":[]}"`, string(v.Metadata))
}

func TestVerify_NotSuccessful(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":true,"message":"ok","data":{"status":"abandoned","reference":"ref-1","amount":2000}}`)
	})

	v, err := c.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.False(t, v.Success)
	assert.Equal(t, "abandoned", v.Status)
}

func TestVerify_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusBadGateway, `oops`, dompay.ErrGateway},
		{"garbage", http.StatusOK, `<html>`, dompay.ErrGateway},
		{"unknown reference", http.StatusBadRequest, `{"status":false,"message":"Transaction reference not found"}`, dompay.ErrDeclined},
		{"status false", http.StatusOK, `{"status":false,"message":"Invalid key"}`, dompay.ErrDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.Verify(context.Background(), "ref-1")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := New(Config{}, nil).Verify(context.Background(), "")
	assert.ErrorIs(t, err, dompay.ErrMissingReference)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < breakerFailures; i++ {
		_, err := c.Verify(context.Background(), "ref-1")
		assert.ErrorIs(t, err, dompay.ErrGateway)
	}
	_, err := c.Verify(context.Background(), "ref-1")
	assert.ErrorIs(t, err, dompay.ErrGateway)
	assert.Equal(t, int32(breakerFailures), hits.Load())
}

func TestBreaker_IgnoresRejections(t *testing.T) {
	var hits atomic.Int32
	c := newClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"status":false,"message":"not found"}`)
	})

	for i := 0; i < breakerFailures+2; i++ {
		_, err := c.Verify(context.Background(), "ref-1")
		assert.ErrorIs(t, err, dompay.ErrDeclined)
	}
	assert.Equal(t, int32(breakerFailures+2), hits.Load())
}
