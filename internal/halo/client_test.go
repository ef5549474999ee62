package halo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/secrets"
	"bendigotelco/connecthub/pkg/apperr"
)

// fakeHalo is an httptest-backed upstream with scriptable /api behavior.
type fakeHalo struct {
	server     *httptest.Server
	tokenCalls atomic.Int64
	apiCalls   atomic.Int64
	handleAPI  func(w http.ResponseWriter, r *http.Request)
}

func newFakeHalo(t *testing.T, handleAPI func(w http.ResponseWriter, r *http.Request)) *fakeHalo {
	t.Helper()
	f := &fakeHalo{handleAPI: handleAPI}
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "all", r.Form.Get("scope"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token":"tok-%d","token_type":"Bearer","expires_in":3600}`, f.tokenCalls.Load())
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		f.apiCalls.Add(1)
		f.handleAPI(w, r)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeHalo) provider() secrets.Provider {
	return secrets.NewStaticProvider(secrets.Bundle{
		APIBaseURL:   f.server.URL,
		ClientID:     "client",
		ClientSecret: "secret",
		TenantID:     "tenant-1",
	})
}

func newTestClient(f *fakeHalo, opts Options) *Client {
	c := NewClient(f.provider(), zap.NewNop(), opts)
	c.SetSleepForTest(func(time.Duration) {})
	return c
}

func writeCustomers(w http.ResponseWriter, customers ...model.Customer) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string][]model.Customer{"customers": customers})
}

func TestSearchCustomerByPhone(t *testing.T) {
	ctx := context.Background()
	jane := model.Customer{ID: "42", Name: "Jane", Status: model.CustomerStatusActive}

	t.Run("found", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/Customers", r.URL.Path)
			assert.Equal(t, "+61412345678", r.URL.Query().Get("search"))
			assert.Equal(t, "phone", r.URL.Query().Get("searchtype"))
			assert.Equal(t, "1", r.URL.Query().Get("count"))
			assert.Equal(t, "tenant-1", r.Header.Get("X-Tenant"))
			assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			writeCustomers(w, jane)
		})
		c := newTestClient(f, Options{})

		got, err := c.SearchCustomerByPhone(ctx, "+61412345678")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "42", got.ID)
		assert.Equal(t, "Jane", got.Name)
	})

	t.Run("not found is nil without error", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			writeCustomers(w)
		})
		c := newTestClient(f, Options{})

		got, err := c.SearchCustomerByPhone(ctx, "+15550000000")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("token reused across calls", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			writeCustomers(w, jane)
		})
		c := newTestClient(f, Options{})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.NoError(t, err)
		_, err = c.SearchCustomerByPhone(ctx, "+15557654321")
		require.NoError(t, err)

		assert.Equal(t, int64(1), f.tokenCalls.Load())
		assert.Equal(t, int64(2), f.apiCalls.Load())
	})

	t.Run("expired token refreshed proactively", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			writeCustomers(w, jane)
		})
		c := newTestClient(f, Options{})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.NoError(t, err)

		// Jump to inside the 60s safety margin before real expiry.
		c.now = func() time.Time { return time.Now().Add(3600*time.Second - 30*time.Second) }
		_, err = c.SearchCustomerByPhone(ctx, "+15551234567")
		require.NoError(t, err)

		assert.Equal(t, int64(2), f.tokenCalls.Load())
	})
}

func TestAuthRetryOn401(t *testing.T) {
	ctx := context.Background()

	t.Run("single re-auth and replay succeeds", func(t *testing.T) {
		var apiHits atomic.Int64
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			if apiHits.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			// Replay must carry the re-issued token.
			assert.Equal(t, "Bearer tok-2", r.Header.Get("Authorization"))
			writeCustomers(w, model.Customer{ID: "7", Name: "Sam"})
		})
		c := newTestClient(f, Options{})

		got, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(2), f.tokenCalls.Load())
		assert.Equal(t, int64(2), f.apiCalls.Load())
	})

	t.Run("second consecutive 401 propagates without another re-auth", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		c := newTestClient(f, Options{})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.Error(t, err)
		assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
		// Initial token + exactly one re-auth; original + exactly one replay.
		assert.Equal(t, int64(2), f.tokenCalls.Load())
		assert.Equal(t, int64(2), f.apiCalls.Load())
	})
}

func TestRetryPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("429 retried until success", func(t *testing.T) {
		var hits atomic.Int64
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			if hits.Add(1) < 3 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			writeCustomers(w, model.Customer{ID: "1"})
		})
		c := newTestClient(f, Options{MaxRetries: 3})

		got, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(3), f.apiCalls.Load())
	})

	t.Run("attempts capped at max retries", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		c := newTestClient(f, Options{MaxRetries: 3})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.Error(t, err)
		assert.Equal(t, apperr.KindNetwork, apperr.KindOf(err))
		assert.Equal(t, int64(3), f.apiCalls.Load())
	})

	t.Run("other 4xx fails immediately", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		c := newTestClient(f, Options{MaxRetries: 3})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.Error(t, err)
		assert.Equal(t, int64(1), f.apiCalls.Load())
	})

	t.Run("timeout classified as timeout error", func(t *testing.T) {
		f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			writeCustomers(w)
		})
		c := newTestClient(f, Options{MaxRetries: 1, Timeout: 50 * time.Millisecond})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.Error(t, err)
		assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
	})

	t.Run("rejected credentials at token endpoint", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/auth/token", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"invalid_client"}`)
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		provider := secrets.NewStaticProvider(secrets.Bundle{
			APIBaseURL: srv.URL, ClientID: "bad", ClientSecret: "bad", TenantID: "t",
		})
		c := NewClient(provider, zap.NewNop(), Options{})
		c.SetSleepForTest(func(time.Duration) {})

		_, err := c.SearchCustomerByPhone(ctx, "+15551234567")
		require.Error(t, err)
		assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
	})
}

func TestCreateCallLog(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	end := start.Add(6 * time.Minute)

	f := newFakeHalo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/Tickets", r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Call from +61412345678", body["summary"])
		assert.Equal(t, "No transcript available", body["details"])
		assert.Equal(t, float64(1), body["category_id"])
		assert.Equal(t, float64(26), body["type_id"])
		assert.Equal(t, float64(29), body["status_id"])
		assert.Equal(t, "2025-03-10T09:30:00Z", body["dateoccurred"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":9001,"summary":"Call from +61412345678"}`)
	})
	c := newTestClient(f, Options{})

	ticket, err := c.CreateCallLog(context.Background(), model.CallData{
		PhoneNumber: "+61412345678",
		CustomerID:  "42",
		AgentID:     "agent-9",
		StartTime:   start,
		EndTime:     end,
	})
	require.NoError(t, err)
	assert.Equal(t, 9001, ticket.ID)
}
