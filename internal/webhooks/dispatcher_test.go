package webhooks

import (
	"crypto/hmac"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDispatchDeliversSignedEnvelope(t *testing.T) {
	var body []byte
	var signature string
	received := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		signature = r.Header.Get(SignatureHeader)
	}))
	defer received.Close()

	d := NewDispatcher(time.Second, 1)
	d.Dispatch(Intent{
		URL:     received.URL,
		Secret:  "whsec",
		Event:   "payment.succeeded",
		Payload: map[string]string{"transaction_hash": "0xabc"},
	})
	d.Wait()

	require.NotEmpty(t, body)
	require.True(t, hmac.Equal([]byte(Sign("whsec", body)), []byte(signature)))

	var env struct {
		Event     string            `json:"event"`
		Data      map[string]string `json:"data"`
		Timestamp int64             `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.Equal(t, "payment.succeeded", env.Event)
	require.Equal(t, "0xabc", env.Data["transaction_hash"])
	require.NotZero(t, env.Timestamp)
}

func TestDispatchRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer flaky.Close()

	d := NewDispatcher(time.Second, 2)
	d.Dispatch(Intent{URL: flaky.URL, Event: "payment.succeeded"})
	d.Wait()

	require.EqualValues(t, 2, calls.Load())
}

func TestDispatchGivesUpAfterBudget(t *testing.T) {
	var calls atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	d := NewDispatcher(time.Second, 2)
	d.Dispatch(Intent{URL: failing.URL, Event: "payment.succeeded"})
	d.Wait()

	require.EqualValues(t, 2, calls.Load())
}

func TestDispatchSkipsEmptyURL(t *testing.T) {
	d := NewDispatcher(time.Second, 1)
	d.Dispatch(Intent{Event: "payment.succeeded"})
	d.Wait()
}

func TestDispatchOmitsSignatureWithoutSecret(t *testing.T) {
	var signature atomic.Value
	received := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		signature.Store(r.Header.Get(SignatureHeader))
	}))
	defer received.Close()

	d := NewDispatcher(time.Second, 1)
	d.Dispatch(Intent{URL: received.URL, Event: "payment.succeeded"})
	d.Wait()

	require.Equal(t, "", signature.Load())
}
