package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	return New(srv.URL, 5*time.Second), srv
}

func TestClient_StructuredErrorBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "not enough stock"})
	})
	defer srv.Close()

	_, err := client.Cart(context.Background(), 1)
	require.Error(t, err)

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "not enough stock", apiErr.Message)
}

func TestClient_MessageErrorBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad request"})
	})
	defer srv.Close()

	_, err := client.OrdersByUser(context.Background(), 1)
	require.Error(t, err)

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "bad request", apiErr.Message)
}

func TestClient_ErrorWithoutBody_UsesStatusLine(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := client.OrdersByUser(context.Background(), 1)
	require.Error(t, err)

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Contains(t, apiErr.Message, "500")
}

func TestClient_CheckLoginStatus_ForwardsCookies(t *testing.T) {
	var gotCookie string
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			gotCookie = c.Value
		}
		json.NewEncoder(w).Encode(map[string]bool{"logged_in": true})
	})
	defer srv.Close()

	cookies := []*http.Cookie{{Name: "session", Value: "abc123"}}
	loggedIn, err := client.CheckLoginStatus(context.Background(), cookies)
	require.NoError(t, err)
	assert.True(t, loggedIn)
	assert.Equal(t, "abc123", gotCookie)
}

func TestClient_Cart_NotFoundMeansEmptyCart(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "cart not found"})
	})
	defer srv.Close()

	cart, err := client.Cart(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), cart.UserID)
	assert.NotNil(t, cart.Items)
	assert.Empty(t, cart.Items)
}

func TestClient_UpdateCartItem_RequestShape(t *testing.T) {
	var gotPath string
	var gotBody map[string]json.RawMessage
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{"id": 9, "user_id": 1, "items": []any{}})
	})
	defer srv.Close()

	_, err := client.UpdateCartItem(context.Background(), 9, 7, 3, decimal.NewFromFloat(30.00))
	require.NoError(t, err)

	assert.Equal(t, "/cart/9", gotPath)
	assert.JSONEq(t, `7`, string(gotBody["product_id"]))
	assert.JSONEq(t, `3`, string(gotBody["quantity"]))
	assert.JSONEq(t, `"30"`, string(gotBody["subtotal"]))
}

func TestClient_CreatePaymentIntent_AmountInCents(t *testing.T) {
	var gotBody struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"id": "pi_1", "clientSecret": "pi_1_secret"})
	})
	defer srv.Close()

	intent, err := client.CreatePaymentIntent(context.Background(), 1, decimal.NewFromFloat(19.99))
	require.NoError(t, err)

	assert.Equal(t, int64(1999), gotBody.Amount)
	assert.Equal(t, "usd", gotBody.Currency)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
}

func TestClient_CreatePaymentIntent_MissingClientSecret(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "pi_1"})
	})
	defer srv.Close()

	_, err := client.CreatePaymentIntent(context.Background(), 1, decimal.NewFromFloat(10))
	assert.ErrorContains(t, err, "no client secret")
}

func TestClient_AuthorizeURL(t *testing.T) {
	client := New("http://backend.local/", time.Second)
	assert.Equal(t, "http://backend.local/authorize?next=http%3A%2F%2Fshop.local%2Fcart",
		client.AuthorizeURL("http://shop.local/cart"))
}

func TestClient_AuthorizeURL_EscapesQueryMetacharacters(t *testing.T) {
	client := New("http://backend.local", time.Second)
	got := client.AuthorizeURL("http://shop.local/search?size=M&page=2#top")

	parsed, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "http://shop.local/search?size=M&page=2#top", parsed.Query().Get("next"))
}
