package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/flicky/storefront-gateway/internal/model"
)

// CheckLoginStatus asks the backend whether the forwarded session cookies
// belong to an authenticated session.
func (c *Client) CheckLoginStatus(ctx context.Context, cookies []*http.Cookie) (bool, error) {
	var resp struct {
		LoggedIn bool `json:"logged_in"`
	}
	if err := c.do(ctx, http.MethodGet, "/check_login_status", cookies, nil, &resp); err != nil {
		return false, fmt.Errorf("check login status: %w", err)
	}
	return resp.LoggedIn, nil
}

// OAuthUserInfo fetches the identity provider's payload for the session.
func (c *Client) OAuthUserInfo(ctx context.Context, cookies []*http.Cookie) (*model.OAuthIdentity, error) {
	var identity model.OAuthIdentity
	if err := c.do(ctx, http.MethodGet, "/user_info", cookies, nil, &identity); err != nil {
		return nil, fmt.Errorf("oauth user info: %w", err)
	}
	return &identity, nil
}

// UserByEmail maps an identity payload to the internal user record.
func (c *Client) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	path := "/users/email/" + url.PathEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &user); err != nil {
		return nil, fmt.Errorf("user by email: %w", err)
	}
	return &user, nil
}
