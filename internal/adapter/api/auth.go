package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/session"
)

var ErrEmptyToken = errors.New("login succeeded but no token was returned")

type authService struct {
	client *Client
}

// NewAuthService logs customers, admins and delivery staff in against the shop API.
func NewAuthService(client *Client) interfaces.AuthService {
	return &authService{client: client}
}

func (s *authService) Login(ctx context.Context, email, password string) (*interfaces.LoginResult, error) {
	var resp loginResponse
	body := loginRequest{Email: strings.TrimSpace(email), Password: password}
	if _, err := s.client.do(ctx, "login", http.MethodPost, "/customer/login", body, &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, ErrEmptyToken
	}

	sess, err := session.FromToken(resp.Token)
	if err != nil {
		return nil, errors.Wrap(err, "decode login token")
	}

	return &interfaces.LoginResult{Session: sess, Landing: sess.Role.LandingPath()}, nil
}
