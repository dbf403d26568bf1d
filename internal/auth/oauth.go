package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/mrbata-dev/Product-Stock/internal/config"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProfile OAuth 登录拿到的用户档案
type GoogleProfile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleOAuth 封装 Google 授权码流程
type GoogleOAuth struct {
	conf *oauth2.Config
}

// NewGoogleOAuth 构建 Google OAuth 客户端
func NewGoogleOAuth(cfg *config.OAuthConfig) *GoogleOAuth {
	return &GoogleOAuth{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL 生成带 state 的授权地址
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// Exchange 用授权码换取档案信息
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.conf.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("userinfo has no email")
	}
	return &profile, nil
}
