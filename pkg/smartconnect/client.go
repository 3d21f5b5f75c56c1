// Package smartconnect is a minimal Angel One SmartAPI client covering
// what the dashboard needs: TOTP login, session refresh, and full-mode
// quote fetch. Routes and headers mirror the official SmartAPI docs.
package smartconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

const (
	defaultRoot    = "https://apiconnect.angelone.in"
	defaultTimeout = 7 * time.Second

	routeLogin      = "/rest/auth/angelbroking/user/v1/loginByPassword"
	routeLogout     = "/rest/secure/angelbroking/user/v1/logout"
	routeToken      = "/rest/auth/angelbroking/jwt/v1/generateTokens"
	routeProfile    = "/rest/secure/angelbroking/user/v1/getProfile"
	routeMarketData = "/rest/secure/angelbroking/market/v1/quote"
)

// Config holds client credentials and connection settings.
type Config struct {
	APIKey     string
	ClientCode string
	Password   string
	TOTPSecret string // base32 secret; a fresh code is generated per login

	RootURL string        // default: https://apiconnect.angelone.in
	Timeout time.Duration // default: 7s
}

// Client is the SmartAPI HTTP client. Not safe for concurrent token
// mutation; log in once before sharing.
type Client struct {
	cfg  Config
	http *http.Client

	accessToken  string
	refreshToken string
	feedToken    string

	clientLocalIP string
	clientMAC     string
}

// New creates a Client. Credentials are validated at login, not here.
func New(cfg Config) *Client {
	if cfg.RootURL == "" {
		cfg.RootURL = defaultRoot
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:           cfg,
		http:          &http.Client{Timeout: cfg.Timeout},
		clientLocalIP: localIP(),
		clientMAC:     macAddress(),
	}
}

// FeedToken returns the feed token obtained at login.
func (c *Client) FeedToken() string { return c.feedToken }

// GenerateSession logs in with a freshly generated TOTP code and stores
// the returned JWT, refresh, and feed tokens.
func (c *Client) GenerateSession(ctx context.Context) error {
	code, err := totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("smartconnect: generate totp: %w", err)
	}

	var res struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			JWTToken     string `json:"jwtToken"`
			RefreshToken string `json:"refreshToken"`
			FeedToken    string `json:"feedToken"`
		} `json:"data"`
	}
	err = c.post(ctx, routeLogin, map[string]any{
		"clientcode": c.cfg.ClientCode,
		"password":   c.cfg.Password,
		"totp":       code,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("smartconnect: login failed: %s", res.Message)
	}

	c.accessToken = res.Data.JWTToken
	c.refreshToken = res.Data.RefreshToken
	c.feedToken = res.Data.FeedToken
	return nil
}

// RenewSession exchanges the refresh token for fresh JWT and feed tokens.
func (c *Client) RenewSession(ctx context.Context) error {
	var res struct {
		Status bool `json:"status"`
		Data   struct {
			JWTToken  string `json:"jwtToken"`
			FeedToken string `json:"feedToken"`
		} `json:"data"`
	}
	err := c.post(ctx, routeToken, map[string]any{
		"refreshToken": c.refreshToken,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Status {
		return fmt.Errorf("smartconnect: token refresh rejected")
	}
	if res.Data.JWTToken != "" {
		c.accessToken = res.Data.JWTToken
	}
	if res.Data.FeedToken != "" {
		c.feedToken = res.Data.FeedToken
	}
	return nil
}

// Logout terminates the session on the server side.
func (c *Client) Logout(ctx context.Context) error {
	var res struct {
		Status bool `json:"status"`
	}
	return c.post(ctx, routeLogout, map[string]any{
		"clientcode": c.cfg.ClientCode,
	}, &res)
}

// FullQuote is the FULL-mode market data payload for one instrument.
type FullQuote struct {
	Exchange      string  `json:"exchange"`
	TradingSymbol string  `json:"tradingSymbol"`
	SymbolToken   string  `json:"symbolToken"`
	LTP           float64 `json:"ltp"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"` // previous close
	TradeVolume   int64   `json:"tradeVolume"`
	NetChange     float64 `json:"netChange"`
	PercentChange float64 `json:"percentChange"`
	Depth         struct {
		Buy []struct {
			Price float64 `json:"price"`
		} `json:"buy"`
		Sell []struct {
			Price float64 `json:"price"`
		} `json:"sell"`
	} `json:"depth"`
}

// GetQuote fetches the FULL-mode quote for a single symbol token.
func (c *Client) GetQuote(ctx context.Context, exchange, symbolToken string) (FullQuote, error) {
	var res struct {
		Status  bool   `json:"status"`
		Message string `json:"message"`
		Data    struct {
			Fetched []FullQuote `json:"fetched"`
		} `json:"data"`
	}
	err := c.post(ctx, routeMarketData, map[string]any{
		"mode":           "FULL",
		"exchangeTokens": map[string][]string{exchange: {symbolToken}},
	}, &res)
	if err != nil {
		return FullQuote{}, err
	}
	if !res.Status || len(res.Data.Fetched) == 0 {
		return FullQuote{}, fmt.Errorf("smartconnect: quote fetch failed: %s", res.Message)
	}
	return res.Data.Fetched[0], nil
}

func (c *Client) post(ctx context.Context, route string, params map[string]any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(c.cfg.RootURL, "/")+route, bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("smartconnect: %s: %w", route, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("smartconnect: %s: bad response (%d): %w", route, resp.StatusCode, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	h := req.Header
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("X-UserType", "USER")
	h.Set("X-SourceID", "WEB")
	h.Set("X-ClientLocalIP", c.clientLocalIP)
	h.Set("X-ClientPublicIP", c.clientLocalIP)
	h.Set("X-MACAddress", c.clientMAC)
	h.Set("X-PrivateKey", c.cfg.APIKey)
	if c.accessToken != "" {
		h.Set("Authorization", "Bearer "+c.accessToken)
	}
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, a := range addrs {
			if ipNet, ok := a.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
				return ipNet.IP.String()
			}
		}
	}
	return "127.0.0.1"
}

func macAddress() string {
	ifs, _ := net.Interfaces()
	for _, ifc := range ifs {
		if len(ifc.HardwareAddr) > 0 {
			return ifc.HardwareAddr.String()
		}
	}
	return "00:11:22:33:44:55"
}
