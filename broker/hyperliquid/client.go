// Package hyperliquid is a REST and WebSocket client for the Hyperliquid
// exchange. Info reads may retry; signed exchange actions never do.
package hyperliquid

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/rustyeddy/hltrader/broker"
	"github.com/rustyeddy/hltrader/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	MainnetAPIURL = "https://api.hyperliquid.xyz"
	TestnetAPIURL = "https://api.hyperliquid-testnet.xyz"
	MainnetWSURL  = "wss://api.hyperliquid.xyz/ws"
	TestnetWSURL  = "wss://api.hyperliquid-testnet.xyz/ws"
)

var ErrNoWallet = errors.New("private key not configured")

type Config struct {
	APIURL     string
	Mainnet    bool
	PrivateKey string // hex, with or without 0x; empty for read-only use
	Timeout    time.Duration
	InfoRetry  int
}

type Client struct {
	info     *resty.Client
	exchange *resty.Client
	mainnet  bool

	key     *ecdsa.PrivateKey
	address common.Address

	log *logrus.Entry

	mu        sync.Mutex
	assets    *assetTable
	lastNonce uint64
	now       func() time.Time
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimSuffix(cfg.APIURL, "/")
	if base == "" {
		base = TestnetAPIURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.InfoRetry
	if retries < 0 {
		retries = 0
	}

	info := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(retries).
		SetRetryWaitTime(250 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	// Signed actions go out once. A retry could double an order.
	exchange := resty.New().
		SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetRetryCount(0)

	c := &Client{
		info:     info,
		exchange: exchange,
		mainnet:  cfg.Mainnet,
		log:      logger.WithComponent("hyperliquid"),
		now:      time.Now,
	}

	if cfg.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "parse private key")
		}
		c.key = key
		c.address = crypto.PubkeyToAddress(key.PublicKey)
	}
	return c, nil
}

// Address is the wallet address derived from the private key.
func (c *Client) Address() (common.Address, error) {
	if c.key == nil {
		return common.Address{}, ErrNoWallet
	}
	return c.address, nil
}

// postInfo posts a read request to /info and returns the raw body.
func (c *Client) postInfo(ctx context.Context, body map[string]any) (gjson.Result, error) {
	kind, _ := body["type"].(string)

	resp, err := c.info.R().SetContext(ctx).SetBody(body).Post("/info")
	if err != nil {
		return gjson.Result{}, broker.ConnectionError("info "+kind, errors.Wrap(err, "post /info"))
	}
	if resp.StatusCode() >= 500 || resp.StatusCode() == http.StatusTooManyRequests {
		return gjson.Result{}, broker.ConnectionError("info "+kind, errors.Errorf("http %d: %s", resp.StatusCode(), truncate(resp.String())))
	}
	if !resp.IsSuccess() {
		return gjson.Result{}, errors.Errorf("info %s: http %d: %s", kind, resp.StatusCode(), truncate(resp.String()))
	}
	if !gjson.ValidBytes(resp.Body()) {
		return gjson.Result{}, errors.Errorf("info %s: invalid json", kind)
	}
	return gjson.ParseBytes(resp.Body()), nil
}

type exchangeRequest struct {
	Action       any       `json:"action"`
	Nonce        uint64    `json:"nonce"`
	Signature    signature `json:"signature"`
	VaultAddress *string   `json:"vaultAddress"`
}

// postAction signs and sends one exchange action. Any transport failure
// is reported as broker.ErrConnection: the action may or may not have
// been applied.
func (c *Client) postAction(ctx context.Context, action any) (gjson.Result, error) {
	if c.key == nil {
		return gjson.Result{}, ErrNoWallet
	}

	nonce := c.nextNonce()
	sig, err := signL1Action(c.key, action, nonce, c.mainnet)
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "sign action")
	}

	payload, err := json.Marshal(exchangeRequest{Action: action, Nonce: nonce, Signature: sig})
	if err != nil {
		return gjson.Result{}, errors.Wrap(err, "encode action")
	}

	resp, err := c.exchange.R().SetContext(ctx).SetBody(payload).Post("/exchange")
	if err != nil {
		return gjson.Result{}, broker.ConnectionError("exchange", errors.Wrap(err, "post /exchange"))
	}
	if resp.StatusCode() >= 500 || resp.StatusCode() == http.StatusTooManyRequests {
		return gjson.Result{}, broker.ConnectionError("exchange", errors.Errorf("http %d: %s", resp.StatusCode(), truncate(resp.String())))
	}
	if !resp.IsSuccess() {
		return gjson.Result{}, broker.Reject(strings.TrimSpace(resp.String()))
	}

	res := gjson.ParseBytes(resp.Body())
	if res.Get("status").String() != "ok" {
		reason := res.Get("response").String()
		if reason == "" {
			reason = truncate(resp.String())
		}
		return gjson.Result{}, broker.Reject(reason)
	}
	return res.Get("response"), nil
}

// nextNonce returns a strictly increasing millisecond timestamp.
func (c *Client) nextNonce() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := uint64(c.now().UnixMilli())
	if n <= c.lastNonce {
		n = c.lastNonce + 1
	}
	c.lastNonce = n
	return n
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 512 {
		return s[:512] + "..."
	}
	return s
}
