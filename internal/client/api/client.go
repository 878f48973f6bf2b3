package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/heirloom/internal/common"
	"github.com/dmitrijs2005/heirloom/internal/protocol"
	"github.com/dmitrijs2005/heirloom/internal/timex"
)

// TokenPair holds the access and refresh tokens issued by the server.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// MessageContent is the client-side content of a message: the padded
// recipient identifier limbs, the key share and the encrypted payload.
// The server never sees the plaintexts behind these fields.
type MessageContent struct {
	Limbs          [][]byte `json:"limbs"`
	RecipientIDLen int      `json:"recipient_id_len"`
	KeyShare       []byte   `json:"key_share"`
	Payload        []byte   `json:"payload"`
	Annotation     string   `json:"annotation,omitempty"`
}

// StatusInfo is the derived liveness status of an account.
type StatusInfo struct {
	Status    string `json:"status"`
	Remaining string `json:"remaining,omitempty"`
}

// RetrievedMessage is the opened content of a released message.
type RetrievedMessage struct {
	Limbs          [][]byte `json:"limbs"`
	RecipientIDLen int      `json:"recipient_id_len"`
	KeyShare       []byte   `json:"key_share"`
	Payload        []byte   `json:"payload"`
	Annotation     string   `json:"annotation,omitempty"`
	Commitment     string   `json:"commitment"`
}

// Client is an HTTP client for the Heirloom REST API. It keeps the token
// pair internally and transparently refreshes the access token once when a
// request comes back 401.
type Client struct {
	baseURL string
	http    *http.Client

	mu     sync.Mutex
	tokens TokenPair
}

// New returns a Client talking to the server at baseURL
// (e.g. "http://127.0.0.1:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Tokens returns the current token pair.
func (c *Client) Tokens() TokenPair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens
}

// SetTokens installs a previously stored token pair.
func (c *Client) SetTokens(t TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = t
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.AccessToken
}

func (c *Client) send(ctx context.Context, method, path, token string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AccessTokenHeaderName, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	defer resp.Body.Close()
	var payload struct {
		Error string `json:"error"`
	}
	data, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(data, &payload)
	return &Error{Status: resp.StatusCode, Message: payload.Error}
}

// do performs an authenticated request. On a 401 it refreshes the token pair
// once and retries; callers see the final response only.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.send(ctx, method, path, c.accessToken(), body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		resp, err = c.send(ctx, method, path, c.accessToken(), body)
		if err != nil {
			return err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}

	defer resp.Body.Close()
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// auth performs an unauthenticated auth-flow request and stores the
// returned token pair.
func (c *Client) auth(ctx context.Context, path string, body any) error {
	resp, err := c.send(ctx, http.MethodPost, path, "", body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	defer resp.Body.Close()

	var pair TokenPair
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return err
	}
	c.SetTokens(pair)
	return nil
}

type credentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// Register creates a new identity and then logs in with the same
// credentials, storing the issued tokens.
func (c *Client) Register(ctx context.Context, address, password string) error {
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/register", "", credentials{Address: address, Password: password})
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return c.Login(ctx, address, password)
}

// Login authenticates an existing identity and stores the issued tokens.
func (c *Client) Login(ctx context.Context, address, password string) error {
	return c.auth(ctx, "/api/auth/login", credentials{Address: address, Password: password})
}

// Refresh exchanges the refresh token for a fresh token pair.
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.Tokens().RefreshToken
	return c.auth(ctx, "/api/auth/refresh", map[string]string{"refresh_token": refresh})
}

// Reachable probes the server without authentication.
func (c *Client) Reachable(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/metrics", "", nil)
	if err != nil {
		return err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Account operations.

func (c *Client) RegisterAccount(ctx context.Context, name string, checkIn, grace time.Duration) error {
	return c.do(ctx, http.MethodPost, "/api/account", map[string]any{
		"name":            name,
		"check_in_period": timex.Duration{Duration: checkIn},
		"grace_period":    timex.Duration{Duration: grace},
	}, nil)
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/account/ping", nil, nil)
}

func (c *Client) SetName(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPut, "/api/account/name", map[string]string{"name": name}, nil)
}

func (c *Client) SetPeriods(ctx context.Context, checkIn, grace time.Duration) error {
	return c.do(ctx, http.MethodPut, "/api/account/periods", map[string]any{
		"check_in_period": timex.Duration{Duration: checkIn},
		"grace_period":    timex.Duration{Duration: grace},
	}, nil)
}

func (c *Client) Deposit(ctx context.Context, amount uint64) error {
	return c.do(ctx, http.MethodPost, "/api/account/deposit", map[string]uint64{"amount": amount}, nil)
}

func (c *Client) Status(ctx context.Context, address string) (*StatusInfo, error) {
	var out StatusInfo
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+address+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Account(ctx context.Context, address string) (*protocol.AccountInfo, error) {
	var out protocol.AccountInfo
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+address, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Balance(ctx context.Context, address string) (uint64, error) {
	var out struct {
		Balance uint64 `json:"balance"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+address+"/balance", nil, &out); err != nil {
		return 0, err
	}
	return out.Balance, nil
}

func (c *Client) MarkDeceased(ctx context.Context, address string) error {
	return c.do(ctx, http.MethodPost, "/api/accounts/"+address+"/declare-death", nil, nil)
}

// Council operations.

func (c *Client) AddCouncilMember(ctx context.Context, member string) error {
	return c.do(ctx, http.MethodPost, "/api/council/members", map[string]string{"member": member}, nil)
}

func (c *Client) RemoveCouncilMember(ctx context.Context, member string) error {
	return c.do(ctx, http.MethodDelete, "/api/council/members/"+member, nil, nil)
}

func (c *Client) Council(ctx context.Context, address string) ([]protocol.CouncilMember, error) {
	var out []protocol.CouncilMember
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+address+"/council", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Serving(ctx context.Context) ([]string, error) {
	var out struct {
		Accounts []string `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/council/serving", nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

func (c *Client) Vote(ctx context.Context, address string, alive bool) error {
	return c.do(ctx, http.MethodPost, "/api/accounts/"+address+"/votes", map[string]bool{"alive": alive}, nil)
}

func (c *Client) VoteTally(ctx context.Context, address string) (*protocol.Tally, error) {
	var out protocol.Tally
	if err := c.do(ctx, http.MethodGet, "/api/accounts/"+address+"/votes", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Message operations.

type addMessageRequest struct {
	MessageContent
	Reward      uint64   `json:"reward,omitempty"`
	Recipients  []string `json:"recipients,omitempty"`
	ContentHash string   `json:"content_hash,omitempty"`
}

func (c *Client) AddMessage(ctx context.Context, content MessageContent) (int, error) {
	return c.addMessage(ctx, addMessageRequest{MessageContent: content})
}

func (c *Client) AddMessageWithReward(ctx context.Context, content MessageContent, reward uint64, recipients []string, contentHash string) (int, error) {
	return c.addMessage(ctx, addMessageRequest{
		MessageContent: content,
		Reward:         reward,
		Recipients:     recipients,
		ContentHash:    contentHash,
	})
}

func (c *Client) addMessage(ctx context.Context, req addMessageRequest) (int, error) {
	var out struct {
		Index int `json:"index"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/messages", req, &out); err != nil {
		return 0, err
	}
	return out.Index, nil
}

func (c *Client) EditMessage(ctx context.Context, index int, content MessageContent, contentHash string) error {
	req := struct {
		MessageContent
		ContentHash string `json:"content_hash,omitempty"`
	}{MessageContent: content, ContentHash: contentHash}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/messages/%d", index), req, nil)
}

func (c *Client) RevokeMessage(ctx context.Context, index int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/messages/%d", index), nil, nil)
}

func (c *Client) Message(ctx context.Context, address string, index int) (*protocol.MessageInfo, error) {
	var out protocol.MessageInfo
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/accounts/%s/messages/%d", address, index), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Claim(ctx context.Context, address string, index int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/accounts/%s/messages/%d/claim", address, index), nil, nil)
}

func (c *Client) Retrieve(ctx context.Context, address string, index int) (*RetrievedMessage, error) {
	var out RetrievedMessage
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/accounts/%s/messages/%d/content", address, index), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProveDelivery(ctx context.Context, address string, index, recipient int, recipientCommitment, authKeyCommitment, contentCommitment string, proof []byte) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/accounts/%s/messages/%d/proofs", address, index), map[string]any{
		"recipient":            recipient,
		"recipient_commitment": recipientCommitment,
		"auth_key_commitment":  authKeyCommitment,
		"content_commitment":   contentCommitment,
		"proof":                proof,
	}, nil)
}

func (c *Client) ClaimReward(ctx context.Context, address string, index int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/accounts/%s/messages/%d/reward-claim", address, index), nil, nil)
}
