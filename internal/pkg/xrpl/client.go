package xrpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config holds XRPL client configuration
type Config struct {
	URL     string
	Timeout time.Duration
}

// Client talks JSON-RPC to an XRPL server over websocket. Every call dials
// a fresh connection and tears it down before returning: ledger calls are
// rare enough here that connection-setup latency is an acceptable price
// for never managing a long-lived socket.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &Client{cfg: cfg}
}

// Amount is an issued-currency amount on the ledger.
type Amount struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
	Value    string `json:"value"`
}

// NewAmount builds an issued-currency amount from a decimal value.
func NewAmount(currency, issuer string, value decimal.Decimal) Amount {
	return Amount{Currency: currency, Issuer: issuer, Value: value.String()}
}

// Line is one entry of an account_lines response.
type Line struct {
	Account  string `json:"account"` // counterparty (issuer, from the holder's view)
	Currency string `json:"currency"`
	Limit    string `json:"limit"`
	Balance  string `json:"balance"`
}

// SubmitResult is the outcome of a submit call. EngineResult follows the
// ledger's taxonomy: "tes..." means applied, "tecPATH_DRY" means no trust
// line/payment path, everything else is a generic rejection.
type SubmitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

// Applied reports whether the transaction result code is a success class.
func (r SubmitResult) Applied() bool {
	return strings.HasPrefix(r.EngineResult, "tes")
}

// NoPath reports the "no trust line / no payment path" rejection.
func (r SubmitResult) NoPath() bool {
	return r.EngineResult == "tecPATH_DRY"
}

// RPCError is a server-reported request failure (as opposed to a
// transaction that was applied with a non-success engine result).
type RPCError struct {
	Code    string
	Message string
}

func (e *RPCError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("xrpl: %s (%s)", e.Code, e.Message)
	}
	return "xrpl: " + e.Code
}

type rpcResponse struct {
	ID           int             `json:"id"`
	Status       string          `json:"status"`
	Result       json.RawMessage `json:"result"`
	ErrorCode    string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
}

// call dials, issues a single command, and closes the connection on every
// exit path.
func (c *Client) call(ctx context.Context, command string, params map[string]interface{}) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.Timeout}
	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("xrpl: dial %s: %w", c.cfg.URL, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	req := map[string]interface{}{"id": 1, "command": command}
	for k, v := range params {
		req[k] = v
	}

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(req); err != nil {
		return nil, fmt.Errorf("xrpl: write %s: %w", command, err)
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, err
	}

	// Skip any unsolicited stream messages until our reply arrives.
	for {
		var resp rpcResponse
		if err := conn.ReadJSON(&resp); err != nil {
			return nil, fmt.Errorf("xrpl: read %s: %w", command, err)
		}
		if resp.ID != 1 {
			continue
		}
		if resp.Status != "success" {
			return nil, &RPCError{Code: resp.ErrorCode, Message: resp.ErrorMessage}
		}
		return resp.Result, nil
	}
}

// AccountLines returns the holder's trust lines. An account unknown to the
// ledger simply has no lines.
func (c *Client) AccountLines(ctx context.Context, account string) ([]Line, error) {
	res, err := c.call(ctx, "account_lines", map[string]interface{}{
		"account":      account,
		"ledger_index": "validated",
	})
	if err != nil {
		var rpcErr *RPCError
		if errors.As(err, &rpcErr) && rpcErr.Code == "actNotFound" {
			return nil, nil
		}
		return nil, err
	}

	var out struct {
		Lines []Line `json:"lines"`
	}
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, fmt.Errorf("xrpl: decode account_lines: %w", err)
	}
	return out.Lines, nil
}

// SubmitTrustSet submits a TrustSet signed with the holder's seed. The
// holder account is derived from the seed, never supplied by the caller.
func (c *Client) SubmitTrustSet(ctx context.Context, holderSeed string, limit Amount) (*SubmitResult, error) {
	account, err := DeriveAddress(holderSeed)
	if err != nil {
		return nil, err
	}

	tx := map[string]interface{}{
		"TransactionType": "TrustSet",
		"Account":         account,
		"LimitAmount":     limit,
	}
	return c.submit(ctx, tx, holderSeed)
}

// SubmitPayment submits an issued-currency Payment from the account the
// seed controls to the destination.
func (c *Client) SubmitPayment(ctx context.Context, senderSeed, destination string, amount Amount) (*SubmitResult, error) {
	account, err := DeriveAddress(senderSeed)
	if err != nil {
		return nil, err
	}

	tx := map[string]interface{}{
		"TransactionType": "Payment",
		"Account":         account,
		"Destination":     destination,
		"Amount":          amount,
	}
	return c.submit(ctx, tx, senderSeed)
}

func (c *Client) submit(ctx context.Context, tx map[string]interface{}, secret string) (*SubmitResult, error) {
	res, err := c.call(ctx, "submit", map[string]interface{}{
		"tx_json":   tx,
		"secret":    secret,
		"fail_hard": true,
	})
	if err != nil {
		return nil, err
	}

	var out SubmitResult
	if err := json.Unmarshal(res, &out); err != nil {
		return nil, fmt.Errorf("xrpl: decode submit result: %w", err)
	}

	log.Debug().
		Str("type", fmt.Sprint(tx["TransactionType"])).
		Str("engine_result", out.EngineResult).
		Str("hash", out.TxJSON.Hash).
		Msg("xrpl transaction submitted")

	return &out, nil
}
