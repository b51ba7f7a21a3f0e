package toncenter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultEndpoint = "https://testnet.toncenter.com/api/v2/jsonRPC"

	maxRetries = 5
)

type rpcRequest struct {
	Id      string `json:"id"`
	JsonRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Code   int             `json:"code"`
}

type runGetMethodResult struct {
	Stack    [][]any `json:"stack"`
	ExitCode int     `json:"exit_code"`
}

type service struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewService(endpoint, apiKey string) (ports.ChainClient, error) {
	if len(endpoint) <= 0 {
		return nil, fmt.Errorf("missing toncenter endpoint")
	}
	return &service{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (s *service) GetSeqno(ctx context.Context, address string) (uint32, error) {
	var result runGetMethodResult
	if err := s.call(ctx, "runGetMethod", map[string]any{
		"address": address,
		"method":  "seqno",
		"stack":   []any{},
	}, &result, true); err != nil {
		return 0, err
	}

	// uninitialized contracts fail the get method, their seqno is 0
	if result.ExitCode != 0 && result.ExitCode != 1 {
		log.WithField("address", address).
			Debugf("seqno get method exited with code %d, assuming 0", result.ExitCode)
		return 0, nil
	}
	if len(result.Stack) <= 0 || len(result.Stack[0]) < 2 {
		return 0, fmt.Errorf("unexpected seqno stack: %v", result.Stack)
	}
	hexValue, ok := result.Stack[0][1].(string)
	if !ok {
		return 0, fmt.Errorf("unexpected seqno stack entry: %v", result.Stack[0])
	}
	seqno, err := strconv.ParseUint(strings.TrimPrefix(hexValue, "0x"), 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid seqno %s: %w", hexValue, err)
	}
	return uint32(seqno), nil
}

func (s *service) GetBalance(ctx context.Context, address string) (uint64, error) {
	var result json.RawMessage
	if err := s.call(ctx, "getAddressBalance", map[string]any{
		"address": address,
	}, &result, true); err != nil {
		return 0, err
	}

	// the balance comes back either as a string or a number
	value := strings.Trim(string(result), `"`)
	balance, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid balance %s: %w", value, err)
	}
	return balance, nil
}

// SendBoc is never retried, a resubmission could land twice.
func (s *service) SendBoc(ctx context.Context, boc []byte) error {
	return s.call(ctx, "sendBoc", map[string]any{
		"boc": base64.StdEncoding.EncodeToString(boc),
	}, nil, false)
}

func (s *service) call(
	ctx context.Context, method string, params any, result any, retry bool,
) error {
	payload, err := json.Marshal(rpcRequest{
		Id:      "1",
		JsonRPC: "2.0",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	attempts := 1
	if retry {
		attempts = maxRetries
	}
	baseDelay := 200 * time.Millisecond

	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			// exponential: 200ms, 400ms, 800ms, 1600ms
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		statusCode, body, err := s.post(ctx, payload)
		if err != nil {
			lastErr = err
			continue
		}
		// rate limited or server error
		if statusCode == http.StatusTooManyRequests || statusCode >= 500 {
			lastErr = fmt.Errorf("%s failed with status %d: %s", method, statusCode, body)
			continue
		}

		var resp rpcResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return fmt.Errorf("%s: invalid response with status %d: %s", method, statusCode, body)
		}
		if !resp.Ok {
			return fmt.Errorf("%s failed with code %d: %s", method, resp.Code, resp.Error)
		}
		if result == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return fmt.Errorf("%s: failed to parse result: %w", method, err)
		}
		return nil
	}

	return fmt.Errorf("%s failed after %d attempts: %w", method, attempts, lastErr)
}

func (s *service) post(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if len(s.apiKey) > 0 {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	// nolint:errcheck
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
