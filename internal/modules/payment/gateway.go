package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"stayhub/internal/pkg/metrics"
)

// Intent statuses as reported by the provider.
const (
	IntentStatusRequiresPayment = "requires_payment_method"
	IntentStatusProcessing      = "processing"
	IntentStatusSucceeded       = "succeeded"
	IntentStatusCanceled        = "canceled"
)

var (
	ErrIntentNotFound      = errors.New("payment intent not found")
	ErrInvalidClientSecret = errors.New("gateway returned malformed client secret")
	ErrNotConfigured       = errors.New("payment gateway credentials are not configured")
)

// GatewayError is a rejection by the payment provider (declined card,
// invalid request). These surface to callers as 400-class failures, never
// as internal errors.
type GatewayError struct {
	Code    string
	Message string
	Status  int
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error (%s): %s", e.Code, e.Message)
}

// Intent mirrors the provider's payment-intent object. Amount is in the
// currency's minor units.
type Intent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Currency     string            `json:"currency"`
	Metadata     map[string]string `json:"metadata"`
	ChargeID     string            `json:"latest_charge"`
}

type Refund struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Amount int64  `json:"amount"`
}

// Gateway talks to the external payment provider over its REST API.
// All payment state lives with the provider; the adapter holds no state
// beyond credentials and the HTTP client.
type Gateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
	logger    *zap.Logger
}

func NewGateway(baseURL, secretKey string, timeout time.Duration, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
		logger:    logger,
	}
}

// CreateIntent opens a charge attempt with the provider. The amount must
// already be in minor units; the conversion happens once, at this boundary's
// caller, never re-derived later.
func (g *Gateway) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	if g.secretKey == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for _, k := range sortedKeys(metadata) {
		form.Set("metadata["+k+"]", metadata[k])
	}

	var intent Intent
	if err := g.do(ctx, "create_intent", http.MethodPost, "/payment_intents", form, &intent); err != nil {
		return nil, err
	}

	if err := validateClientSecret(intent.ID, intent.ClientSecret); err != nil {
		g.logger.Error("provider returned suspicious client secret",
			zap.String("intent_id", intent.ID))
		return nil, err
	}

	return &intent, nil
}

// GetIntent retrieves the current provider-side state of an intent.
func (g *Gateway) GetIntent(ctx context.Context, intentID string) (*Intent, error) {
	if g.secretKey == "" {
		return nil, ErrNotConfigured
	}
	if intentID == "" {
		return nil, ErrIntentNotFound
	}

	var intent Intent
	err := g.do(ctx, "get_intent", http.MethodGet, "/payment_intents/"+url.PathEscape(intentID), nil, &intent)
	if err != nil {
		return nil, err
	}
	return &intent, nil
}

// RefundIntent refunds the full charge behind an intent.
func (g *Gateway) RefundIntent(ctx context.Context, intentID string) (*Refund, error) {
	if g.secretKey == "" {
		return nil, ErrNotConfigured
	}

	form := url.Values{}
	form.Set("payment_intent", intentID)

	var refund Refund
	if err := g.do(ctx, "refund", http.MethodPost, "/refunds", form, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (g *Gateway) do(ctx context.Context, op, method, path string, form url.Values, out any) error {
	start := time.Now()
	defer func() {
		metrics.GatewayRequestLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway response read failed: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrIntentNotFound
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return parseGatewayError(raw, resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("gateway unavailable: status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("gateway response decode failed: %w", err)
	}
	return nil
}

func parseGatewayError(raw []byte, status int) error {
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Error.Message == "" {
		return &GatewayError{Code: "unknown", Message: "payment provider rejected the request", Status: status}
	}
	code := payload.Error.Code
	if code == "" {
		code = payload.Error.Type
	}
	return &GatewayError{Code: code, Message: payload.Error.Message, Status: status}
}

// validateClientSecret rejects placeholder secrets before they reach a
// client. A misconfigured provider (or a mock left on in production)
// returns values that do not carry the intent id prefix.
func validateClientSecret(intentID, secret string) error {
	prefix := intentID + "_secret_"
	if intentID == "" || !strings.HasPrefix(secret, prefix) {
		return ErrInvalidClientSecret
	}
	token := strings.TrimPrefix(secret, prefix)
	if len(token) < 8 {
		return ErrInvalidClientSecret
	}
	switch strings.ToLower(token) {
	case "placeholder", "changeme", "xxxxxxxx":
		return ErrInvalidClientSecret
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
