package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aliadolaboral/config"
	"aliadolaboral/models"
	"aliadolaboral/utils"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const mercadoPagoBaseURL = "https://api.mercadopago.com"

// MercadoPagoClient talks to the MercadoPago REST API.
type MercadoPagoClient struct {
	BaseURL         string
	AccessToken     string
	NotificationURL string
	HTTP            *http.Client
}

func NewMercadoPagoClient() *MercadoPagoClient {
	return &MercadoPagoClient{
		BaseURL:         mercadoPagoBaseURL,
		AccessToken:     config.AppConfig.MPAccessToken,
		NotificationURL: config.AppConfig.MPNotificationURL,
		HTTP:            &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *MercadoPagoClient) do(ctx context.Context, method, path string, body interface{}) (gjson.Result, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return gjson.Result{}, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, m.BaseURL+path, reader)
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+m.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("X-Idempotency-Key", uuid.New().String())
	}

	resp, err := m.HTTP.Do(req)
	if err != nil {
		return gjson.Result{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, err
	}
	if resp.StatusCode >= 300 {
		return gjson.Result{}, fmt.Errorf("mercadopago %s %s: status %d: %s",
			method, path, resp.StatusCode, gjson.GetBytes(raw, "message").String())
	}
	return gjson.ParseBytes(raw), nil
}

func (m *MercadoPagoClient) CreatePreference(ctx context.Context, in PreferenceInput) (*Preference, error) {
	body := map[string]interface{}{
		"items": []map[string]interface{}{{
			"id":          "item-01",
			"title":       in.Title,
			"unit_price":  in.Amount,
			"quantity":    1,
			"currency_id": "MXN",
		}},
		"payer":                map[string]string{"email": in.PayerEmail},
		"external_reference":   in.ExternalReference,
		"statement_descriptor": "ALIADO LABORAL",
	}
	if m.NotificationURL != "" {
		body["notification_url"] = m.NotificationURL
	}

	res, err := m.do(ctx, http.MethodPost, "/checkout/preferences", body)
	utils.RecordPayment(models.GatewayMP, "preference", err)
	if err != nil {
		return nil, fmt.Errorf("mercadopago preference creation failed: %w", err)
	}
	return &Preference{ID: res.Get("id").String(), InitPoint: res.Get("init_point").String()}, nil
}

func (m *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*MPPayment, error) {
	res, err := m.do(ctx, http.MethodGet, "/v1/payments/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("mercadopago payment retrieval failed: %w", err)
	}
	return &MPPayment{
		ID:                res.Get("id").String(),
		Status:            res.Get("status").String(),
		Amount:            res.Get("transaction_amount").Float(),
		ExternalReference: res.Get("external_reference").String(),
	}, nil
}

func (m *MercadoPagoClient) Refund(ctx context.Context, paymentID string) error {
	_, err := m.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refunds", map[string]interface{}{})
	utils.RecordPayment(models.GatewayMP, "refund", err)
	if err != nil {
		return fmt.Errorf("mercadopago refund failed: %w", err)
	}
	return nil
}
