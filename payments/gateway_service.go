package payments

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	config "github.com/edusphere/admissions_backend/configs"
)

type Order struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
	Status   string  `json:"status"`
}

// OrderCreator is what the enrollment service needs from the gateway.
type OrderCreator interface {
	CreateOrder(amount float64, currency, receipt string) (*Order, error)
}

type GatewayService struct {
	apiBase   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewGatewayService() *GatewayService {
	return &GatewayService{
		apiBase:   config.Config("GATEWAY_API_BASE_URL"),
		keyID:     config.Config("GATEWAY_KEY_ID"),
		keySecret: config.Config("GATEWAY_KEY_SECRET"),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *GatewayService) CreateOrder(amount float64, currency, receipt string) (*Order, error) {
	if s.apiBase == "" || s.keyID == "" || s.keySecret == "" {
		return nil, fmt.Errorf("payment gateway not configured")
	}

	payload := map[string]interface{}{
		"amount":   fmt.Sprintf("%.2f", amount),
		"currency": currency,
		"receipt":  receipt,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/v1/orders", s.apiBase), bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(s.keyID, s.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to create gateway order: %s", string(respBody))
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}
	return &order, nil
}
