package notification

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"

	"github.com/NovaSiteWorks/api-referral/internal/logger"
)

// SendPayoutAlert posts a webhook after a payout batch is recorded.
// Fire-and-forget: failures are logged, never surfaced to the payout flow.
func SendPayoutAlert(influencerID uint, amount float64, reference string) {
	url := os.Getenv("PAYOUT_WEBHOOK_URL")
	if url == "" {
		return
	}

	payload := map[string]interface{}{
		"message":              "commission payout recorded",
		"influencerId":         influencerID,
		"paymentAmount":        amount,
		"transactionReference": reference,
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		logger.Warn("payout webhook failed: %v", err)
		return
	}
	defer resp.Body.Close()
}
