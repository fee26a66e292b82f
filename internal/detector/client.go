package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client calls the anomaly-detection service over HTTP. Detection is
// all-or-nothing: any transport or decode failure fails the whole request and
// no partial results are returned.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &Client{http: httpClient, logger: logger}
}

// Detect submits a thermal image and returns the raw detection payloads. Each
// payload carries at least class, confidence and bounding_box; the caller
// stores them verbatim.
func (c *Client) Detect(ctx context.Context, imagePath string) ([]map[string]any, error) {
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetFile("image", imagePath).
		Post("/detect")
	if err != nil {
		return nil, fmt.Errorf("detector request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("detector returned status %d: %s", resp.StatusCode(), resp.String())
	}

	var detections []map[string]any
	if err := json.Unmarshal(resp.Body(), &detections); err != nil {
		return nil, fmt.Errorf("failed to decode detector response: %w", err)
	}

	c.logger.Info("detection completed",
		zap.String("image", imagePath),
		zap.Int("detections", len(detections)),
		zap.Duration("elapsed", time.Since(start)))

	return detections, nil
}

// Retrain asks the detection service to retrain on the current dataset
// export. The service queues the job; this call returns its acknowledgement.
func (c *Client) Retrain(ctx context.Context, datasetRoot string) (map[string]any, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"datasetRoot": datasetRoot}).
		Post("/retrain")
	if err != nil {
		return nil, fmt.Errorf("retrain request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("detector returned status %d: %s", resp.StatusCode(), resp.String())
	}

	ack := map[string]any{}
	if len(resp.Body()) > 0 {
		if err := json.Unmarshal(resp.Body(), &ack); err != nil {
			return nil, fmt.Errorf("failed to decode retrain response: %w", err)
		}
	}
	return ack, nil
}
