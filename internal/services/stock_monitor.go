package services

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// LowStockMonitor consumes product events and warns when a sale leaves a
// product at or below the threshold.
type LowStockMonitor struct {
	threshold int
	logger    *zap.Logger
}

// NewLowStockMonitor creates a new LowStockMonitor.
func NewLowStockMonitor(threshold int, logger *zap.Logger) *LowStockMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockMonitor{threshold: threshold, logger: logger}
}

// HandleEvent processes one encoded ProductEvent. It reports whether the
// event triggered a low-stock warning.
func (m *LowStockMonitor) HandleEvent(body []byte) (bool, error) {
	var event ProductEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return false, fmt.Errorf("failed to decode product event: %w", err)
	}
	if event.Type != EventProductSold || event.Product.Quantity > m.threshold {
		return false, nil
	}
	m.logger.Warn("product stock is low",
		zap.Int64("product_id", event.Product.ID),
		zap.String("name", event.Product.Name),
		zap.Int("quantity", event.Product.Quantity),
		zap.Int("threshold", m.threshold),
	)
	return true, nil
}
