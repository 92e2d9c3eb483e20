package answers

import (
	"context"
	"fmt"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/contract"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
)

// TowerHandler answers frequency and status lookups for network assets.
type TowerHandler struct {
	towers contract.TowerRepository
}

func NewTowerHandler(towers contract.TowerRepository) *TowerHandler {
	return &TowerHandler{towers: towers}
}

func (h *TowerHandler) Collection() string { return "towers" }

func (h *TowerHandler) Answer(ctx context.Context, id string) (*Answer, error) {
	tower, err := h.towers.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("load tower %s: %w", id, err)
	}
	if tower == nil {
		return &Answer{Text: "I couldn't find that tower in the current dataset."}, nil
	}

	text := fmt.Sprintf("%s broadcasts at %s", tower.Name, formatHz(tower.FrequencyHz))
	if tower.Channel != "" {
		text += fmt.Sprintf(" on channel %s", tower.Channel)
	}
	status := tower.Status
	if status == "" {
		status = "active"
	}
	return &Answer{Text: fmt.Sprintf("%s. Status: %s.", text, status)}, nil
}

func formatHz(hz int64) string {
	switch {
	case hz >= 1_000_000_000:
		return fmt.Sprintf("%.3f GHz", float64(hz)/1e9)
	case hz >= 1_000_000:
		return fmt.Sprintf("%.3f MHz", float64(hz)/1e6)
	case hz >= 1_000:
		return fmt.Sprintf("%.1f kHz", float64(hz)/1e3)
	default:
		return fmt.Sprintf("%d Hz", hz)
	}
}
