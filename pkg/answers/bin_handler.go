package answers

import (
	"context"
	"fmt"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/contract"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
)

// BinHandler does the grain inventory math for one storage bin.
type BinHandler struct {
	bins contract.BinRepository
}

func NewBinHandler(bins contract.BinRepository) *BinHandler {
	return &BinHandler{bins: bins}
}

func (h *BinHandler) Collection() string { return "bins" }

func (h *BinHandler) Answer(ctx context.Context, id string) (*Answer, error) {
	bin, err := h.bins.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("load bin %s: %w", id, err)
	}
	if bin == nil {
		return &Answer{Text: "I couldn't find that bin in the current dataset."}, nil
	}

	var pct float64
	if bin.CapacityBushels > 0 {
		pct = bin.LevelBushels / bin.CapacityBushels * 100
	}
	commodity := bin.Commodity
	if commodity == "" {
		commodity = "grain"
	}
	text := fmt.Sprintf("%s holds %.0f bushels of %s (%.0f%% of its %.0f-bushel capacity, %.0f bushels of room left).",
		bin.Name, bin.LevelBushels, commodity, pct, bin.CapacityBushels, bin.CapacityBushels-bin.LevelBushels)
	return &Answer{Text: text}, nil
}
