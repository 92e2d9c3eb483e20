package answers

import (
	"context"
	"fmt"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/contract"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
)

// FarmHandler totals acreage across a farm's fields and lists them. The field
// list is the long-output case that exercises continuation paging.
type FarmHandler struct {
	farms  contract.FarmRepository
	fields contract.FieldRepository
}

func NewFarmHandler(farms contract.FarmRepository, fields contract.FieldRepository) *FarmHandler {
	return &FarmHandler{farms: farms, fields: fields}
}

func (h *FarmHandler) Collection() string { return "farms" }

func (h *FarmHandler) Answer(ctx context.Context, id string) (*Answer, error) {
	farm, err := h.farms.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("load farm %s: %w", id, err)
	}
	if farm == nil {
		return &Answer{Text: "I couldn't find that farm in the current dataset."}, nil
	}

	fields, err := h.fields.FindAll(ctx,
		specification.ByFarmID{FarmID: farm.Id},
		specification.OrderByName{},
	)
	if err != nil {
		return nil, fmt.Errorf("load fields for farm %s: %w", id, err)
	}

	var total float64
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		total += f.Acres
		lines = append(lines, fmt.Sprintf("%s — %.1f acres", f.Name, f.Acres))
	}

	return &Answer{
		Text:  fmt.Sprintf("%s has %d fields totaling %.1f acres.", farm.Name, len(fields), total),
		Title: fmt.Sprintf("Fields on %s", farm.Name),
		Lines: lines,
	}, nil
}
