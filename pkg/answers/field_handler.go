package answers

import (
	"context"
	"fmt"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/contract"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/repository/specification"
)

// FieldHandler answers acreage questions for a single field.
type FieldHandler struct {
	fields contract.FieldRepository
	farms  contract.FarmRepository
}

func NewFieldHandler(fields contract.FieldRepository, farms contract.FarmRepository) *FieldHandler {
	return &FieldHandler{fields: fields, farms: farms}
}

func (h *FieldHandler) Collection() string { return "fields" }

func (h *FieldHandler) Answer(ctx context.Context, id string) (*Answer, error) {
	field, err := h.fields.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, fmt.Errorf("load field %s: %w", id, err)
	}
	if field == nil {
		return &Answer{Text: "I couldn't find that field in the current dataset."}, nil
	}

	text := fmt.Sprintf("%s is %.1f acres", field.Name, field.Acres)
	if field.FarmId != "" {
		farm, err := h.farms.FindOne(ctx, specification.ByID{ID: field.FarmId})
		if err != nil {
			return nil, fmt.Errorf("load farm %s: %w", field.FarmId, err)
		}
		if farm != nil {
			text += fmt.Sprintf(", part of %s", farm.Name)
		}
	}
	if !fieldActive(field.Status) {
		text += fmt.Sprintf(" (status: %s)", field.Status)
	}
	return &Answer{Text: text + "."}, nil
}

func fieldActive(status string) bool {
	return status == "" || status == "active" || status == "Active"
}
