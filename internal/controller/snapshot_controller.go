package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dkillam05/farmvista-copilot-sub001/internal/pkg/serverutils"
	"github.com/dkillam05/farmvista-copilot-sub001/internal/service"
)

type ISnapshotController interface {
	RegisterRoutes(r fiber.Router)
	Refresh(ctx *fiber.Ctx) error
	Current(ctx *fiber.Ctx) error
}

type snapshotController struct {
	snapshotService service.ISnapshotService
}

func NewSnapshotController(snapshotService service.ISnapshotService) ISnapshotController {
	return &snapshotController{
		snapshotService: snapshotService,
	}
}

func (c *snapshotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/snapshot/v1")
	h.Post("refresh", c.Refresh)
	h.Get("current", c.Current)
}

// Refresh announces a dataset refresh on the in-process bus; the consumer
// worker does the actual reload. Used by operators and the sync pipeline's
// webhook when NATS is not available.
func (c *snapshotController) Refresh(ctx *fiber.Ctx) error {
	var req struct {
		Version string `json:"version"`
	}
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return err
	}

	if err := c.snapshotService.NotifyRefreshed(ctx.Context(), req.Version); err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Refresh scheduled", nil))
}

func (c *snapshotController) Current(ctx *fiber.Ctx) error {
	snap, err := c.snapshotService.Current(ctx.Context())
	if err != nil {
		return err
	}

	counts := make(map[string]int, len(snap.Collections))
	for name, coll := range snap.Collections {
		counts[name] = len(coll)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show snapshot", fiber.Map{
		"version":   snap.Version,
		"loaded_at": snap.LoadedAt,
		"counts":    counts,
	}))
}
