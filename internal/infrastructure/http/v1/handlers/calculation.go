package handlers

import (
	"github.com/gin-gonic/gin"

	"nebenkosten/internal/domain/calculation"
	nk "nebenkosten/internal/domain/nebenkosten"
	"nebenkosten/internal/domain/plausibility"
	"nebenkosten/internal/infrastructure/http/v1/dto"
	"nebenkosten/pkg/logger"
)

// CalculationStore is the part of calculation.Store the handlers use.
type CalculationStore interface {
	Data() nk.CalculationData
	Validate() (nk.CalculationData, error)
	SetData(p calculation.CalculationPatch)
	UpdateLandlord(p calculation.LandlordPatch)
	UpdateProperty(p calculation.PropertyPatch)
	UpdateTenant(p calculation.TenantPatch)
	AddCostItem() string
	RemoveCostItem(id string) bool
	UpdateCostItem(id string, p calculation.CostItemPatch) bool
	Reset()
}

// Observer receives validation outcomes. *metrics.Metrics implements it.
type Observer interface {
	RecordValidation(entity string, err error)
	RecordWarning(rule string)
}

type nopObserver struct{}

func (nopObserver) RecordValidation(string, error) {}
func (nopObserver) RecordWarning(string)           {}

// CalculationHandler exposes the calculation store to the form layer.
// Mutations are applied as sent; the form validates through /validate.
type CalculationHandler struct {
	BaseHandler
	store    CalculationStore
	checker  *plausibility.Checker
	observer Observer
}

// NewCalculationHandler creates the handler. observer may be nil.
func NewCalculationHandler(store CalculationStore, checker *plausibility.Checker, observer Observer) *CalculationHandler {
	if observer == nil {
		observer = nopObserver{}
	}
	return &CalculationHandler{store: store, checker: checker, observer: observer}
}

// Get returns the aggregate.
// GET /calculation
func (h *CalculationHandler) Get(c *gin.Context) {
	h.OK(c, dto.NewCalculationResponse(h.store.Data()))
}

// SetData replaces the supplied top-level entities.
// PATCH /calculation
func (h *CalculationHandler) SetData(c *gin.Context) {
	var req calculation.CalculationPatch
	if !h.BindJSON(c, &req) {
		return
	}
	h.store.SetData(req)
	h.current(c)
}

// UpdateLandlord merges into the landlord.
// PATCH /calculation/landlord
func (h *CalculationHandler) UpdateLandlord(c *gin.Context) {
	var req calculation.LandlordPatch
	if !h.BindJSON(c, &req) {
		return
	}
	h.store.UpdateLandlord(req)
	h.current(c)
}

// UpdateProperty merges into the property.
// PATCH /calculation/property
func (h *CalculationHandler) UpdateProperty(c *gin.Context) {
	var req calculation.PropertyPatch
	if !h.BindJSON(c, &req) {
		return
	}
	h.store.UpdateProperty(req)
	h.current(c)
}

// UpdateTenant merges into the tenant.
// PATCH /calculation/tenant
func (h *CalculationHandler) UpdateTenant(c *gin.Context) {
	var req calculation.TenantPatch
	if !h.BindJSON(c, &req) {
		return
	}
	h.store.UpdateTenant(req)
	h.current(c)
}

// AddItem appends a default cost item.
// POST /calculation/items
func (h *CalculationHandler) AddItem(c *gin.Context) {
	h.Created(c, h.store.AddCostItem())
}

// UpdateItem merges into one cost item. An unknown id is a no-op (204).
// PATCH /calculation/items/:id
func (h *CalculationHandler) UpdateItem(c *gin.Context) {
	var req calculation.CostItemPatch
	if !h.BindJSON(c, &req) {
		return
	}
	if !h.store.UpdateCostItem(c.Param("id"), req) {
		h.NoContent(c)
		return
	}
	h.current(c)
}

// RemoveItem deletes one cost item. An unknown id is a no-op (204).
// DELETE /calculation/items/:id
func (h *CalculationHandler) RemoveItem(c *gin.Context) {
	if !h.store.RemoveCostItem(c.Param("id")) {
		h.NoContent(c)
		return
	}
	h.current(c)
}

// Reset restores the default aggregate.
// POST /calculation/reset
func (h *CalculationHandler) Reset(c *gin.Context) {
	h.store.Reset()
	logger.Info(c.Request.Context(), "calculation reset")
	h.current(c)
}

// Validate runs the schema over the aggregate and, if it passes, the
// plausibility rules.
// POST /calculation/validate
func (h *CalculationHandler) Validate(c *gin.Context) {
	data, err := h.store.Validate()
	h.observer.RecordValidation("calculation", err)
	if err != nil {
		h.Error(c, err)
		return
	}

	warnings, err := h.checker.Check(data)
	if err != nil {
		// A broken rule must not hide a valid aggregate.
		logger.Warn(c.Request.Context(), "plausibility evaluation failed", "error", err)
	}
	if warnings == nil {
		warnings = []plausibility.Warning{}
	}
	for _, w := range warnings {
		h.observer.RecordWarning(w.Rule)
	}
	h.OK(c, dto.ValidationResponse{Valid: true, Value: data, Warnings: warnings})
}

func (h *CalculationHandler) current(c *gin.Context) {
	h.OK(c, dto.NewCalculationResponse(h.store.Data()))
}
