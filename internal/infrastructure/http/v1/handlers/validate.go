package handlers

import (
	"github.com/gin-gonic/gin"

	"nebenkosten/internal/core/apperror"
	nk "nebenkosten/internal/domain/nebenkosten"
	"nebenkosten/internal/domain/plausibility"
	"nebenkosten/internal/infrastructure/http/v1/dto"
)

// ValidateHandler checks candidate entities without touching the store.
type ValidateHandler struct {
	BaseHandler
	observer Observer
}

// NewValidateHandler creates the handler. observer may be nil.
func NewValidateHandler(observer Observer) *ValidateHandler {
	if observer == nil {
		observer = nopObserver{}
	}
	return &ValidateHandler{observer: observer}
}

// Entity validates the request body as the entity named in the path.
// POST /validate/:entity
func (h *ValidateHandler) Entity(c *gin.Context) {
	entity := c.Param("entity")

	var (
		value any
		err   error
	)
	switch entity {
	case "landlord":
		var l nk.Landlord
		if !h.BindJSON(c, &l) {
			return
		}
		value, err = nk.ValidateLandlord(l)
	case "period":
		var p nk.Period
		if !h.BindJSON(c, &p) {
			return
		}
		value, err = nk.ValidatePeriod(p)
	case "property":
		var p nk.Property
		if !h.BindJSON(c, &p) {
			return
		}
		value, err = nk.ValidateProperty(p)
	case "tenant":
		var t nk.Tenant
		if !h.BindJSON(c, &t) {
			return
		}
		value, err = nk.ValidateTenant(t)
	case "item":
		var item nk.CostItem
		if !h.BindJSON(c, &item) {
			return
		}
		value, err = nk.ValidateCostItem(item)
	default:
		h.Error(c, apperror.NewNotFound("entity", entity))
		return
	}

	h.observer.RecordValidation(entity, err)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.ValidationResponse{Valid: true, Value: value, Warnings: []plausibility.Warning{}})
}
