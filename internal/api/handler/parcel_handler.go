package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parcelwatch/parcel-tracker/internal/core/domain"
	"github.com/parcelwatch/parcel-tracker/internal/core/ports"
)

// ParcelHandler handles HTTP requests for parcel tracking operations.
type ParcelHandler struct {
	service ports.TrackerService
}

func NewParcelHandler(service ports.TrackerService) *ParcelHandler {
	return &ParcelHandler{service: service}
}

// Track handles POST /v1/parcels: registers a tracking id and immediately
// attempts a first refresh. A failed first refresh still creates the record;
// the error rides along in the response.
func (h *ParcelHandler) Track(c echo.Context) error {
	var req trackParcelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	if _, err := h.service.AddParcel(ctx, ports.AddParcelInput{
		TrackingID: req.TrackingID,
		Name:       req.Name,
	}); err != nil {
		return err
	}

	parcel, refreshErr := h.service.RefreshOne(ctx, req.TrackingID)
	if errors.Is(refreshErr, domain.ErrParcelNotFound) {
		// Removed between add and refresh; surface as the registry error.
		return refreshErr
	}

	resp := parcelEnvelope{Parcel: parcel.Attributes()}
	if refreshErr != nil {
		resp.RefreshError = refreshErr.Error()
	}
	return c.JSON(http.StatusCreated, resp)
}

// Remove handles DELETE /v1/parcels/:tracking_id.
func (h *ParcelHandler) Remove(c echo.Context) error {
	if err := h.service.RemoveParcel(c.Request().Context(), c.Param("tracking_id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/parcels/:tracking_id.
func (h *ParcelHandler) Get(c echo.Context) error {
	parcel, err := h.service.GetParcel(c.Param("tracking_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, parcelEnvelope{Parcel: parcel.Attributes()})
}

// List handles GET /v1/parcels.
func (h *ParcelHandler) List(c echo.Context) error {
	parcels := h.service.ListParcels()
	data := make([]map[string]any, 0, len(parcels))
	for _, p := range parcels {
		data = append(data, p.Attributes())
	}
	return c.JSON(http.StatusOK, listParcelsResponse{Data: data, Count: len(data)})
}

// RefreshOne handles POST /v1/parcels/:tracking_id/refresh. A refresh that
// fails upstream still returns 200 with the last-known-good record plus the
// error; only an unknown id is a 404.
func (h *ParcelHandler) RefreshOne(c echo.Context) error {
	parcel, err := h.service.RefreshOne(c.Request().Context(), c.Param("tracking_id"))
	if errors.Is(err, domain.ErrParcelNotFound) {
		return err
	}

	resp := parcelEnvelope{Parcel: parcel.Attributes()}
	if err != nil {
		resp.RefreshError = err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}

// RefreshAll handles POST /v1/parcels/refresh — the bulk-update trigger.
// Per-parcel failures are reported in the result list, never as an HTTP
// error.
func (h *ParcelHandler) RefreshAll(c echo.Context) error {
	outcomes := h.service.RefreshAll(c.Request().Context())

	resp := refreshAllResponse{
		Attempted: len(outcomes),
		Results:   make([]refreshOutcomeResponse, 0, len(outcomes)),
	}
	for _, o := range outcomes {
		item := refreshOutcomeResponse{TrackingID: o.TrackingID}
		if o.Parcel != nil {
			item.Parcel = o.Parcel.Attributes()
		}
		if o.Err != nil {
			item.Error = o.Err.Error()
			item.ErrorKind = string(domain.KindOf(o.Err))
			resp.Failed++
		}
		resp.Results = append(resp.Results, item)
	}
	return c.JSON(http.StatusOK, resp)
}
