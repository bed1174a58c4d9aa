package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parking-tower/internal/parking"
)

const defaultEventLimit = 50

type Handler struct {
	engine      *parking.Engine
	events      *parking.MemoryRecorder
	serviceName string
}

func NewHandler(engine *parking.Engine, events *parking.MemoryRecorder, serviceName string) *Handler {
	return &Handler{
		engine:      engine,
		events:      events,
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": h.serviceName,
		"meta":    extractMeta(r.Context()),
	})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Status retrieved successfully", h.engine.GetSystemStatus())
}

func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Grid retrieved successfully", h.engine.GetParkingGrid())
}

func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := defaultEventLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(ctx, w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	WriteSuccess(ctx, w, "Events retrieved successfully", h.events.Recent(limit))
}

func (h *Handler) FindVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	plate := chi.URLParam(r, "plate")
	if plate == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Plate is required")
		return
	}

	space, ok := h.engine.FindVehicle(plate)
	if !ok {
		WriteError(ctx, w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(ctx, w, "Vehicle found", space)
}

func (h *Handler) StartEngine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.engine.Start(); err != nil {
		WriteError(ctx, w, http.StatusConflict, err.Error())
		return
	}
	WriteSuccess(ctx, w, "Engine started", map[string]any{"state": h.engine.State()})
}

func (h *Handler) StopEngine(w http.ResponseWriter, r *http.Request) {
	h.engine.Stop()
	WriteSuccess(r.Context(), w, "Engine stopped", map[string]any{"state": h.engine.State()})
}

func (h *Handler) InjectVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req InjectVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Class == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Vehicle class is required")
		return
	}

	result, err := h.engine.InjectVehicle(ctx, parking.VehicleClass(req.Class), req.Plate)
	if err != nil {
		if errors.Is(err, parking.ErrUnknownVehicleClass) {
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
			return
		}
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	message := "Vehicle parked successfully"
	if result.Queued {
		message = "No compatible space free, vehicle queued"
	}
	WriteSuccess(ctx, w, message, result)
}

func (h *Handler) ReleaseSpace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spaceID := chi.URLParam(r, "spaceID")
	if err := h.engine.ForceRelease(ctx, spaceID); err != nil {
		switch {
		case errors.Is(err, parking.ErrUnknownSpace):
			WriteError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, parking.ErrSpaceNotOccupied):
			WriteError(ctx, w, http.StatusConflict, err.Error())
		default:
			WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	WriteSuccess(ctx, w, "Space released", map[string]any{"space_id": spaceID})
}

func (h *Handler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spaceID := chi.URLParam(r, "spaceID")
	var req MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.engine.SetSpaceMaintenance(ctx, spaceID, req.OutOfService); err != nil {
		if errors.Is(err, parking.ErrUnknownSpace) {
			WriteError(ctx, w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
		return
	}

	WriteSuccess(ctx, w, "Maintenance flag updated", map[string]any{
		"space_id":       spaceID,
		"out_of_service": req.OutOfService,
	})
}
