package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gearshare/rental-service/internal/dto"
	"github.com/gearshare/rental-service/internal/middleware"
	"github.com/gearshare/rental-service/internal/models"
	"github.com/gearshare/rental-service/internal/policy"
	"github.com/gearshare/rental-service/internal/service"
)

type BookingHandler struct {
	reservations service.ReservationService
	lifecycle    service.LifecycleService
}

func NewBookingHandler(reservations service.ReservationService, lifecycle service.LifecycleService) *BookingHandler {
	return &BookingHandler{reservations: reservations, lifecycle: lifecycle}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo, auth echo.MiddlewareFunc) {
	v1 := e.Group("/api/v1")

	v1.GET("/vehicles/:id/availability", h.CheckAvailability)
	v1.POST("/vehicles/:id/bookings", h.CreateBooking, auth)
	v1.GET("/vehicles/:id/bookings", h.ListVehicleBookings, auth)

	v1.GET("/bookings", h.ListMyBookings, auth)
	v1.GET("/bookings/:id", h.GetBooking, auth)
	v1.PATCH("/bookings/:id/status", h.UpdateBookingStatus, auth)

	v1.GET("/owners/me/earnings", h.GetOwnerEarnings, auth)
}

// CheckAvailability is public: anyone browsing the marketplace may ask
// whether a vehicle is free for a date range.
func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	vehicleID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vehicle id")
	}

	start, err := time.Parse(dto.DateLayout, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(dto.DateLayout, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end date, expected YYYY-MM-DD")
	}

	available, err := h.reservations.CheckAvailability(c.Request().Context(), vehicleID, start, end)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.AvailabilityResponse{
		VehicleID: vehicleID,
		StartDate: start.Format(dto.DateLayout),
		EndDate:   end.Format(dto.DateLayout),
		Available: available,
	})
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}

	vehicleID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vehicle id")
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	start, err := time.Parse(dto.DateLayout, req.StartDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
	}
	end, err := time.Parse(dto.DateLayout, req.EndDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
	}

	if err := policy.Authorize(principal, policy.Action{
		Resource:   policy.ResourceBooking,
		ResourceID: vehicleID,
		Verb:       policy.VerbCreate,
	}); err != nil {
		return mapServiceError(err)
	}

	booking, err := h.reservations.CreateBooking(c.Request().Context(), vehicleID, principal.UserID, start, end, req.TotalAmount, req.PlatformFee)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.reservations.GetBooking(c.Request().Context(), id)
	if err != nil {
		return mapServiceError(err)
	}

	ownerID := ""
	if booking.Vehicle != nil {
		ownerID = booking.Vehicle.OwnerID
	}
	if err := policy.Authorize(principal, policy.Action{
		Resource:   policy.ResourceBooking,
		ResourceID: booking.ID,
		Verb:       policy.VerbRead,
		OwnerID:    ownerID,
		RenterID:   booking.RenterID,
	}); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListMyBookings(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}

	bookings, err := h.reservations.ListRenterBookings(c.Request().Context(), principal.UserID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) ListVehicleBookings(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}

	vehicleID, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid vehicle id")
	}

	vehicle, err := h.reservations.GetVehicle(c.Request().Context(), vehicleID)
	if err != nil {
		return mapServiceError(err)
	}

	if err := policy.Authorize(principal, policy.Action{
		Resource:   policy.ResourceBooking,
		ResourceID: vehicleID,
		Verb:       policy.VerbList,
		OwnerID:    vehicle.OwnerID,
	}); err != nil {
		return mapServiceError(err)
	}

	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		if !bs.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status filter")
		}
		status = &bs
	}

	bookings, err := h.reservations.ListVehicleBookings(c.Request().Context(), vehicleID, status)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponses(bookings))
}

func (h *BookingHandler) UpdateBookingStatus(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	var req dto.UpdateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	target := models.BookingStatus(req.Status)
	if !target.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}

	booking, err := h.lifecycle.ApplyTransition(c.Request().Context(), id, target, principal)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetOwnerEarnings(c echo.Context) error {
	principal, ok := middleware.Principal(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing principal")
	}

	if err := policy.Authorize(principal, policy.Action{
		Resource: policy.ResourceEarnings,
		Verb:     policy.VerbRead,
		OwnerID:  principal.UserID,
	}); err != nil {
		return mapServiceError(err)
	}

	total, err := h.lifecycle.GetOwnerEarnings(c.Request().Context(), principal.UserID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(http.StatusOK, dto.EarningsResponse{OwnerID: principal.UserID, Total: total})
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, service.ErrVehicleNotFound), errors.Is(err, service.ErrBookingNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrDateRangeInvalid), errors.Is(err, service.ErrVehicleNotApproved):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrVehicleUnavailable), errors.Is(err, service.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, policy.ErrForbidden), errors.Is(err, policy.ErrNoPolicy):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStorageUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
