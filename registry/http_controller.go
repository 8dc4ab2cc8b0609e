package registry

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// DriversStore is the slice of the repository the HTTP controller needs
type DriversStore interface {
	Get(ctx context.Context, id uuid.UUID) (*Driver, error)
	Create(ctx context.Context, record *Driver, criteria ...repository.InsertCriteria) (*Driver, error)
	Update(ctx context.Context, record *Driver, criteria ...repository.UpdateCriteria) (*Driver, error)
	Search(ctx context.Context, criteria ListCriteria) ([]*Driver, int, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

// Logger matches the subset of a structured logger the controller needs
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) { fmt.Printf("[ERR] REGISTRY "+msg+"\n", args...) }
func (d defLogger) Warn(msg string, args ...any)  { fmt.Printf("[WRN] REGISTRY "+msg+"\n", args...) }
func (d defLogger) Info(msg string, args ...any)  { fmt.Printf("[INF] REGISTRY "+msg+"\n", args...) }
func (d defLogger) Debug(msg string, args ...any) { fmt.Printf("[DBG] REGISTRY "+msg+"\n", args...) }

// DriverPayload is the create and update request body
type DriverPayload struct {
	FirstName string `form:"first_name" json:"first_name"`
	LastName  string `form:"last_name" json:"last_name"`
	LicenseNo string `form:"license_no" json:"license_no"`
	Phone     string `form:"phone" json:"phone"`
	Email     string `form:"email" json:"email"`
	Status    string `form:"status" json:"status"`
}

// Validate will validate the payload
func (p DriverPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&p.LicenseNo, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.Email, is.Email),
		validation.Field(&p.Status, validation.In(StatusActive, StatusInactive)),
	)
}

func (p DriverPayload) apply(record *Driver) {
	record.FirstName = p.FirstName
	record.LastName = p.LastName
	record.LicenseNo = p.LicenseNo
	record.Phone = p.Phone
	record.Email = p.Email
	if p.Status != "" {
		record.Status = p.Status
	}
}

type HTTPControllerRoutes struct {
	Collection string
	Item       string
}

type HTTPController struct {
	Logger  Logger
	Drivers DriversStore
	Routes  *HTTPControllerRoutes
}

type HTTPControllerOption func(*HTTPController) *HTTPController

func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger: defLogger{},
		Routes: &HTTPControllerRoutes{
			Collection: "/drivers",
			Item:       "/drivers/:id",
		},
	}

	for _, opt := range opts {
		if opt != nil {
			c = opt(c)
		}
	}

	return c
}

// RegisterDriverRoutes mounts the driver resource routes. The router is
// expected to already sit behind the guard middleware.
func RegisterDriverRoutes(app fiber.Router, opts ...HTTPControllerOption) {
	controller := NewHTTPController(opts...)

	app.Post(controller.Routes.Collection, controller.DriverCreate)
	app.Get(controller.Routes.Collection, controller.DriverList)
	app.Get(controller.Routes.Item, controller.DriverShow)
	app.Put(controller.Routes.Item, controller.DriverUpdate)
	app.Delete(controller.Routes.Item, controller.DriverDelete)
}

// DriverCreate registers a new driver record
func (h *HTTPController) DriverCreate(c *fiber.Ctx) error {
	payload := new(DriverPayload)

	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("driver create parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid driver request payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	record := &Driver{}
	payload.apply(record)

	record, err := h.Drivers.Create(c.UserContext(), record)
	if err != nil {
		h.Logger.Error("driver create storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(record)
}

// DriverShow returns a single driver by id
func (h *HTTPController) DriverShow(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid driver id",
		})
	}

	record, err := h.Drivers.Get(c.UserContext(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Driver not found",
			})
		}

		h.Logger.Error("driver show storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(record)
}

// DriverUpdate replaces the mutable fields of a driver record
func (h *HTTPController) DriverUpdate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid driver id",
		})
	}

	payload := new(DriverPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("driver update parse payload", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid driver request payload",
		})
	}

	if err := payload.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	}

	record, err := h.Drivers.Get(c.UserContext(), id)
	if err != nil {
		if errors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Driver not found",
			})
		}

		h.Logger.Error("driver update storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	payload.apply(record)

	record, err = h.Drivers.Update(c.UserContext(), record)
	if err != nil {
		h.Logger.Error("driver update storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(record)
}

// DriverDelete soft deletes a driver record
func (h *HTTPController) DriverDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid driver id",
		})
	}

	if err := h.Drivers.Remove(c.UserContext(), id); err != nil {
		if errors.IsNotFound(err) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Driver not found",
			})
		}

		h.Logger.Error("driver delete storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// DriverList searches the registry. Supported query parameters: q for a
// name or license match, status, limit, offset.
func (h *HTTPController) DriverList(c *fiber.Ctx) error {
	criteria := ListCriteria{
		Query:  c.Query("q"),
		Status: c.Query("status"),
		Limit:  c.QueryInt("limit", defaultPageSize),
		Offset: c.QueryInt("offset", 0),
	}

	if criteria.Status != "" && !ValidStatus(criteria.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid driver status filter",
		})
	}

	records, total, err := h.Drivers.Search(c.UserContext(), criteria)
	if err != nil {
		h.Logger.Error("driver list storage error", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	limit := criteria.Limit
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}

	return c.JSON(fiber.Map{
		"items":  records,
		"total":  total,
		"limit":  limit,
		"offset": criteria.Offset,
	})
}
