package workout

import (
	"errors"
	"time"

	"backend-pacetrail/internal/activity"
	"backend-pacetrail/internal/shared/geo"

	"github.com/gofiber/fiber/v2"
)

type startRequest struct {
	Type activity.Type `json:"type"`
}

func RegisterRoutes(r fiber.Router, reg *Registry, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		var req startRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if !req.Type.Valid() {
			return fiber.NewError(fiber.StatusBadRequest, "type must be walk, run or bike")
		}

		userID := userIDFromLocals(c)
		mgr, _ := reg.ManagerFor(userID)
		session, err := mgr.Start(c.Context(), userID, req.Type)
		if err != nil {
			return lifecycleError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(session)
	})

	r.Post("/pause", authMiddleware, func(c *fiber.Ctx) error {
		mgr, _ := reg.ManagerFor(userIDFromLocals(c))
		session, err := mgr.Pause(c.Context())
		if err != nil {
			return lifecycleError(err)
		}
		return c.JSON(session)
	})

	r.Post("/resume", authMiddleware, func(c *fiber.Ctx) error {
		mgr, _ := reg.ManagerFor(userIDFromLocals(c))
		session, err := mgr.Resume(c.Context())
		if err != nil {
			return lifecycleError(err)
		}
		return c.JSON(session)
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		mgr, _ := reg.ManagerFor(userIDFromLocals(c))
		rec, err := mgr.Stop(c.Context())
		if err != nil {
			return lifecycleError(err)
		}
		return c.JSON(rec)
	})

	r.Get("/current", authMiddleware, func(c *fiber.Ctx) error {
		mgr, _ := reg.ManagerFor(userIDFromLocals(c))
		session, ok := mgr.Current()
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no live workout")
		}
		return c.JSON(session)
	})

	r.Post("/locations", authMiddleware, func(c *fiber.Ctx) error {
		var p geo.Point
		if err := c.BodyParser(&p); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
			return fiber.NewError(fiber.StatusBadRequest, "coordinates out of range")
		}
		if p.Timestamp.IsZero() {
			p.Timestamp = time.Now()
		}

		_, feed := reg.ManagerFor(userIDFromLocals(c))
		feed.Publish(p)
		return c.SendStatus(fiber.StatusAccepted)
	})
}

func userIDFromLocals(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// precondition violations map to 409, everything else is the collaborator's
// fault
func lifecycleError(err error) error {
	switch {
	case errors.Is(err, ErrAlreadyInProgress),
		errors.Is(err, ErrNoActiveWorkout),
		errors.Is(err, ErrNoPausedWorkout),
		errors.Is(err, ErrNoSession):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
