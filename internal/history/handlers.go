package history

import (
	"errors"
	"strconv"

	"backend-pacetrail/internal/shared/gpsfilter"

	"github.com/gofiber/fiber/v2"
)

const defaultTrackEpsilonM = 10.0

func RegisterRoutes(r fiber.Router, store *Store, authMiddleware fiber.Handler) {
	r.Get("/workouts", authMiddleware, func(c *fiber.Ctx) error {
		opts := QueryOptions{
			Type:   c.Query("type"),
			Limit:  c.QueryInt("limit"),
			Offset: c.QueryInt("offset"),
		}
		records, err := store.List(c.Context(), userID(c), opts)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{"workouts": records})
	})

	r.Get("/workouts/:id", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := store.Get(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return storeError(err)
		}
		return c.JSON(rec)
	})

	r.Get("/workouts/:id/track", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := store.Get(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return storeError(err)
		}

		epsilon := defaultTrackEpsilonM
		if raw := c.Query("epsilon"); raw != "" {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || parsed < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "epsilon must be a non-negative number")
			}
			epsilon = parsed
		}

		simplified := gpsfilter.Simplify(rec.Points, epsilon)
		return c.JSON(fiber.Map{
			"workout_id": rec.ID,
			"epsilon_m":  epsilon,
			"points":     simplified,
		})
	})

	r.Get("/workouts/:id/gpx", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := store.Get(c.Context(), userID(c), c.Params("id"))
		if err != nil {
			return storeError(err)
		}
		c.Set(fiber.HeaderContentType, "application/gpx+xml")
		return c.SendString(GPX(rec))
	})

	r.Delete("/workouts/:id", authMiddleware, func(c *fiber.Ctx) error {
		if err := store.Delete(c.Context(), userID(c), c.Params("id")); err != nil {
			return storeError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

func storeError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
