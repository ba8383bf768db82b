package api

import (
	"net/http" // HTTP status codes

	"care_wallet/internal/cache"   // Admin listing cache
	"care_wallet/internal/schema"  // Request and response bodies
	"care_wallet/internal/service" // Booking operations
	"care_wallet/internal/utils"   // Pagination

	"github.com/gin-gonic/gin" // Gin web framework
)

// CreateHealthServiceHandler books an emergency or health service
func CreateHealthServiceHandler(bookings *service.Bookings, rc cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		var req schema.HealthServiceRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		// Store the booking
		booking, _, err := bookings.Book(c.Request.Context(), userID, req, c.ClientIP())
		if err != nil {
			respondError(c, err, "Failed to book service")
			return
		}
		_ = rc.DeletePrefix(c.Request.Context(), cache.AdminPrefix) // Dashboard counters changed
		// Return the booking
		c.JSON(http.StatusOK, schema.BookingResult{Success: true, Booking: booking})
	}
}

// ListHealthServicesHandler returns the caller's bookings, newest first
func ListHealthServicesHandler(bookings *service.Bookings) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		page := utils.ParsePage(c.Query("page"), c.Query("page_size")) // Page and page size with defaults
		list, total, err := bookings.List(c.Request.Context(), userID, page)
		if err != nil {
			respondError(c, err, "Failed to fetch bookings")
			return
		}
		c.JSON(http.StatusOK, paginated("bookings", list, page.Number, page.Size, total, page.TotalPages(total)))
	}
}
