package api

import (
	"net/http" // HTTP status codes

	"care_wallet/internal/middleware" // Optional identity
	"care_wallet/internal/schema"     // Request and response bodies
	"care_wallet/internal/service"    // Chat and account operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// chatUser returns the caller's ID, or 0 for an anonymous caller. A token for
// a user that no longer exists is rejected with 401.
func chatUser(c *gin.Context, accounts *service.Accounts) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		return 0, true // Anonymous, local-only mode
	}
	if _, err := accounts.Me(c.Request.Context(), userID); err != nil {
		respondError(c, err, "Failed to load user")
		return 0, false
	}
	return userID, true
}

// ChatHandler forwards one user turn to the model
func ChatHandler(chat *service.Chat, accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := chatUser(c, accounts)
		if !ok {
			return
		}
		var req schema.ChatRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		resp, _, err := chat.Reply(c.Request.Context(), userID, req) // Ask the model
		if err != nil {
			respondError(c, err, ChatFallbackMessage)
			return
		}
		c.JSON(http.StatusOK, resp) // Return the reply and full conversation
	}
}

// ChatHistoryHandler returns the stored conversation; anonymous callers get an empty local one
func ChatHistoryHandler(chat *service.Chat, accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := chatUser(c, accounts)
		if !ok {
			return
		}
		resp, err := chat.History(c.Request.Context(), userID, c.Query("session_id"))
		if err != nil {
			respondError(c, err, "Failed to load chat history")
			return
		}
		c.JSON(http.StatusOK, resp) // Return the history
	}
}
