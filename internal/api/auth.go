package api

import (
	"net/http" // HTTP status codes

	"care_wallet/internal/schema"  // Request and response bodies
	"care_wallet/internal/service" // Account operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterHandler creates an account and queues the verification email
func RegisterHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req schema.RegisterRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		// Create the user; side writes never fail the request
		user, _, err := accounts.Register(c.Request.Context(), req, c.ClientIP())
		if err != nil {
			respondError(c, err, "Failed to register user")
			return
		}
		// Return success response
		c.JSON(http.StatusCreated, schema.RegisterResponse{Message: "User registered successfully. Please verify your email.", User: user})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req schema.LoginRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		token, err := accounts.Login(c.Request.Context(), req) // Check credentials
		if err != nil {
			respondError(c, err, "Failed to generate token")
			return
		}
		// Return the token in the response
		c.JSON(http.StatusOK, schema.AuthResponse{Token: token})
	}
}

// VerifyEmailHandler consumes the token from the verification email
func VerifyEmailHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req schema.VerifyEmailRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := accounts.VerifyEmail(c.Request.Context(), req.Token) // Mark the email verified
		if err != nil {
			respondError(c, err, "Failed to verify email")
			return
		}
		c.JSON(http.StatusOK, schema.UserResponse{User: user}) // Return the verified user
	}
}

// MeHandler returns the current identity with its profile and wallet
func MeHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		user, err := accounts.Me(c.Request.Context(), userID) // Re-load the user
		if err != nil {
			respondError(c, err, "Failed to load user")
			return
		}
		c.JSON(http.StatusOK, schema.UserResponse{User: user}) // Return user info
	}
}

// UpdateProfileHandler replaces the caller's profile metadata
func UpdateProfileHandler(accounts *service.Accounts) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c) // Get userID from context
		if !ok {
			return
		}
		var req schema.ProfileRequest // Bind JSON request to struct
		if !bindJSON(c, &req) {
			return
		}
		user, err := accounts.UpdateProfile(c.Request.Context(), userID, req) // Save the profile
		if err != nil {
			respondError(c, err, "Failed to update profile")
			return
		}
		c.JSON(http.StatusOK, schema.UserResponse{User: user}) // Return updated user
	}
}
