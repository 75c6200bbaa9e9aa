package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/taskhub/internal/api/shared"
	"github.com/phrazzld/taskhub/internal/platform/logger"
	"github.com/phrazzld/taskhub/internal/service"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for UserHandler")
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// Routes mounts the user endpoints on r.
func (h *UserHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateUser)
	r.Get("/", h.GetAllUsers)
	r.Get("/stats", h.GetUserStats)
	r.Get("/search", h.SearchUsers)
	r.Get("/search/firstname", h.GetUsersByFirstName)
	r.Get("/username/{username}", h.GetUserByUsername)
	r.Get("/email/{email}", h.GetUserByEmail)
	r.Get("/{id}", h.GetUserByID)
	r.Put("/{id}", h.UpdateUser)
	r.Delete("/{id}", h.DeleteUser)
	r.Get("/{id}/exists", h.CheckUserExists)
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create user")
		return
	}

	h.log(r).Info("user created via API", slog.Int64("user_id", user.ID))
	shared.RespondWithJSON(w, r, http.StatusCreated, userToResponse(user))
}

// GetAllUsers handles GET /users
func (h *UserHandler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, usersToResponse(users))
}

// GetUserByID handles GET /users/{id}
func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateUser handles PUT /users/{id}
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	var req UserRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	user, err := h.users.UpdateUser(r.Context(), id, req.ToDomain())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// DeleteUser handles DELETE /users/{id}
// It removes the user and every task the user owns.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	result, err := h.users.DeleteUser(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to delete user")
		return
	}

	resp := UserDeletionResponse{
		UserID:           result.UserID,
		Deleted:          result.Deleted,
		DeletedTaskCount: result.DeletedTaskCount,
		Message:          "User and all associated tasks successfully deleted",
	}
	status := http.StatusOK
	if !result.Deleted {
		resp.Message = "Failed to delete user"
		status = http.StatusInternalServerError
	}
	shared.RespondWithJSON(w, r, status, resp)
}

// GetUserByUsername handles GET /users/username/{username}
func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GetUserByEmail handles GET /users/email/{email}
func (h *UserHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByEmail(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// GetUsersByFirstName handles GET /users/search/firstname?firstName=
func (h *UserHandler) GetUsersByFirstName(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetUsersByFirstName(r.Context(), r.URL.Query().Get("firstName"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to search users")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, usersToResponse(users))
}

// SearchUsers handles GET /users/search?username=&email=&firstName=
// Failed searches are reported in the body with success=false, not as an
// error status.
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	criteria := service.UserSearch{
		Username:  q.Get("username"),
		Email:     q.Get("email"),
		FirstName: q.Get("firstName"),
	}

	result, err := h.users.SearchUsers(r.Context(), criteria)
	if err != nil {
		h.log(r).Warn("user search failed", slog.String("error", err.Error()))
		shared.RespondWithJSON(w, r, http.StatusOK, UserSearchResponse{
			Users: []UserResponse{},
			SearchCriteria: fmt.Sprintf("username: %s, email: %s, firstName: %s",
				criteria.Username, criteria.Email, criteria.FirstName),
			Success: false,
			Message: "No users found matching the search criteria",
		})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, UserSearchResponse{
		Users:          usersToResponse(result.Users),
		SearchCriteria: result.Criteria,
		Success:        true,
		Message:        "Search completed successfully",
	})
}

// CheckUserExists handles GET /users/{id}/exists
func (h *UserHandler) CheckUserExists(w http.ResponseWriter, r *http.Request) {
	id, ok := handlePathID(w, r, "id", h.log(r))
	if !ok {
		return
	}

	exists := h.users.UserExists(r.Context(), id)
	msg := "User does not exist"
	if exists {
		msg = "User exists"
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserExistenceResponse{UserID: id, Exists: exists, Message: msg})
}

// GetUserStats handles GET /users/stats
func (h *UserHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	n, err := h.users.GetUserCount(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get user statistics")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, UserStatsResponse{
		TotalUsers: n,
		Message:    fmt.Sprintf("Total registered users: %d", n),
	})
}

func (h *UserHandler) log(r *http.Request) *slog.Logger {
	return logger.FromContextOrDefault(r.Context(), h.logger)
}
