package httpapi

import (
	"net/http"
	"strings"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,emailaddr"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if msg := h.validate.Validate(req, "Invalid request",
		tagMessage{"required", "Missing required fields"},
		tagMessage{"min", "Password must be at least 6 characters long"},
		tagMessage{"emailaddr", "Invalid email format"},
	); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{
			validation: "Password must be at least 6 characters long",
			conflict:   "Email already registered",
		})
		return
	}

	writeSuccess(w, http.StatusCreated, envelope{
		"message": "Account created successfully",
		"token":   token,
		"user":    user,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if msg := h.validate.Validate(req, "Email and password are required"); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{unauthorized: "Invalid email or password"})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"message": "Login successful",
		"token":   token,
		"user":    user,
	})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	user, err := h.users.Profile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{notFound: "User not found"})
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"user": user})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := nonEmpty(req.Name)
	email := nonEmpty(req.Email)
	if email != nil && !isValidEmail(*email) {
		writeError(w, http.StatusBadRequest, "Invalid email format")
		return
	}

	userID, _ := userIDFromContext(r.Context())
	user, err := h.users.UpdateProfile(r.Context(), userID, name, email)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{
			validation: "No fields to update",
			notFound:   "User not found",
			conflict:   "Email already in use",
		})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// logout revokes the presented token. Without one it still succeeds.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context(), extractToken(r)); err != nil {
		h.writeServiceError(w, r, err, errorMessages{})
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"message": "Logged out successfully"})
}

// nonEmpty treats an empty or blank string as absent.
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
