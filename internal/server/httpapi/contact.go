package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dzakcloud/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const msgContactNotFound = "Contact not found"

type contactRequest struct {
	Name        string `json:"name" validate:"required"`
	Email       string `json:"email" validate:"required,emailaddr"`
	Topic       string `json:"topic" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	Description string `json:"description" validate:"required"`
}

type contactUpdateRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

func (h *Handler) createContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	if msg := h.validate.Validate(req, "Invalid request",
		tagMessage{"required", "Missing required fields"},
		tagMessage{"emailaddr", "Invalid email format"},
	); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := h.contacts.Create(r.Context(), services.CreateContactInput{
		Name:        req.Name,
		Email:       req.Email,
		Topic:       req.Topic,
		Subject:     req.Subject,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{})
		return
	}

	writeSuccess(w, http.StatusCreated, envelope{
		"message":   "Your message has been received. We'll get back to you soon!",
		"contactId": c.ID,
		"contact":   c,
	})
}

func (h *Handler) getContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgContactNotFound)
		return
	}

	c, err := h.contacts.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{notFound: msgContactNotFound})
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"contact": c})
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	page, ok := parsePage(w, r)
	if !ok {
		return
	}

	res, err := h.contacts.List(r.Context(), page, r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{validation: msgBadPage})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"count":    len(res.Items),
		"total":    res.Total,
		"limit":    res.Limit,
		"offset":   res.Offset,
		"contacts": res.Items,
	})
}

func (h *Handler) updateContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgContactNotFound)
		return
	}

	var req contactUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c, err := h.contacts.Update(r.Context(), id, req.Status, req.Notes)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{
			validation: "No fields to update",
			notFound:   msgContactNotFound,
		})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"message": "Contact updated successfully",
		"contact": c,
	})
}

func (h *Handler) deleteContact(w http.ResponseWriter, r *http.Request) {
	id, ok := contactID(r)
	if !ok {
		writeError(w, http.StatusNotFound, msgContactNotFound)
		return
	}

	c, err := h.contacts.Delete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{notFound: msgContactNotFound})
		return
	}

	writeSuccess(w, http.StatusOK, envelope{
		"message": "Contact deleted successfully",
		"contact": c,
	})
}

func (h *Handler) contactStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contacts.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err, errorMessages{})
		return
	}
	writeSuccess(w, http.StatusOK, envelope{"stats": stats})
}

// contactID parses the {id} path parameter. Anything that is not a
// positive integer cannot name a contact.
func contactID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
