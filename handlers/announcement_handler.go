package handlers

import (
	"net/http"

	"github.com/Marling1212/ntu-sports-sub001/middleware"
	"github.com/Marling1212/ntu-sports-sub001/services"
)

type AnnouncementHandler struct {
	announcementService services.AnnouncementService
}

func NewAnnouncementHandler(announcementService services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// CreateHandler handles POST /events/{eventID}/announcements
func (h *AnnouncementHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to post an announcement")
		return
	}

	var input services.CreateAnnouncementInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	announcement, err := h.announcementService.PostAnnouncement(r.Context(), eventID, currentUserID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"announcement": announcement}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler handles GET /events/{eventID}/announcements
func (h *AnnouncementHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := getIDFromURL(r, "eventID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	announcements, err := h.announcementService.ListByEvent(r.Context(), eventID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"announcements": announcements}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
