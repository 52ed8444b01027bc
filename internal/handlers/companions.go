package handlers

import "net/http"

// CompanionInfo represents a companion in the list response.
type CompanionInfo struct {
	CompanionID string `json:"companionId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// CompanionListResponse represents the companions list response.
type CompanionListResponse struct {
	Success    bool            `json:"success"`
	Companions []CompanionInfo `json:"companions"`
}

// ListCompanions handles listing active companions.
func (h *Handler) ListCompanions(w http.ResponseWriter, r *http.Request) {
	companions, err := h.db.ListActiveCompanions(r.Context())
	if err != nil {
		h.Dependency(w, r, err)
		return
	}

	views := make([]CompanionInfo, len(companions))
	for i, c := range companions {
		views[i] = CompanionInfo{
			CompanionID: c.ID.String(),
			Name:        c.Name,
			Description: c.Description,
			Specialty:   c.Specialty,
			AvatarURL:   c.AvatarURL,
		}
	}

	h.JSON(w, http.StatusOK, CompanionListResponse{Success: true, Companions: views})
}
