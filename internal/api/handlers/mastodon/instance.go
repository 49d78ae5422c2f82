package mastodon

import (
	"net/http"

	"github.com/jefflewis/archaeopteryx/internal/mastodon"
)

// InstanceHandler serves GET /api/v1/instance and /api/v2/instance.
// The same body shape answers both versions — v2's richer nested shape
// (accounts/vapid/rules) is out of scope per spec.md §1 for everything
// beyond the statuses limits §6 names.
type InstanceHandler struct {
	hostname string
}

func NewInstanceHandler(hostname string) *InstanceHandler {
	return &InstanceHandler{hostname: hostname}
}

const (
	maxCharacters       = 300
	maxMediaAttachments = 4
)

func (h *InstanceHandler) instance() mastodon.Instance {
	return mastodon.Instance{
		URI:              h.hostname,
		Title:            "Archaeopteryx",
		ShortDescription: "A Mastodon-compatible gateway to the AT Protocol.",
		Description:      "A Mastodon-compatible gateway to the AT Protocol.",
		Version:          "4.0.0 (compatible; Archaeopteryx)",
		Languages:        []string{"en"},
		Configuration: mastodon.InstanceConfig{
			Statuses: mastodon.StatusesConfig{
				MaxCharacters:       maxCharacters,
				MaxMediaAttachments: maxMediaAttachments,
			},
		},
	}
}

func (h *InstanceHandler) HandleV1(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.instance())
}

func (h *InstanceHandler) HandleV2(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.instance())
}
