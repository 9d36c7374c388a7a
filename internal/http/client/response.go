package client

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/prestamos/internal/client"
)

type clientResponse struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	DocumentID string     `json:"document_id,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Email      string     `json:"email,omitempty"`
	Address    string     `json:"address,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func toResponse(c *client.Client) clientResponse {
	return clientResponse{
		ID:         c.ID,
		Name:       c.Name,
		DocumentID: c.DocumentID,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toResponseList(cs []*client.Client) []clientResponse {
	resp := make([]clientResponse, len(cs))
	for i, c := range cs {
		resp[i] = toResponse(c)
	}

	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
