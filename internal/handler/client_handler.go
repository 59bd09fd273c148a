package handler

import (
	"encoding/json"
	"net/http"

	"github.com/yusufkecer/medfit-backend/internal/domain"
	"github.com/yusufkecer/medfit-backend/internal/service"
)

type ClientHandler struct {
	clients *service.ClientService
}

func NewClientHandler(clients *service.ClientService) *ClientHandler {
	return &ClientHandler{clients: clients}
}

type clientRequest struct {
	Name      string  `json:"name"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birth_date"`
	Sex       string  `json:"sex"`
}

func (req clientRequest) toClient() domain.Client {
	return domain.Client{
		Name:      req.Name,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Sex:       domain.ParseSex(req.Sex),
	}
}

func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client := req.toClient()
	if err := h.clients.Create(r.Context(), &client); err != nil {
		writeServiceError(w, r, err, "failed to create client")
		return
	}

	writeJSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	client, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to get client")
		return
	}

	writeJSON(w, http.StatusOK, client)
}

// GetAll lists clients; ?name= narrows to a case-insensitive substring.
func (h *ClientHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	clients, err := h.clients.List(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, r, err, "failed to list clients")
		return
	}
	if clients == nil {
		clients = []domain.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	client := req.toClient()
	client.ID = id
	if err := h.clients.Update(r.Context(), &client); err != nil {
		writeServiceError(w, r, err, "failed to update client")
		return
	}

	updated, err := h.clients.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to get updated client")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid client id")
		return
	}

	if err := h.clients.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "failed to delete client")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "client deleted"})
}

func (h *ClientHandler) Stats(w http.ResponseWriter, r *http.Request) {
	total, err := h.clients.Count(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to count clients")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}
