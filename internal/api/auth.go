package api

import "net/http"

type userCredentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type ownerCredentials struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type ownerResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) registerUser(w http.ResponseWriter, r *http.Request) {
	var req userCredentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	u, err := h.auth.RegisterUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: u.ID, Username: u.Username})
}

func (h *Handler) loginUser(w http.ResponseWriter, r *http.Request) {
	var req userCredentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.LoginUser(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

func (h *Handler) registerOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerCredentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name and password are required")
		return
	}

	o, err := h.auth.RegisterOwner(r.Context(), req.Name, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ownerResponse{ID: o.ID, Name: o.Name})
}

func (h *Handler) loginOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerCredentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := h.auth.LoginOwner(r.Context(), req.Name, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}
