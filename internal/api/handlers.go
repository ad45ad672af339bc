package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tabshare/tabshare/internal/middleware"
	"github.com/tabshare/tabshare/internal/models"
)

// Auth handlers

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	user, token, err := a.auths.Register(r.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"user":  userFromModel(user),
		"token": token,
	})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	user, token, err := a.auths.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":  userFromModel(user),
		"token": token,
	})
}

// Group handlers

func (a *API) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TotalAmount float64 `json:"total_amount"`
		Capacity    int     `json:"capacity"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	leaderID := middleware.GetUserID(r.Context())
	group, err := a.groups.CreateGroup(r.Context(), leaderID, req.TotalAmount, req.Capacity, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, groupFromModel(group))
}

func (a *API) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := a.groups.GetGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupFromModel(group))
}

func (a *API) handleGetGroupByShareCode(w http.ResponseWriter, r *http.Request) {
	group, err := a.groups.GetGroupByShareCode(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupFromModel(group))
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.groups.ListMembers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, membersFromModels(members))
}

// handleJoinGroup enrolls the authenticated caller into the group.
func (a *API) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	member, err := a.groups.JoinGroup(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, memberFromModel(member))
}

func (a *API) handleUpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	vars := mux.Vars(r)
	member, err := a.groups.UpdateMemberStatus(r.Context(), vars["id"], vars["userID"], models.MemberStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memberFromModel(member))
}

func (a *API) handleUpdateGroupStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	group, err := a.groups.UpdateGroupStatus(r.Context(), mux.Vars(r)["id"], models.GroupStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groupFromModel(group))
}

// Transaction handlers

// handleCreateTransaction records a transfer from the authenticated caller.
func (a *API) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ReceiverID  string  `json:"receiver_id"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	senderID := middleware.GetUserID(r.Context())
	txn, err := a.txns.CreateTransaction(r.Context(), senderID, req.ReceiverID, req.Amount, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transactionFromModel(txn))
}

func (a *API) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := a.txns.GetTransaction(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionFromModel(txn))
}

func (a *API) handleUpdateTransactionStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}

	txn, err := a.txns.UpdateTransactionStatus(r.Context(), mux.Vars(r)["id"], models.TransactionStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionFromModel(txn))
}

func (a *API) handleIssueCard(w http.ResponseWriter, r *http.Request) {
	card, err := a.groups.IssuePaymentCard(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cardFromModel(card))
}
