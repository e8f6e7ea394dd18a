package demoserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/xmtplabs/convos-node-sdk/internal/groupwrap"
	"github.com/xmtplabs/convos-node-sdk/internal/join"
	"github.com/xmtplabs/convos-node-sdk/internal/middleware"
	"github.com/xmtplabs/convos-node-sdk/internal/substrate"
	"github.com/xmtplabs/convos-node-sdk/internal/substrate/fake"
)

var errConversationNotFound = errors.New("demoserver: unknown conversation id")

// handleCreateConversation seeds a new creator-owned group
// conversation and returns its id.
func (s *Server) handleCreateConversation(w http.ResponseWriter, r *http.Request) {
	id := uuid.New().String()
	conv := fake.NewConversation(id, "", s.creator.InboxID())
	s.creator.Seed(conv)
	s.groups[id] = groupwrap.New(conv, s.creator.InboxID(), s.cfg.CreatorPrivateKey, s.cfg.EffectiveBaseURL())

	writeJSON(w, http.StatusCreated, map[string]string{"conversation_id": id})
}

// createInviteRequest carries the optional display fields an invite
// may be created with.
type createInviteRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	group, ok := s.groups[id]
	if !ok {
		writeError(w, http.StatusNotFound, errConversationNotFound)
		return
	}

	var req createInviteRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	url, err := group.InviteURL(r.Context(), groupwrap.CreateInviteOptions{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"invite_url": url})
}

type joinRequest struct {
	InviteURL string `json:"invite_url"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := join.Join(r.Context(), s.joiner.InboxID(), s.joiner.Conversations(), req.InviteURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type deliverRequest struct {
	Text string `json:"text"`
}

type deliverResponse struct {
	Outcome string `json:"outcome"`
}

// handleDeliver simulates the creator's messaging client receiving
// text from the joiner in their DM and routes it through the
// middleware engine, returning the resulting classification.
func (s *Server) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var req deliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	dm, err := s.creator.Conversations().GetByID(r.Context(), dmConversationID(s.joiner.InboxID()))
	if err != nil {
		dm, err = s.creator.Conversations().CreateDM(r.Context(), s.joiner.InboxID())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}

	outcome, err := s.engine.HandleDelivery(r.Context(), middleware.Delivery{
		Content:       substrate.TextContent(req.Text),
		SenderInboxID: s.joiner.InboxID(),
		Conversation:  dm,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, deliverResponse{Outcome: outcome.String()})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.audit.Entries())
}

func dmConversationID(inboxID string) string {
	return "dm-" + inboxID
}
