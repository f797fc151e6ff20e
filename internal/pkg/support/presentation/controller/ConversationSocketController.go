package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/realtime"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// ConversationSocketController attaches an agent to a conversation's live
// message stream. Inbound text frames are agent replies; fanned-out messages
// arrive via the manager on the same socket.
type ConversationSocketController struct {
	users         repository.UserRepository
	conversations repository.ConversationRepository
	manager       *realtime.Manager
	sendUC        *usecase.SendAgentMessageUseCase
	log           *logrus.Logger
}

func NewConversationSocketController(
	users repository.UserRepository,
	conversations repository.ConversationRepository,
	manager *realtime.Manager,
	sendUC *usecase.SendAgentMessageUseCase,
	log *logrus.Logger,
) *ConversationSocketController {
	return &ConversationSocketController{
		users:         users,
		conversations: conversations,
		manager:       manager,
		sendUC:        sendUC,
		log:           log,
	}
}

func (ctl *ConversationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}
		userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		conv, err := ctl.conversations.GetConversation(c.Request.Context(), conversationID)
		if err != nil {
			rejectSocket(ws, "Conversation not found")
			return
		}
		user, err := ctl.users.GetUser(c.Request.Context(), userID)
		if err != nil {
			rejectSocket(ws, "User not found")
			return
		}
		if user.Role == support.RoleAgent && !conv.AssignedTo(user.ID) {
			rejectSocket(ws, "User is not assigned to this conversation")
			return
		}
		if conv.State == support.StateClosed {
			rejectSocket(ws, "Conversation is closed")
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		cfg := realtime.SocketConfig{
			Kind:           realtime.KindConversation,
			UserID:         userID,
			ConversationID: conversationID,
		}
		if err := ctl.manager.Register(c.Request.Context(), cfg, conn); err != nil {
			ctl.log.WithField("conversation_id", conversationID).WithError(err).Error("could not register conversation socket")
			conn.Close(websocket.CloseInternalServerErr, "registration failed")
			return
		}
		defer func() {
			ctl.manager.Deregister(cfg, conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			ctl.log.WithField("conversation_id", conversationID).Info("conversation socket disconnected")
		}()

		_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))

			body := strings.TrimSpace(string(data))
			if body == "" {
				continue
			}
			_, err = ctl.sendUC.Execute(c.Request.Context(), usecase.SendAgentMessageInput{
				ConversationID: conversationID,
				Actor:          user,
				Body:           body,
			})
			if err != nil {
				ctl.replyStatus(conn, false, statusMessageFor(err))
				continue
			}
			ctl.replyStatus(conn, true, "Message sent")
		}
	}
}

func statusMessageFor(err error) string {
	switch {
	case errors.Is(err, usecase.ErrConversationClosed):
		return "Conversation is closed"
	case errors.Is(err, usecase.ErrNotAssigned):
		return "User is not assigned to this conversation"
	case errors.Is(err, usecase.ErrCustomerDelivery):
		return "Error sending message to client"
	default:
		return "Error saving message"
	}
}

func (ctl *ConversationSocketController) replyStatus(conn *realtime.Connection, success bool, message string) {
	frame := support.ChatFrame{
		Type:   support.ChatFrameStatus,
		Status: &support.StatusData{Success: success, Message: message},
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Send(payload)
	}
}

// rejectSocket reports a precondition failure on a freshly upgraded socket
// and closes it; registration never happened.
func rejectSocket(ws *websocket.Conn, message string) {
	frame := support.ChatFrame{
		Type:   support.ChatFrameStatus,
		Status: &support.StatusData{Success: false, Message: message},
	}
	if payload, err := json.Marshal(frame); err == nil {
		_ = ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		_ = ws.WriteMessage(websocket.TextMessage, payload)
	}
	_ = ws.Close()
}
