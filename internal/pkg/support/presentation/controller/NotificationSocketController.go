package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/realtime"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

const socketReadTimeout = 60 * time.Second

// NotificationSocketController holds a user's notification stream open. The
// socket doubles as the presence signal: connecting marks the user online,
// disconnecting marks them offline.
type NotificationSocketController struct {
	users      repository.UserRepository
	manager    *realtime.Manager
	presenceUC *usecase.SetPresenceUseCase
	log        *logrus.Logger
}

func NewNotificationSocketController(users repository.UserRepository, manager *realtime.Manager, presenceUC *usecase.SetPresenceUseCase, log *logrus.Logger) *NotificationSocketController {
	return &NotificationSocketController{users: users, manager: manager, presenceUC: presenceUC, log: log}
}

func (ctl *NotificationSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}
		if _, err := ctl.users.GetUser(c.Request.Context(), userID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected persistence error"})
			}
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just return.
			return
		}

		conn := realtime.NewConnection(userID, ws)
		conn.Start()
		cfg := realtime.SocketConfig{Kind: realtime.KindNotifications, UserID: userID}
		if err := ctl.manager.Register(c.Request.Context(), cfg, conn); err != nil {
			ctl.log.WithField("user_id", userID).WithError(err).Error("could not register notification socket")
			conn.Close(websocket.CloseInternalServerErr, "registration failed")
			return
		}
		defer func() {
			ctl.manager.Deregister(cfg, conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			ctl.setPresence(c, userID, support.PresenceOffline)
			ctl.log.WithField("user_id", userID).Info("user disconnected")
		}()

		ctl.setPresence(c, userID, support.PresenceOnline)
		ctl.log.WithField("user_id", userID).Info("user connected")

		_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		})

		// Clients send nothing meaningful here; drain until disconnect.
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(socketReadTimeout))
		}
	}
}

func (ctl *NotificationSocketController) setPresence(c *gin.Context, userID int64, p support.UserPresence) {
	if _, err := ctl.presenceUC.Execute(c.Request.Context(), usecase.SetPresenceInput{UserID: userID, Presence: p}); err != nil {
		ctl.log.WithFields(logrus.Fields{
			"user_id": userID,
			"state":   p.String(),
		}).WithError(err).Error("could not change user presence")
	}
}
