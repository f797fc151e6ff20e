package task

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	notifier "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/notifier/port"
	qport "github.com/DataPR0/multiagenteBackendEquirent/internal/infrastructure/queue/port"
	support "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/domain"
	"github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/application/usecase"
	repository "github.com/DataPR0/multiagenteBackendEquirent/internal/pkg/support/persistence/repository/port"
)

// unattendedApology goes to customers whose conversation sat unassigned for
// the whole grace period. The conversation is closed afterwards so the thread
// returns to the chatbot.
const unattendedApology = `Gracias por contactarnos. En este momento, no hemos podido asignar tu conversación a un asesor.

🔄 ¿Qué puedes hacer?

Intentarlo nuevamente más tarde.
Revisar nuestras preguntas frecuentes aquí: https://www.finanzauto.com.co/portal/pqrinter
Si es urgente, contáctanos por otro canal: (601) 749 9000.
Lamentamos las molestias y agradecemos tu paciencia.

📍 Finanzauto S.A. BIC`

// RegisterUnattendedConversationTask binds the deferred unattended check to
// the worker server. The task fires once per new conversation, after the
// configured grace period: if nobody picked the conversation up and no agent
// ever wrote into it, the customer gets an apology and the thread is closed.
func RegisterUnattendedConversationTask(
	srv qport.Server,
	conversations repository.ConversationRepository,
	messages repository.MessageRepository,
	customer notifier.CustomerChannel,
	log *logrus.Logger,
) {
	srv.Register(usecase.UnattendedTaskType, func(ctx context.Context, t qport.Task) error {
		var p usecase.UnattendedTaskPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying cannot fix it
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		conv, err := conversations.GetConversationByThread(ctx, p.ThreadID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		if conv.AssignedUserID != nil || conv.State == support.StateClosed {
			return nil
		}
		agentMessages, err := messages.CountAgentMessages(ctx, conv.ID)
		if err != nil {
			return err
		}
		if agentMessages > 0 {
			return nil
		}

		log.WithField("thread_id", p.ThreadID).Info("closing unattended conversation")

		if err := customer.SendMessage(ctx, conv.ClientPhone, unattendedApology, nil, ""); err != nil {
			log.WithField("thread_id", p.ThreadID).WithError(err).Error("could not send unattended apology")
		}
		m, err := support.NewMessage(support.Message{
			ConversationID: conv.ID,
			Content:        unattendedApology,
			Sender:         support.SenderAgent,
		}, false)
		if err == nil {
			if _, _, serr := messages.SaveMessage(ctx, *m, nil, false); serr != nil {
				log.WithField("thread_id", p.ThreadID).WithError(serr).Error("could not save unattended apology")
			}
		}
		if err := conversations.Close(ctx, conv.ID, nil); err != nil {
			return err
		}
		if err := customer.NotifyConversationEnded(ctx, conv.ThreadID, conv.ClientPhone, ""); err != nil {
			log.WithField("thread_id", p.ThreadID).WithError(err).Error("could not hand thread back to chatbot")
		}
		return nil
	})
}
