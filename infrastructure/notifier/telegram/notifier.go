// Package telegram implementa o transporte de mensagens do sistema sobre
// a Bot API. O roteamento decide se a mensagem vai para o chat do projeto,
// para o chat do administrador ou para ambos.
package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/buyclientuz-pixel/targetbot-sub000/internal/config"
	"github.com/buyclientuz-pixel/targetbot-sub000/internal/domain"
	"github.com/buyclientuz-pixel/targetbot-sub000/pkg/utils"
)

// Route define o destino de uma mensagem
type Route string

const (
	RouteChat  Route = "chat"
	RouteAdmin Route = "admin"
	RouteBoth  Route = "both"
)

// Notifier é o contrato de envio consumido pelos casos de uso
type Notifier interface {
	Send(route Route, project *domain.Project, text string) error
}

type BotNotifier struct {
	api         *tgbotapi.BotAPI
	adminChatID int64
}

func NewNotifier(cfg *config.Config) (*BotNotifier, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao inicializar o bot do Telegram")
	}

	logrus.WithField("bot_username", api.Self.UserName).Info("Bot do Telegram autorizado")

	return &BotNotifier{
		api:         api,
		adminChatID: cfg.Telegram.AdminChatID,
	}, nil
}

func (n *BotNotifier) Send(route Route, project *domain.Project, text string) error {
	dispatchID, err := utils.GenerateID()
	if err != nil {
		dispatchID = "unknown"
	}

	chatIDs := n.resolveChatIDs(route, project)
	if len(chatIDs) == 0 {
		return errors.Errorf("nenhum chat de destino para a rota %s", route)
	}

	for _, chatID := range chatIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := n.api.Send(msg); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"dispatch_id": dispatchID,
				"chat_id":     chatID,
				"route":       route,
			}).Error("Erro ao enviar mensagem pelo Telegram")
			return errors.Wrap(err, "erro ao enviar mensagem")
		}
	}

	logrus.WithFields(logrus.Fields{
		"dispatch_id": dispatchID,
		"route":       route,
		"chats":       len(chatIDs),
	}).Debug("Mensagem enviada")

	return nil
}

func (n *BotNotifier) resolveChatIDs(route Route, project *domain.Project) []int64 {
	var chatIDs []int64

	if route == RouteChat || route == RouteBoth {
		if project != nil && project.ChatID != 0 {
			chatIDs = append(chatIDs, project.ChatID)
		}
	}

	if route == RouteAdmin || route == RouteBoth {
		if n.adminChatID != 0 {
			chatIDs = append(chatIDs, n.adminChatID)
		}
	}

	return chatIDs
}
