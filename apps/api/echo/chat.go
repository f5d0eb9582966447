package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/chat"
)

var errInvalidChatType = core.NewValidationError(
	errors.New("invalid type parameter"),
	core.FieldError{Field: "type", Error: "type must be one of: conversations, messages, users"},
)

type chatApi struct {
	svc *chat.Service
}

func registerChatAPI(g *echo.Group, svc *chat.Service) {
	api := chatApi{svc: svc}

	cg := g.Group("/chat")
	cg.GET("", api.query)
	cg.POST("", api.send)
	cg.POST("/read", api.markRead)
}

type MarkConversationReadRequest struct {
	ConversationID string `json:"conversationId" validate:"required"`
}

// Handlers

// query serves ?type=conversations|messages|users for the authenticated user.
func (api *chatApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	reqCtx := ctx.Request().Context()

	switch ctx.QueryParam("type") {
	case "conversations":
		convs, err := api.svc.ListConversations(reqCtx, actor.ID)
		if err != nil {
			return errors.Wrap(err, "listing conversations")
		}
		return success(ctx, http.StatusOK, echo.Map{"conversations": convs})
	case "messages":
		msgs, err := api.svc.ListMessages(reqCtx, ctx.QueryParam("conversationId"), actor.ID)
		if err != nil {
			return errors.Wrap(err, "listing messages")
		}
		return success(ctx, http.StatusOK, echo.Map{"messages": msgs})
	case "users":
		contacts, err := api.svc.SearchContacts(reqCtx, ctx.QueryParam("search"), actor.ID)
		if err != nil {
			return errors.Wrap(err, "searching contacts")
		}
		return success(ctx, http.StatusOK, echo.Map{"users": contacts})
	default:
		return errInvalidChatType
	}
}

func (api *chatApi) send(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data chat.SendMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendMessage")
	}
	data.SenderID = actor.ID

	msg, conv, err := api.svc.Send(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "sending message")
	}
	return success(ctx, http.StatusCreated, echo.Map{"message": msg, "conversation": conv})
}

func (api *chatApi) markRead(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	var data MarkConversationReadRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkConversationReadRequest")
	}
	data.ConversationID = core.CleanString(data.ConversationID)
	if err := core.Validate.Struct(data); err != nil {
		return err
	}

	conv, err := api.svc.MarkRead(ctx.Request().Context(), data.ConversationID, actor.ID)
	if err != nil {
		return errors.Wrap(err, "marking conversation read")
	}
	return success(ctx, http.StatusOK, echo.Map{"conversation": conv})
}
