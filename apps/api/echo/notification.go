package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications")
	ng.GET("", api.query)
	ng.POST("", api.create, teacherMiddleware())
	ng.PATCH("", api.markRead)
	ng.DELETE("/:id", api.destroy)
}

// Handlers

func (api *notificationApi) query(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}

	filter := notification.QueryFilter{
		RecipientID:   ctx.QueryParam("recipientId"),
		RecipientRole: ctx.QueryParam("recipientRole"),
		UnreadOnly:    queryBool(ctx, "unreadOnly"),
	}
	if actor.IsStudent() {
		filter.RecipientID = actor.ID
	}

	list, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return success(ctx, http.StatusOK, echo.Map{
		"notifications": list.Notifications,
		"unreadCount":   list.UnreadCount,
		"total":         list.Total,
	})
}

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}

	notif, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return success(ctx, http.StatusCreated, echo.Map{
		"notification": notif,
		"message":      "Notification created successfully",
	})
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	var data notification.MarkRead
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkRead")
	}
	if data.ID != "" {
		if err := api.checkRecipient(ctx, data.ID); err != nil {
			return err
		}
	}

	notif, err := api.svc.MarkRead(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return success(ctx, http.StatusOK, echo.Map{
		"notification": notif,
		"message":      "Notification updated successfully",
	})
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := api.checkRecipient(ctx, id); err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return success(ctx, http.StatusOK, nil)
}

// checkRecipient hides other people's notifications from students.
func (api *notificationApi) checkRecipient(ctx echo.Context, id string) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context actor")
	}
	if actor.IsTeacher() {
		return nil
	}

	notif, err := api.svc.GetByID(ctx.Request().Context(), core.CleanString(id))
	if err != nil {
		return errors.Wrap(err, "finding notification by ID")
	}
	if notif.RecipientID != actor.ID {
		return errHttpNotFound
	}
	return nil
}
