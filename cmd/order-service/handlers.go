package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/ordenes-checkout/internal/httpx"
	"github.com/MikeMC777/ordenes-checkout/internal/idempotency"
	ord "github.com/MikeMC777/ordenes-checkout/internal/order"
	"github.com/MikeMC777/ordenes-checkout/internal/validation"
)

const idempotencyHeader = "Idempotency-Key"

// newRouter wires every order route. idem may be nil, in which case the
// Idempotency-Key header is ignored.
func newRouter(svc *ord.Service, idem idempotency.Store, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))

	r.GET("/healthz", httpx.Healthz)
	r.POST("/orders", createOrderHandler(svc, idem, validation.New(), log))
	r.GET("/orders/:id", getOrderHandler(svc))
	r.GET("/orders/:id/items", getOrderItemsHandler(svc))
	r.GET("/orders/customer/:customer_id", listOrdersByCustomerHandler(svc))
	return r
}

// createOrderHandler godoc
// @Summary      Create an order
// @Description  Checks the customer and product stock, stores the order and decrements stock.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string                  false  "replay key"
// @Param        body             body      order.CreateOrderRequest true   "order"
// @Success      201              {object}  order.Order
// @Failure      400              {object}  order.ErrorResponse
// @Failure      409              {object}  order.ErrorResponse
// @Failure      422              {object}  order.ErrorResponse
// @Failure      500              {object}  order.ErrorResponse
// @Router       /orders [post]
func createOrderHandler(svc *ord.Service, idem idempotency.Store, v *validatorv10.Validate, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var req ord.CreateOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if idem == nil {
			key = ""
		}
		var fp string
		if key != "" {
			var err error
			if fp, err = idempotency.Fingerprint(req); err != nil {
				c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: err.Error()})
				return
			}
			claimed, err := idem.Begin(ctx, key, fp)
			if err != nil {
				c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: "idempotency check failed"})
				return
			}
			if !claimed {
				replay(c, idem, key, fp)
				return
			}
		}

		o, err := svc.CreateOrder(ctx, req.CustomerID, req.Products)
		if se, ok := ord.IsStockUpdate(err); ok {
			// The order exists, so the key stays bound to this outcome and a
			// retry cannot create a second one.
			_ = c.Error(err)
			body, _ := json.Marshal(ord.ErrorResponse{Error: se.Error(), OrderID: se.OrderID})
			if key != "" {
				if cerr := idem.Complete(ctx, key, fp, http.StatusInternalServerError, body); cerr != nil {
					log.WithError(cerr).WithField("idempotency_key", key).Error("store failed order outcome")
				}
			}
			c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", body)
			return
		}
		if err != nil {
			if key != "" {
				if rerr := idem.Release(ctx, key); rerr != nil {
					log.WithError(rerr).WithField("idempotency_key", key).Warn("release idempotency key")
				}
			}
			if ve, ok := ord.IsValidation(err); ok {
				c.JSON(http.StatusBadRequest, ord.ErrorResponse{Error: ve.Message, Reason: ve.Reason})
				return
			}
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: err.Error()})
			return
		}

		body, err := json.Marshal(o)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: err.Error()})
			return
		}
		if key != "" {
			if err := idem.Complete(ctx, key, fp, http.StatusCreated, body); err != nil {
				log.WithError(err).WithField("idempotency_key", key).Warn("store idempotent response")
			}
		}
		c.Header("Location", fmt.Sprintf("/orders/%s", o.ID))
		c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
	}
}

func replay(c *gin.Context, idem idempotency.Store, key, fingerprint string) {
	rec, err := idem.Get(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: "idempotency check failed"})
		return
	}
	if rec != nil && rec.Fingerprint != "" && rec.Fingerprint != fingerprint {
		c.JSON(http.StatusUnprocessableEntity, ord.ErrorResponse{Error: "idempotency key was used with a different request"})
		return
	}
	if rec == nil || rec.Status != idempotency.StatusDone {
		c.JSON(http.StatusConflict, ord.ErrorResponse{Error: "request already in progress"})
		return
	}
	c.Header("Idempotent-Replayed", "true")
	c.Data(rec.ResponseCode, "application/json; charset=utf-8", []byte(rec.ResponseBody))
}

// getOrderHandler godoc
// @Summary  Get an order with its items
// @Tags     orders
// @Produce  json
// @Param    id   path      string  true  "order id"
// @Success  200  {object}  order.Order
// @Failure  404  {object}  order.ErrorResponse
// @Router   /orders/{id} [get]
func getOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.GetOrder(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeLookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// getOrderItemsHandler godoc
// @Summary  List the items of an order
// @Tags     orders
// @Produce  json
// @Param    id   path      string  true  "order id"
// @Success  200  {object}  map[string][]order.Item
// @Failure  404  {object}  order.ErrorResponse
// @Router   /orders/{id}/items [get]
func getOrderItemsHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.GetItems(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeLookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// listOrdersByCustomerHandler godoc
// @Summary  List the orders of a customer
// @Tags     orders
// @Produce  json
// @Param    customer_id  path      string  true   "customer id"
// @Param    limit        query     int     false  "page size (1..100)"
// @Param    offset       query     int     false  "offset"
// @Success  200          {object}  order.ListResponse
// @Router   /orders/customer/{customer_id} [get]
func listOrdersByCustomerHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Page(c)
		orders, err := svc.ListByCustomer(c.Request.Context(), c.Param("customer_id"), limit, offset)
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, ord.ListResponse{Limit: limit, Offset: offset, Items: orders})
	}
}

func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, ord.ErrNotFound) {
		c.JSON(http.StatusNotFound, ord.ErrorResponse{Error: "order not found"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ord.ErrorResponse{Error: err.Error()})
}
