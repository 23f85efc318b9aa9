package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/MikeMC777/ordenes-checkout/internal/httpx"
	prod "github.com/MikeMC777/ordenes-checkout/internal/product"
	"github.com/MikeMC777/ordenes-checkout/internal/validation"
)

func newRouter(repo prod.Repository, log logrus.FieldLogger) *gin.Engine {
	v := validation.New()
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(log))

	r.GET("/healthz", httpx.Healthz)
	r.GET("/products", listOnlyHandler(repo))
	r.GET("/products/search", searchHandler(repo))
	r.GET("/products/:id", getProductHandler(repo))
	r.POST("/products", createProductHandler(repo, v))
	r.PUT("/products/:id", updateProductHandler(repo, v))
	r.DELETE("/products/:id", deleteProductHandler(repo))
	r.POST("/products/lookup", lookupHandler(repo, v))
	r.PUT("/products/quantities", updateQuantitiesHandler(repo, v, log))
	return r
}

func listOnlyHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, offset := httpx.Page(c)
		items, err := repo.List(c.Request.Context(), prod.Query{Limit: limit, Offset: offset})
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Limit: limit, Offset: offset, Items: items})
	}
}

func searchHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if len([]rune(q)) < 2 {
			c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "q must have at least 2 characters"})
			return
		}
		limit, offset := httpx.Page(c)
		items, err := repo.List(c.Request.Context(), prod.Query{Q: q, Limit: limit, Offset: offset})
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Q: q, Limit: limit, Offset: offset, Items: items})
	}
}

func getProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			lookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func createProductHandler(repo prod.Repository, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.CreateProductRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		price, ok := parsePrice(c, req.Price)
		if !ok {
			return
		}
		p := &prod.Product{
			ID:          uuid.NewString(),
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Price:       price,
			Quantity:    req.Quantity,
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func updateProductHandler(repo prod.Repository, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.UpdateProductRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		cur, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			lookupError(c, err)
			return
		}
		if req.Name != "" {
			cur.Name = req.Name
		}
		if req.Description != "" {
			cur.Description = req.Description
		}
		if req.Price != "" {
			price, ok := parsePrice(c, req.Price)
			if !ok {
				return
			}
			cur.Price = price
		}
		if req.Quantity != nil {
			cur.Quantity = *req.Quantity
		}
		if err := repo.Update(c.Request.Context(), cur); err != nil {
			lookupError(c, err)
			return
		}
		c.JSON(http.StatusOK, cur)
	}
}

func deleteProductHandler(repo prod.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := repo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			internalError(c, err)
			return
		}
		if !ok {
			c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// lookupHandler answers a batched find; unknown ids are silently left out.
func lookupHandler(repo prod.Repository, v *validatorv10.Validate) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.LookupRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		items, err := repo.FindAllByID(c.Request.Context(), req.IDs)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, prod.ListResponse{Limit: len(items), Items: items})
	}
}

func updateQuantitiesHandler(repo prod.Repository, v *validatorv10.Validate, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req prod.QuantitiesRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}
		for _, u := range req.Items {
			if u.ID == "" || u.Quantity < 0 {
				c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "quantity must be non-negative"})
				return
			}
		}
		if err := repo.UpdateQuantities(c.Request.Context(), req.Items); err != nil {
			lookupError(c, err)
			return
		}
		log.WithField("products", len(req.Items)).Debug("quantities updated")
		c.Status(http.StatusNoContent)
	}
}

// priceScale matches the NUMERIC(12,2) / DECIMAL(12,2) price columns.
const priceScale = 2

func parsePrice(c *gin.Context, raw string) (decimal.Decimal, bool) {
	price, err := decimal.NewFromString(raw)
	if err != nil || price.IsNegative() || !price.Equal(price.Round(priceScale)) {
		c.JSON(http.StatusBadRequest, prod.HTTPError{Error: "price must be a non-negative decimal with at most 2 decimal places"})
		return decimal.Zero, false
	}
	return price, true
}

func lookupError(c *gin.Context, err error) {
	if errors.Is(err, prod.ErrNotFound) {
		c.JSON(http.StatusNotFound, prod.HTTPError{Error: "not found"})
		return
	}
	internalError(c, err)
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, prod.HTTPError{Error: err.Error()})
}
