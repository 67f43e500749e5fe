package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	Category      string          `json:"category"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	CreatedAt     time.Time       `json:"created_at"`
}

type CreateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Category      string          `json:"category"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
}

type UpdateProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price" binding:"required"`
	Category      string          `json:"category"`
	Size          string          `json:"size"`
	Color         string          `json:"color"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
}
