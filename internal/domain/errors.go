package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("registro no encontrado")
	ErrUnauthorized = errors.New("unauthorized")
)

// ProductNotFoundError nombra la referencia que falló para que el caller nunca
// reciba un error pelado sin entidad.
type ProductNotFoundError struct {
	Ref string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("producto no encontrado: %s", e.Ref)
}

func (e *ProductNotFoundError) Unwrap() error { return ErrNotFound }

type SaleNotFoundError struct {
	ID string
}

func (e *SaleNotFoundError) Error() string {
	return fmt.Sprintf("venta no encontrada: %s", e.ID)
}

func (e *SaleNotFoundError) Unwrap() error { return ErrNotFound }

// InsufficientStockError siempre lleva el nombre del producto afectado.
type InsufficientStockError struct {
	Product string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para: %s", e.Product)
}

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }
