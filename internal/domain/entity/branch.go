package entity

import "time"

// Branch representa una sucursal con inventario propio (frontera principal de tenencia).
type Branch struct {
	ID        string
	Code      string
	Name      string
	Active    bool
	CreatedAt time.Time
}
