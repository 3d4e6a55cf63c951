package service

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/local_market/internal/models"
)

// Caller is the authenticated identity resolved from the bearer token.
type Caller struct {
	ID   uuid.UUID
	Role models.Role
}

func (c Caller) IsCustomer() bool  { return c.Role == models.RoleCustomer }
func (c Caller) IsShopOwner() bool { return c.Role == models.RoleShopOwner }
