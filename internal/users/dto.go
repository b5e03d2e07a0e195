package users

import (
	"github.com/angelmondragon/pharmacy-backend/pkg/db/models"
	"github.com/angelmondragon/pharmacy-backend/pkg/enums"
	"github.com/google/uuid"
)

// CustomerSummary is the customer block embedded in order payloads.
type CustomerSummary struct {
	ID    uuid.UUID      `json:"id"`
	Email string         `json:"email"`
	Name  string         `json:"name"`
	Role  enums.UserRole `json:"role"`
}

func NewCustomerSummary(u models.User) CustomerSummary {
	return CustomerSummary{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.FullName(),
		Role:  u.Role,
	}
}
