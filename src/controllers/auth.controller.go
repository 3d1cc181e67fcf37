package controllers

import (
	"context"
	"fmt"
	"log"
	"ticketbari/src/lifecycle"
	"ticketbari/src/models"
	"ticketbari/src/types"
	"ticketbari/src/utils"
)

// Identity is what a verified Firebase ID token tells us about the caller.
type Identity struct {
	UID           string
	Email         string
	Name          string
	EmailVerified bool
	Role          types.Role
}

// Login exchanges a verified identity for an API token, creating the user
// on first sign-in. The role claim only applies to new users.
func (c *Controller) Login(ctx context.Context, id Identity) (string, *models.User, error) {
	if id.UID == "" {
		return "", nil, fmt.Errorf("identity has no uid: %w", lifecycle.ErrUnauthenticated)
	}
	role := id.Role
	if !role.Valid() {
		role = types.ROLE_CUSTOMER
	}
	user := &models.User{
		UID:           id.UID,
		Email:         id.Email,
		Name:          id.Name,
		EmailVerified: id.EmailVerified,
		Role:          role,
	}
	if err := c.Store.UpsertUser(ctx, user); err != nil {
		return "", nil, err
	}
	token, err := utils.GenerateJWT(user)
	if err != nil {
		log.Printf("Error signing token for user %d: %s\n", user.ID, err.Error())
		return "", nil, err
	}
	return token, user, nil
}
