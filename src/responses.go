package main

import (
	"log"
	"net/http"
	"ticketbari/src/controllers"
	"ticketbari/src/lib"
	"ticketbari/src/lifecycle"
	"ticketbari/src/types"

	"github.com/gin-gonic/gin"
)

// respondError writes the {"error","code"} envelope for err and counts it.
func respondError(ctx *gin.Context, op string, err error) {
	code := lifecycle.Code(err)
	status := lifecycle.HTTPStatus(err)
	lib.LifecycleErrors.WithLabelValues(op, code).Inc()
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] error: %s\n", op, err.Error())
		ctx.JSON(status, gin.H{"error": "something went wrong, try again", "code": code})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func badRequest(ctx *gin.Context, err error) {
	log.Printf("Error in validating request: %s\n", err.Error())
	ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": lifecycle.Code(lifecycle.ErrInvalidRequest)})
}

func actorFrom(ctx *gin.Context) controllers.Actor {
	role, _ := ctx.Get("role")
	r, _ := role.(types.Role)
	return controllers.Actor{
		ID:    ctx.GetUint("id"),
		Role:  r,
		Email: ctx.GetString("email"),
	}
}

// optionalActor returns nil for anonymous requests.
func optionalActor(ctx *gin.Context) *controllers.Actor {
	if _, ok := ctx.Get("id"); !ok {
		return nil
	}
	actor := actorFrom(ctx)
	return &actor
}
