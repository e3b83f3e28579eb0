package rest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
)

type (
	HookController struct {
		cleanupService ports.CleanupService
		logger         *zap.Logger
	}
	expiryHookRequest struct {
		Token string `json:"token"`
	}
)

func NewHookController(
	r *gin.Engine,
	cleanupService ports.CleanupService,
	logger *zap.Logger,
) *HookController {
	hc := &HookController{
		cleanupService: cleanupService,
		logger:         logger,
	}

	r.POST(RouteExpiryHook, hc.ExpiryHookHandler)

	return hc
}

// ExpiryHookHandler always answers a neutral ok, whatever happened: a wrong
// token must be indistinguishable from a successful run, and scheduling
// internals never leak to the caller.
func (hc *HookController) ExpiryHookHandler(c *gin.Context) {
	respond := func() { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }

	var req expiryHookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond()
		return
	}

	ok, err := hc.cleanupService.VerifyToken(c.Request.Context(), req.Token)
	if err != nil {
		hc.logger.Error("VerifyToken() error", zap.Error(err))
		respond()
		return
	}
	if !ok {
		respond()
		return
	}

	if err = hc.cleanupService.Run(c.Request.Context(), time.Now().UTC()); err != nil {
		hc.logger.Error("expiry run error", zap.Error(err))
	}

	respond()
}
