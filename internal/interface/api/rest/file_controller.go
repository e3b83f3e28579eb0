package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"file-vault-api/internal/application/ports"
	"file-vault-api/internal/application/services"
	"file-vault-api/internal/domain/file"
	"file-vault-api/internal/infrastructure/jwt"
	dto "file-vault-api/internal/interface/api/rest/dto/file"
	"file-vault-api/internal/interface/api/rest/middleware"
	"file-vault-api/internal/interface/api/rest/validator"
)

type FileController struct {
	fileService ports.FileService
	logger      *zap.Logger
}

func NewFileController(
	r *gin.Engine,
	fileService ports.FileService,
	logger *zap.Logger,
	jwtService *jwt.Service,
) *FileController {
	fc := &FileController{
		fileService: fileService,
		logger:      logger,
	}

	auth := middleware.AuthMiddleware(jwtService)

	r.GET(RouteFiles, auth, fc.ListFilesHandler)
	r.POST(RouteFiles, auth, fc.UploadFileHandler)
	r.GET(RouteFile, auth, fc.GetFileHandler)
	r.GET(RouteFileShares, auth, fc.ListSharesHandler)
	r.PUT(RouteFileShare, auth, fc.ShareFileHandler)
	r.DELETE(RouteFileShare, auth, fc.UnshareFileHandler)

	return fc
}

func identityFromCtx(c *gin.Context) (ports.Identity, bool) {
	userID, err := uuid.Parse(c.GetString(middleware.CtxUserID))
	if err != nil {
		return ports.Identity{}, false
	}

	ident := ports.Identity{UserID: userID}
	if orgStr := c.GetString(middleware.CtxUserOrg); orgStr != "" {
		if orgID, err := uuid.Parse(orgStr); err == nil {
			ident.OrganizationID = &orgID
		}
	}

	return ident, true
}

func (fc *FileController) UploadFileHandler(c *gin.Context) {
	ident, ok := identityFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is not readable"})
		return
	}
	defer f.Close()

	rec, err := fc.fileService.IngestFile(c.Request.Context(), ident, ports.Upload{
		FileName: fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Body:     f,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingFileName):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrFileInfected):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to ingest file"})
			fc.logger.Error("IngestFile() error", zap.Error(err))
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToResponseFileRecord(*rec))
}

func (fc *FileController) ListFilesHandler(c *gin.Context) {
	ident, ok := identityFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	files, err := fc.fileService.FindVisibleFiles(c.Request.Context(), ident)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get files"})
		fc.logger.Error("FindVisibleFiles() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, dto.ResponseData{
		Data: dto.ToResponseFileRecords(files),
	})
}

func (fc *FileController) GetFileHandler(c *gin.Context) {
	ident, ok := identityFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	rec, err := fc.fileService.FindFileByID(c.Request.Context(), ident, fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get file"})
		fc.logger.Error("FindFileByID() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, dto.ToResponseFileRecord(*rec))
}

func (fc *FileController) ShareFileHandler(c *gin.Context) {
	fc.mutateShare(c, fc.fileService.ShareFile, "ShareFile", "failed to share file")
}

func (fc *FileController) UnshareFileHandler(c *gin.Context) {
	fc.mutateShare(c, fc.fileService.UnshareFile, "UnshareFile", "failed to unshare file")
}

func (fc *FileController) mutateShare(
	c *gin.Context,
	op func(ctx context.Context, requester ports.Identity, fileID file.ID, userID uuid.UUID) error,
	name, failMsg string,
) {
	ident, ok := identityFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}
	ok, userID := validator.IsUUID(c.Param("user_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}

	if err := op(c.Request.Context(), ident, fileID, userID); err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": failMsg})
		fc.logger.Error(name+"() error", zap.Error(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (fc *FileController) ListSharesHandler(c *gin.Context) {
	ident, ok := identityFromCtx(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	ok, fileID := validator.IsUUID(c.Param("file_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_id must be a valid UUID"})
		return
	}

	grants, err := fc.fileService.FindFileGrants(c.Request.Context(), ident, fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get shares"})
		fc.logger.Error("FindFileGrants() error", zap.Error(err))
		return
	}

	c.JSON(http.StatusOK, dto.GrantsResponseData{
		Data: dto.ToResponseGrants(grants),
	})
}
