package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/arbor/internal/http/response"
	"github.com/yungbote/arbor/internal/platform/ctxutil"
	"github.com/yungbote/arbor/internal/platform/logger"
	"github.com/yungbote/arbor/internal/services"
)

const maxSubtreeDepth = 32

type FolderHandler struct {
	log           *logger.Logger
	folderService services.FolderService
}

func NewFolderHandler(log *logger.Logger, folderService services.FolderService) *FolderHandler {
	return &FolderHandler{
		log:           log.With("handler", "FolderHandler"),
		folderService: folderService,
	}
}

type createFolderRequest struct {
	Name     string         `json:"name" binding:"required"`
	ParentID *uuid.UUID     `json:"parent_id"`
	Metadata datatypes.JSON `json:"metadata"`
}

type moveFolderRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// POST /api/folders
func (h *FolderHandler) CreateFolder(c *gin.Context) {
	var req createFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	in := services.CreateFolderInput{
		Name:     req.Name,
		ParentID: req.ParentID,
		Metadata: req.Metadata,
	}
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
		owner := rd.UserID
		in.OwnerID = &owner
	}

	folder, err := h.folderService.Create(c.Request.Context(), in)
	if err != nil {
		h.respondServiceError(c, "CreateFolder", err)
		return
	}
	response.RespondCreated(c, gin.H{"folder": folder})
}

// GET /api/folders/roots
func (h *FolderHandler) ListRoots(c *gin.Context) {
	var ownerID *uuid.UUID
	if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
		owner := rd.UserID
		ownerID = &owner
	}
	roots, err := h.folderService.Roots(c.Request.Context(), ownerID)
	if err != nil {
		h.respondServiceError(c, "ListRoots", err)
		return
	}
	response.RespondOK(c, gin.H{"folders": roots})
}

// GET /api/folders/:id
func (h *FolderHandler) GetFolder(c *gin.Context) {
	id, ok := h.folderID(c)
	if !ok {
		return
	}
	folder, err := h.folderService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "GetFolder", err)
		return
	}
	response.RespondOK(c, gin.H{"folder": folder})
}

// GET /api/folders/:id/children
func (h *FolderHandler) ListChildren(c *gin.Context) {
	id, ok := h.folderID(c)
	if !ok {
		return
	}
	children, err := h.folderService.Children(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "ListChildren", err)
		return
	}
	response.RespondOK(c, gin.H{"folders": children})
}

// GET /api/folders/:id/ancestors
func (h *FolderHandler) ListAncestors(c *gin.Context) {
	id, ok := h.folderID(c)
	if !ok {
		return
	}
	chain, err := h.folderService.Ancestors(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "ListAncestors", err)
		return
	}
	response.RespondOK(c, gin.H{"folders": chain})
}

// GET /api/folders/:id/subtree?depth=N
func (h *FolderHandler) GetSubtree(c *gin.Context) {
	id, ok := h.folderID(c)
	if !ok {
		return
	}
	depth := maxSubtreeDepth
	if raw := strings.TrimSpace(c.Query("depth")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.RespondError(c, http.StatusBadRequest, "invalid_depth", err)
			return
		}
		if n < depth {
			depth = n
		}
	}
	node, err := h.folderService.Subtree(c.Request.Context(), id, depth)
	if err != nil {
		h.respondServiceError(c, "GetSubtree", err)
		return
	}
	response.RespondOK(c, gin.H{"subtree": node})
}

// POST /api/folders/:id/move
func (h *FolderHandler) MoveFolder(c *gin.Context) {
	id, ok := h.folderID(c)
	if !ok {
		return
	}
	var req moveFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	folder, err := h.folderService.Move(c.Request.Context(), id, req.ParentID)
	if err != nil {
		h.respondServiceError(c, "MoveFolder", err)
		return
	}
	response.RespondOK(c, gin.H{"folder": folder})
}

// DELETE /api/folders/:id
func (h *FolderHandler) DeleteFolder(c *gin.Context) {
	id, ok := h.folderID(c)
	if !ok {
		return
	}
	n, err := h.folderService.Delete(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, "DeleteFolder", err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": n})
}

func (h *FolderHandler) folderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_folder_id", err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *FolderHandler) respondServiceError(c *gin.Context, op string, err error) {
	status, code := response.MapStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error(op+" failed", "error", err)
	}
	response.RespondError(c, status, code, err)
}
