package endpoints

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/lineup/internal/db"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/lineup/internal/http/api/admin/control/utils"
	"github.com/Nixie-Tech-LLC/lineup/internal/model"
	"github.com/Nixie-Tech-LLC/lineup/internal/slug"
	"github.com/Nixie-Tech-LLC/lineup/internal/storage"
)

type TvController struct {
	store   db.Store
	storage storage.Storage
}

func newTvController(store db.Store, storageSystem storage.Storage) *TvController {
	return &TvController{store: store, storage: storageSystem}
}

// TVModule mounts all authenticated /tvs endpoints.
func TVModule(store db.Store, storageSystem storage.Storage) api.Module {
	ctl := newTvController(store, storageSystem)
	return api.ModuleFunc(func(c *api.Controller) {
		// CRUD
		c.GET("/tvs", ctl.listTVs)
		c.POST("/tvs", ctl.createTV)
		c.GET("/tvs/slug-available", ctl.slugAvailable)
		c.GET("/tvs/:id", ctl.getTV)
		c.PUT("/tvs/:id", ctl.updateTV)
		c.DELETE("/tvs/:id", ctl.deleteTV)

		// override image
		c.PUT("/tvs/:id/image", ctl.setImage)
		c.DELETE("/tvs/:id/image", ctl.clearImage)
		c.POST("/tvs/:id/image/upload", ctl.uploadImage)
	})
}

// GET /api/admin/tvs
func (t *TvController) listTVs(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	all := t.store.ListTVs(ctx.Request.Context())

	out := make([]packets.TVResponse, 0, len(all))
	for _, tv := range all {
		out = append(out, packets.NewTVResponse(tv))
	}
	return out, nil
}

// POST /api/admin/tvs
func (t *TvController) createTV(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	var request packets.CreateTVRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	tv, err := t.store.AddTV(ctx.Request.Context(), model.TV{
		Name:        request.Name,
		Slug:        request.Slug,
		Orientation: model.Orientation(request.Orientation),
	})
	if err != nil {
		return nil, utils.StoreError(err, "could not create tv")
	}

	return packets.NewTVResponse(*tv), nil
}

// GET /api/admin/tvs/:id
func (t *TvController) getTV(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	tv, err := t.store.GetTV(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "tv not found"}
	}
	return packets.NewTVResponse(*tv), nil
}

// PUT /api/admin/tvs/:id
func (t *TvController) updateTV(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	var request packets.UpdateTVRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	patch := model.TVPatch{Name: request.Name, Slug: request.Slug}
	if request.Orientation != nil {
		o := model.Orientation(*request.Orientation)
		patch.Orientation = &o
	}

	tv, err := t.store.UpdateTV(ctx.Request.Context(), ctx.Param("id"), patch)
	if err != nil {
		return nil, utils.StoreError(err, "could not update tv")
	}
	if tv == nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "tv not found"}
	}

	log.Info().Str("tv_id", tv.ID).Str("username", user.Username).Msg("tv updated")
	return packets.NewTVResponse(*tv), nil
}

// DELETE /api/admin/tvs/:id
func (t *TvController) deleteTV(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	id := ctx.Param("id")
	if _, err := t.store.GetTV(ctx.Request.Context(), id); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "tv not found"}
	}

	if err := t.store.DeleteTV(ctx.Request.Context(), id); err != nil {
		return nil, utils.StoreError(err, "could not delete tv")
	}
	return gin.H{"deleted": id}, nil
}

// GET /api/admin/tvs/slug-available?slug=&exclude_id=
func (t *TvController) slugAvailable(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	value := ctx.Query("slug")
	if value == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "slug is required"}
	}

	valid := slug.Valid(value)
	return packets.SlugAvailabilityResponse{
		Slug:      value,
		Valid:     valid,
		Available: valid && t.store.IsSlugUnique(ctx.Request.Context(), value, ctx.Query("exclude_id")),
	}, nil
}

func (t *TvController) applyImage(ctx *gin.Context, image string) (any, *api.APIError) {
	tv, err := t.store.SetActiveImage(ctx.Request.Context(), ctx.Param("id"), image)
	if err != nil {
		return nil, utils.StoreError(err, "could not update image")
	}
	if tv == nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "tv not found"}
	}
	return packets.NewTVResponse(*tv), nil
}

// PUT /api/admin/tvs/:id/image
func (t *TvController) setImage(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	var request packets.SetImageRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	image := strings.TrimSpace(request.Image)
	if !strings.HasPrefix(image, "data:image/") && !strings.HasPrefix(image, "http://") &&
		!strings.HasPrefix(image, "https://") && !strings.HasPrefix(image, "/uploads/") {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "image must be an image data URL or URL"}
	}
	return t.applyImage(ctx, image)
}

// DELETE /api/admin/tvs/:id/image
func (t *TvController) clearImage(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	return t.applyImage(ctx, "")
}

// POST /api/admin/tvs/:id/image/upload (multipart field "image")
func (t *TvController) uploadImage(ctx *gin.Context, user *model.Session) (any, *api.APIError) {
	if _, err := t.store.GetTV(ctx.Request.Context(), ctx.Param("id")); err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "tv not found"}
	}

	fileHeader, err := ctx.FormFile("image")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "missing image file"}
	}

	url, err := t.storage.SaveImage(ctx.Request.Context(), fileHeader)
	if errors.Is(err, storage.ErrUnsupportedType) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err != nil {
		log.Error().Err(err).Str("tv_id", ctx.Param("id")).Msg("image upload failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store image"}
	}

	return t.applyImage(ctx, url)
}
