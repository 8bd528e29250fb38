package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"youtube-learner/dto"
	"youtube-learner/pkg/youtube"
	"youtube-learner/service"
)

type VideoHandler struct {
	videos service.VideoService
}

func NewVideoHandler(videos service.VideoService) *VideoHandler {
	return &VideoHandler{videos: videos}
}

func (h *VideoHandler) Submit(c *gin.Context) {
	var req dto.SubmitVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "url is required"})
		return
	}

	video, err := h.videos.Submit(c.Request.Context(), currentUserId(c), req.Url)
	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid YouTube URL. Please try again.", Kind: "invalid-url"})
		case errors.Is(err, service.ErrSubmissionInFlight):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "A submission is already in progress.", Kind: "submission-in-flight"})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "There was an error saving your video. Please try again."})
		}
		return
	}
	c.JSON(http.StatusCreated, video)
}

func (h *VideoHandler) List(c *gin.Context) {
	videos, err := h.videos.List(c.Request.Context(), currentUserId(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to list videos"})
		return
	}
	c.JSON(http.StatusOK, videos)
}

func (h *VideoHandler) Get(c *gin.Context) {
	video, err := h.videos.Get(c.Request.Context(), currentUserId(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "video not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to load video"})
		return
	}
	c.JSON(http.StatusOK, video)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	if err := h.videos.Delete(c.Request.Context(), currentUserId(c), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "There was an error deleting the video. Please try again."})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *VideoHandler) Retry(c *gin.Context) {
	err := h.videos.Retry(c.Request.Context(), currentUserId(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "video not found"})
		case errors.Is(err, service.ErrNotRetryable):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Only failed videos can be retried.", Kind: "not-retryable"})
		default:
			c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to retry generation"})
		}
		return
	}
	c.Status(http.StatusAccepted)
}
