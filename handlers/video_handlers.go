package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"reelforge/api-gateway/config"
	"reelforge/api-gateway/models"
	"reelforge/api-gateway/utils"
)

// ErrRecordNotFound is returned when a database record is not found.
var ErrRecordNotFound = errors.New("record not found")

const videosBucket = "videos"

// ListVideos returns the caller's video library, newest first.
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	userID := authedUser(c)
	h.Logger.Infof("Received request to list videos for user %s", userID)

	var videos []models.Video
	body, _, err := h.DB.From("videos").
		Select("*", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error fetching videos for user %s: %v", userID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not retrieve videos: %v", err))
	}

	if err := json.Unmarshal(body, &videos); err != nil {
		h.Logger.Errorf("Error unmarshalling videos for user %s: %v", userID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not process videos data")
	}

	if videos == nil {
		// Return an empty list instead of null, which is friendlier for list consumers.
		videos = []models.Video{}
	}

	h.Logger.Infof("Successfully fetched %d videos for user %s", len(videos), userID)
	return utils.RespondWithJSON(c, fiber.StatusOK, videos)
}

// GetVideo returns a single library video. When the video lives in Supabase
// storage rather than behind a public URL, a signed playback URL is attached.
func (h *ApplicationHandler) GetVideo(c *fiber.Ctx) error {
	userID := authedUser(c)

	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video ID format")
	}

	video, err := h.getVideoByIDAndUser(videoID, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, "Video not found")
		}
		h.Logger.Errorf("Error fetching video %s: %v", videoID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Failed to retrieve video")
	}

	playbackURL := video.URL
	if video.StoragePath != nil && *video.StoragePath != "" {
		signed, err := h.DB.Storage.CreateSignedUrl(videosBucket, *video.StoragePath, 3600)
		if err != nil {
			h.Logger.Warnf("Could not sign playback URL for video %s: %v", videoID, err)
		} else {
			playbackURL = absoluteStorageURL(signed.SignedURL)
		}
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"video":        video,
		"playback_url": playbackURL,
	})
}

// DeleteVideo removes a library video row. The storage object is cleaned up
// by a backend retention job, not here.
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	userID := authedUser(c)

	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video ID format")
	}

	_, _, err = h.DB.From("videos").
		Delete("", "").
		Eq("id", videoID.String()).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		h.Logger.Errorf("Error deleting video %s for user %s: %v", videoID, userID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Could not delete video: %v", err))
	}

	h.Logger.Infof("Delete request for video %s processed", videoID)
	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

// getVideoByIDAndUser fetches one video scoped to its owner.
func (h *ApplicationHandler) getVideoByIDAndUser(videoID, userID uuid.UUID) (*models.Video, error) {
	var video models.Video
	_, err := h.DB.From("videos").
		Select("*", "exact", false).
		Eq("id", videoID.String()).
		Eq("user_id", userID.String()).
		Single().
		ExecuteTo(&video)
	if err != nil {
		return nil, ErrRecordNotFound
	}
	return &video, nil
}

// absoluteStorageURL makes a storage URL absolute; Supabase sometimes
// returns paths relative to the project URL.
func absoluteStorageURL(u string) string {
	if strings.HasPrefix(u, "http") {
		return u
	}
	base := config.GetSupabaseURL()
	if strings.HasPrefix(u, "/") {
		return base + u
	}
	return base + "/" + u
}
