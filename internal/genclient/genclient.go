// Package genclient is the HTTP adapter for the generation backend: script
// enhancement, text-to-speech, clip selection and final video assembly.
// Handlers and the pipeline runner depend on small interfaces they declare
// themselves; this package provides the concrete client.
package genclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"reelforge/api-gateway/models"
	"reelforge/api-gateway/wizard"
)

// defaultEmotion and defaultPauseAfter are applied to script segments that
// the enhancement step left without explicit delivery hints.
const (
	defaultEmotion    = "neutral"
	defaultPauseAfter = 0.5
)

type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Logger
}

// New creates a client for the generation backend at baseURL.
func New(baseURL string, log *logrus.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

// --- wire types (field names match the backend contract) ---

type enhanceRequest struct {
	Script   string `json:"script"`
	Category string `json:"category"`
}

type wireSegment struct {
	Texto    string  `json:"texto"`
	Duracion float64 `json:"duracion"`
	Tipo     string  `json:"tipo"`
}

type enhanceResponse struct {
	ScriptMejorado   string        `json:"script_mejorado"`
	DuracionEstimada float64       `json:"duracion_estimada"`
	Segmentos        []wireSegment `json:"segmentos"`
	PalabrasClave    []string      `json:"palabras_clave"`
	Tono             string        `json:"tono"`
	MejorasAplicadas []string      `json:"mejoras_aplicadas"`
}

type audioWireSegment struct {
	Texto      string  `json:"texto"`
	Tipo       string  `json:"tipo"`
	Emocion    string  `json:"emocion"`
	PausaAfter float64 `json:"pausa_despues"`
	Velocidad  float64 `json:"velocidad"`
}

type audioRequestBody struct {
	Script         string `json:"script"`
	VoiceID        string `json:"voice_id"`
	VideoID        string `json:"video_id"`
	EnhancedScript struct {
		Segmentos []audioWireSegment `json:"segmentos"`
	} `json:"enhanced_script"`
}

type audioResponseSegment struct {
	Text     string  `json:"text"`
	Kind     string  `json:"kind"`
	Emotion  string  `json:"emotion"`
	Duration float64 `json:"duration"`
	Speed    float64 `json:"speed"`
}

type audioResponse struct {
	AudioBase64 string                 `json:"audio_base64"`
	Filename    string                 `json:"filename"`
	Duration    float64                `json:"duration"`
	VoiceID     string                 `json:"voice_id"`
	Segments    []audioResponseSegment `json:"segments"`
}

type clipsRequestBody struct {
	EnhancedScript struct {
		Script    string        `json:"script"`
		Segmentos []wireSegment `json:"segmentos"`
	} `json:"enhanced_script"`
	Categoria        string  `json:"categoria"`
	AudioDuration    float64 `json:"audio_duration"`
	TargetClipsCount int     `json:"target_clips_count"`
}

type clipsResponse struct {
	Success               bool               `json:"success"`
	SelectedClips         []models.ClipMatch `json:"selected_clips"`
	TotalClipsDuration    float64            `json:"total_clips_duration"`
	DurationCompatibility float64            `json:"duration_compatibility"`
	VisualCoherenceScore  float64            `json:"visual_coherence_score"`
	EstimatedEngagement   float64            `json:"estimated_engagement"`
	Warnings              []string           `json:"warnings"`
}

type assembleRequestBody struct {
	ScriptMetadata models.Draft `json:"script_metadata"`
	UserID         string       `json:"user_id"`
	Title          string       `json:"title"`
}

type assembleResponse struct {
	URL      string               `json:"url"`
	Duration float64              `json:"duration"`
	Metadata models.VideoMetadata `json:"metadata"`
}

// --- request inputs ---

// AudioRequest carries everything the TTS call needs.
type AudioRequest struct {
	Script   string
	VoiceID  string
	VideoID  string
	Speed    float64
	Segments []models.ScriptSegment
}

// ClipRequest carries everything the clip-selection call needs. AudioDuration
// must be the synthesized narration's actual duration.
type ClipRequest struct {
	Enhancement      models.Enhancement
	Category         string
	AudioDuration    float64
	TargetClipsCount int
}

// AssembleRequest carries the full draft for final assembly.
type AssembleRequest struct {
	Draft  models.Draft
	UserID string
	Title  string
}

// EnhanceScript asks the backend to restructure the raw script. Enhancement
// is an optional AI step: if the backend is unreachable or answers with an
// error, the user is not blocked — the raw script is promoted to a
// single-segment enhancement tagged as a fallback, and no error is returned.
// Context cancellation is the exception: a cancelled session propagates.
func (c *Client) EnhanceScript(ctx context.Context, script, category string) (models.Enhancement, error) {
	var resp enhanceResponse
	err := c.post(ctx, "/script/enhance", enhanceRequest{Script: script, Category: category}, &resp)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return models.Enhancement{}, err
		}
		c.log.WithField("error", err.Error()).Warn("Script enhancement unavailable, using original script")
		return fallbackEnhancement(script), nil
	}

	segments := make([]models.ScriptSegment, 0, len(resp.Segmentos))
	for _, seg := range resp.Segmentos {
		segments = append(segments, models.ScriptSegment{
			Text:            seg.Texto,
			DurationSeconds: seg.Duracion,
			Kind:            seg.Tipo,
		})
	}

	return models.Enhancement{
		Script:            resp.ScriptMejorado,
		EstimatedDuration: resp.DuracionEstimada,
		Segments:          segments,
		Keywords:          resp.PalabrasClave,
		Tone:              resp.Tono,
		Improvements:      resp.MejorasAplicadas,
		Source:            models.EnhancementSourceAI,
	}, nil
}

// fallbackEnhancement promotes the raw script to a minimal one-segment
// enhancement so the wizard can proceed without the AI step.
func fallbackEnhancement(script string) models.Enhancement {
	estimated := wizard.EstimateDuration(script, 1.0)
	return models.Enhancement{
		Script:            script,
		EstimatedDuration: estimated,
		Segments: []models.ScriptSegment{
			{Text: script, DurationSeconds: estimated, Kind: "content"},
		},
		Improvements: []string{models.FallbackImprovementNote},
		Source:       models.EnhancementSourceFallback,
	}
}

// GenerateAudio synthesizes narration for the enhanced script. Unlike
// enhancement there is no offline substitute for real narration, so failures
// are returned to the caller.
func (c *Client) GenerateAudio(ctx context.Context, req AudioRequest) (*models.AudioTrack, error) {
	body := audioRequestBody{
		Script:  req.Script,
		VoiceID: req.VoiceID,
		VideoID: req.VideoID,
	}
	for _, seg := range req.Segments {
		body.EnhancedScript.Segmentos = append(body.EnhancedScript.Segmentos, audioWireSegment{
			Texto:      seg.Text,
			Tipo:       seg.Kind,
			Emocion:    defaultEmotion,
			PausaAfter: defaultPauseAfter,
			Velocidad:  req.Speed,
		})
	}

	var resp audioResponse
	if err := c.post(ctx, "/audio/generate", body, &resp); err != nil {
		return nil, fmt.Errorf("audio generation failed: %w", err)
	}

	track := &models.AudioTrack{
		Base64Payload:   resp.AudioBase64,
		Filename:        resp.Filename,
		DurationSeconds: resp.Duration,
		VoiceID:         resp.VoiceID,
	}
	for _, seg := range resp.Segments {
		track.Segments = append(track.Segments, models.AudioSegment{
			Text:            seg.Text,
			Kind:            seg.Kind,
			Emotion:         seg.Emotion,
			DurationSeconds: seg.Duration,
			Speed:           seg.Speed,
		})
	}
	return track, nil
}

// SelectClips asks the backend to pick stock clips time-aligned to the real
// narration duration. Warnings in the response are informational and do not
// fail the call.
func (c *Client) SelectClips(ctx context.Context, req ClipRequest) (*models.ClipSelection, error) {
	body := clipsRequestBody{
		Categoria:        req.Category,
		AudioDuration:    req.AudioDuration,
		TargetClipsCount: req.TargetClipsCount,
	}
	body.EnhancedScript.Script = req.Enhancement.Script
	for _, seg := range req.Enhancement.Segments {
		body.EnhancedScript.Segmentos = append(body.EnhancedScript.Segmentos, wireSegment{
			Texto:    seg.Text,
			Duracion: seg.DurationSeconds,
			Tipo:     seg.Kind,
		})
	}

	var resp clipsResponse
	if err := c.post(ctx, "/clips/select", body, &resp); err != nil {
		return nil, fmt.Errorf("clip selection failed: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("clip selection failed: backend reported success=false")
	}

	return &models.ClipSelection{
		SelectedClips:         resp.SelectedClips,
		TotalDuration:         resp.TotalClipsDuration,
		EstimatedEngagement:   resp.EstimatedEngagement,
		VisualCoherence:       resp.VisualCoherenceScore,
		DurationCompatibility: resp.DurationCompatibility,
		Warnings:              resp.Warnings,
	}, nil
}

// AssembleVideo hands the whole draft to the backend for final rendering.
func (c *Client) AssembleVideo(ctx context.Context, req AssembleRequest) (*models.VideoResult, error) {
	body := assembleRequestBody{
		ScriptMetadata: req.Draft,
		UserID:         req.UserID,
		Title:          req.Title,
	}

	var resp assembleResponse
	if err := c.post(ctx, "/video/generate", body, &resp); err != nil {
		return nil, fmt.Errorf("video assembly failed: %w", err)
	}

	return &models.VideoResult{
		URL:             resp.URL,
		DurationSeconds: resp.Duration,
		Metadata:        resp.Metadata,
	}, nil
}

// post issues a JSON POST to the backend and decodes the response into out.
func (c *Client) post(ctx context.Context, path string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend returned %d for %s: %s", resp.StatusCode, path, string(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
