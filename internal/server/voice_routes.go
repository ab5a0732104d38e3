// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/parley-dev/parley/internal/voice"
)

// voiceRequest is the request body for the speech synthesis endpoint.
type voiceRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	VoiceType string `json:"voice_type,omitempty"`
}

func (s *Server) registerVoiceRoutes() {
	s.router.Post("/api/v1/interview/voice", s.handleSpeak)
	s.router.Post("/api/v1/interview/voice/speech-to-text", s.handleTranscribe)

	// Register the operations in the OpenAPI spec manually. Synthesis
	// returns raw audio bytes and transcription consumes multipart form
	// data, so neither fits Huma's standard handler signature. The chi
	// routes above do the actual request handling; these entries keep
	// the spec complete.
	minTextLen := 1
	maxTextLen := voice.MaxTextLength
	s.api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "synthesize-speech",
		Method:      http.MethodPost,
		Path:        "/api/v1/interview/voice",
		Summary:     "Synthesize interviewer speech",
		Tags:        []string{"voice"},
		RequestBody: &huma.RequestBody{
			Required: true,
			Content: map[string]*huma.MediaType{
				"application/json": {
					Schema: &huma.Schema{
						Type:     "object",
						Required: []string{"text", "session_id"},
						Properties: map[string]*huma.Schema{
							"text": {
								Type:        "string",
								MinLength:   &minTextLen,
								MaxLength:   &maxTextLen,
								Description: "Text to synthesize",
							},
							"session_id": {
								Type:        "string",
								Description: "Interview session the audio belongs to",
							},
							"voice_type": {
								Type:        "string",
								Description: "Voice to use, defaults to the service voice",
							},
						},
					},
				},
			},
		},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "MP3 audio stream",
				Content: map[string]*huma.MediaType{
					"audio/mpeg": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
			"404": {Description: "Session not found"},
			"415": {Description: "Request body is not JSON"},
			"422": {Description: "Validation error"},
			"501": {Description: "Voice service not configured"},
		},
	})

	s.api.OpenAPI().AddOperation(&huma.Operation{
		OperationID: "transcribe-speech",
		Method:      http.MethodPost,
		Path:        "/api/v1/interview/voice/speech-to-text",
		Summary:     "Transcribe a candidate voice recording",
		Tags:        []string{"voice"},
		RequestBody: &huma.RequestBody{
			Required: true,
			Content: map[string]*huma.MediaType{
				"multipart/form-data": {
					Schema: &huma.Schema{
						Type:     "object",
						Required: []string{"audio", "session_id"},
						Properties: map[string]*huma.Schema{
							"audio": {
								Type:        "string",
								Format:      "binary",
								Description: "Audio recording, up to 10 MB",
							},
							"session_id": {
								Type:        "string",
								Description: "Interview session the recording belongs to",
							},
						},
					},
				},
			},
		},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Transcribed text",
				Content: map[string]*huma.MediaType{
					"application/json": {
						Schema: &huma.Schema{
							Type: "object",
							Properties: map[string]*huma.Schema{
								"success": {Type: "boolean"},
								"text":    {Type: "string"},
							},
						},
					},
				},
			},
			"404": {Description: "Session not found"},
			"422": {Description: "Validation error"},
			"501": {Description: "Voice service not configured"},
		},
	})
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		s.writeAPIError(w, &apiError{
			status:  http.StatusUnsupportedMediaType,
			Message: "request body must be application/json",
		})
		return
	}

	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeAPIError(w, &apiError{
			status:  http.StatusBadRequest,
			Message: "invalid request body",
		})
		return
	}

	audio, err := s.services.Voice().Speak(r.Context(), req.Text, req.VoiceType, req.SessionID)
	if err != nil {
		s.writeAPIError(w, serviceError(err))
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(audio); err != nil {
		s.log.Warn("writing audio response", "error", err)
	}
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.writeAPIError(w, &apiError{
			status:  http.StatusUnsupportedMediaType,
			Message: "request body must be multipart/form-data",
		})
		return
	}

	if err := r.ParseMultipartForm(voice.MaxAudioBytes); err != nil {
		s.writeAPIError(w, &apiError{
			status:  http.StatusBadRequest,
			Message: "invalid multipart form",
		})
		return
	}

	sessionID := r.FormValue("session_id")
	file, header, err := r.FormFile("audio")
	if err != nil {
		s.writeAPIError(w, &apiError{
			status:  http.StatusUnprocessableEntity,
			Message: "audio file is required",
		})
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, voice.MaxAudioBytes+1))
	if err != nil {
		s.writeAPIError(w, &apiError{
			status:  http.StatusBadRequest,
			Message: "reading audio upload",
		})
		return
	}

	text, err := s.services.Voice().Transcribe(r.Context(), audio, header.Filename, sessionID)
	if err != nil {
		s.writeAPIError(w, serviceError(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	resp := struct {
		Success bool   `json:"success"`
		Text    string `json:"text"`
	}{Success: true, Text: text}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.log.Warn("writing transcription response", "error", err)
	}
}

func (s *Server) writeAPIError(w http.ResponseWriter, e *apiError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.status)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		s.log.Warn("writing error response", "error", err)
	}
}
