package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/GoArmGo/ArtJam/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ usecase.SubmissionUseCase   = (*stubSubmissionUseCase)(nil)
	_ usecase.ArtworkQueryUseCase = (*stubQueryUseCase)(nil)
	_ usecase.UploadSlotIssuer    = (*stubSlotIssuer)(nil)
)

type stubSubmissionUseCase struct {
	submitResult *usecase.SubmissionResult
	submitErr    error
	gotRequest   *usecase.SubmissionRequest

	resolveTagFn      func(name string) (*domain.Tag, error)
	linkTagErr        error
	linkCharactersErr error
}

func (s *stubSubmissionUseCase) Submit(ctx context.Context, req usecase.SubmissionRequest) (*usecase.SubmissionResult, error) {
	s.gotRequest = &req
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.submitResult, nil
}

func (s *stubSubmissionUseCase) ResolveTag(ctx context.Context, name string) (*domain.Tag, error) {
	if s.resolveTagFn != nil {
		return s.resolveTagFn(name)
	}
	return &domain.Tag{ID: uuid.New(), Name: name}, nil
}

func (s *stubSubmissionUseCase) LinkTag(ctx context.Context, artworkID, tagID uuid.UUID) error {
	return s.linkTagErr
}

func (s *stubSubmissionUseCase) LinkCharacters(ctx context.Context, artworkID uuid.UUID, characterIDs []uuid.UUID) error {
	return s.linkCharactersErr
}

type stubQueryUseCase struct {
	view    *domain.ArtworkView
	viewErr error
}

func (s *stubQueryUseCase) GetArtworkView(ctx context.Context, id uuid.UUID) (*domain.ArtworkView, error) {
	if s.viewErr != nil {
		return nil, s.viewErr
	}
	return s.view, nil
}

func (s *stubQueryUseCase) ListAllArtworks(ctx context.Context, page, perPage int) ([]domain.Artwork, error) {
	return nil, nil
}

func (s *stubQueryUseCase) ListArtworksByParty(ctx context.Context, partyID uuid.UUID, page, perPage int) ([]domain.Artwork, error) {
	return nil, nil
}

func (s *stubQueryUseCase) GetArtworkTags(ctx context.Context, artworkID uuid.UUID) ([]domain.Tag, error) {
	return nil, nil
}

func (s *stubQueryUseCase) GetArtworkCharacters(ctx context.Context, artworkID uuid.UUID) ([]domain.Character, error) {
	return nil, nil
}

func (s *stubQueryUseCase) GetLikeCount(ctx context.Context, artworkID uuid.UUID) (int, error) {
	return 0, nil
}

type stubSlotIssuer struct {
	slot    *domain.UploadSlot
	slotErr error
}

func (s *stubSlotIssuer) RequestUploadSlot(ctx context.Context, fileName, contentType string) (*domain.UploadSlot, error) {
	if s.slotErr != nil {
		return nil, s.slotErr
	}
	return s.slot, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter собирает роутер с теми же маршрутами, что и сервер
func newTestRouter(h *ArtworkHandler) chi.Router {
	logger := discardLogger()
	r := chi.NewRouter()
	r.Get("/artwork/{id}", h.GetArtworkDetails)
	r.Get("/tags/{name}", h.ResolveTag)
	r.Get("/likes", h.GetLikes)
	r.Group(func(r chi.Router) {
		r.Use(Authenticate(logger))
		r.Post("/artwork", h.SubmitArtwork)
		r.Post("/tags/artworkTags", h.LinkTag)
		r.Get("/upload/generate-upload-url", h.GenerateUploadURL)
	})
	return r
}

// multipartBody собирает multipart-форму публикации для тестов
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, fileName := range files {
		part, err := writer.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"missing_identity", "", http.StatusUnauthorized},
		{"malformed_identity", "not-a-uuid", http.StatusUnauthorized},
		{"valid_identity", uuid.NewString(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCaller uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCaller, _ = CallerID(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/artwork", nil)
			if tt.header != "" {
				req.Header.Set("X-User-ID", tt.header)
			}
			rec := httptest.NewRecorder()

			Authenticate(discardLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.header, gotCaller.String())
			}
		})
	}
}

func TestSubmitArtwork_Success(t *testing.T) {
	artworkID := uuid.New()
	submissionUC := &stubSubmissionUseCase{
		submitResult: &usecase.SubmissionResult{ArtworkID: artworkID},
	}
	h := NewArtworkHandler(submissionUC, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	callerID := uuid.New()
	partyID := uuid.New()
	characterID := uuid.New()
	body, contentType := multipartBody(t,
		map[string]string{
			"title":         "Starlit Forest",
			"notes":         "ночной скетч",
			"tools_used":    "Procreate",
			"tags":          "Fantasy, Digital, Fantasy",
			"party_id":      partyID.String(),
			"character_ids": characterID.String(),
		},
		map[string]string{"primary_image": "starlit-forest.png", "reference_image": "sketch.jpg"},
	)

	req := httptest.NewRequest(http.MethodPost, "/artwork", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", callerID.String())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	// Проверяем, что форма разобрана в запрос пайплайна корректно
	got := submissionUC.gotRequest
	require.NotNil(t, got)
	assert.Equal(t, callerID, got.UploaderID)
	assert.Equal(t, "Starlit Forest", got.Title)
	assert.Equal(t, []string{"Fantasy", "Digital"}, got.TagNames)
	require.NotNil(t, got.PartyID)
	assert.Equal(t, partyID, *got.PartyID)
	assert.Equal(t, []uuid.UUID{characterID}, got.CharacterIDs)
	require.NotNil(t, got.PrimaryImage)
	assert.Equal(t, "starlit-forest.png", got.PrimaryImage.FileName)
	require.NotNil(t, got.ReferenceImage)

	var resp usecase.SubmissionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, artworkID, resp.ArtworkID)
}

func TestSubmitArtwork_MissingPrimaryImage(t *testing.T) {
	submissionUC := &stubSubmissionUseCase{}
	h := NewArtworkHandler(submissionUC, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	body, contentType := multipartBody(t, map[string]string{"title": "Starlit Forest"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/artwork", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	// До пайплайна дело не дошло
	assert.Nil(t, submissionUC.gotRequest)
}

func TestSubmitArtwork_MalformedPartyID(t *testing.T) {
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	body, contentType := multipartBody(t,
		map[string]string{"title": "x", "party_id": "not-a-uuid"},
		map[string]string{"primary_image": "a.png"},
	)

	req := httptest.NewRequest(http.MethodPost, "/artwork", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitArtwork_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: пустой заголовок", domain.ErrValidation), http.StatusBadRequest},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"slot_issuance", fmt.Errorf("%w: minio down", domain.ErrSlotIssuance), http.StatusBadGateway},
		{"transfer", fmt.Errorf("%w: status 500", domain.ErrTransfer), http.StatusBadGateway},
		{"metadata", fmt.Errorf("%w: db down", domain.ErrMetadataCreation), http.StatusInternalServerError},
		{"link", fmt.Errorf("%w: вне ростера", domain.ErrLink), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewArtworkHandler(&stubSubmissionUseCase{submitErr: tt.err}, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
			router := newTestRouter(h)

			body, contentType := multipartBody(t,
				map[string]string{"title": "x"},
				map[string]string{"primary_image": "a.png"},
			)
			req := httptest.NewRequest(http.MethodPost, "/artwork", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("X-User-ID", uuid.NewString())
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestGenerateUploadURL(t *testing.T) {
	slot := &domain.UploadSlot{
		ObjectKey: "artworks/a.png",
		WriteURL:  "http://store.local/write/artworks/a.png",
		PublicURL: "http://cdn.local/art/artworks/a.png",
	}
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{}, &stubSlotIssuer{slot: slot}, discardLogger())
	router := newTestRouter(h)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/upload/generate-upload-url?fileName=a.png&fileType=image/png", nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, slot.WriteURL, resp["uploadURL"])
		assert.Equal(t, slot.PublicURL, resp["publicURL"])
	})

	t.Run("missing_params", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/upload/generate-upload-url?fileName=a.png", nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("issuer_failure_maps_to_bad_gateway", func(t *testing.T) {
		failing := NewArtworkHandler(
			&stubSubmissionUseCase{},
			&stubQueryUseCase{},
			&stubSlotIssuer{slotErr: fmt.Errorf("%w: minio down", domain.ErrSlotIssuance)},
			discardLogger(),
		)
		req := httptest.NewRequest(http.MethodGet, "/upload/generate-upload-url?fileName=a.png&fileType=image/png", nil)
		req.Header.Set("X-User-ID", uuid.NewString())
		rec := httptest.NewRecorder()

		newTestRouter(failing).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}

func TestGetArtworkDetails_NotFound(t *testing.T) {
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{viewErr: domain.ErrNotFound}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/artwork/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetArtworkDetails_MalformedID(t *testing.T) {
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/artwork/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveTag(t *testing.T) {
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/tags/Fantasy", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var tag domain.Tag
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tag))
	assert.Equal(t, "Fantasy", tag.Name)
	assert.NotEqual(t, uuid.Nil, tag.ID)
}

func TestLinkTag_MalformedBody(t *testing.T) {
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/tags/artworkTags", strings.NewReader("{not json"))
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLinkTag_MissingArtworkMapsToUnprocessable(t *testing.T) {
	submissionUC := &stubSubmissionUseCase{
		linkTagErr: fmt.Errorf("%w: работа не существует", domain.ErrLink),
	}
	h := NewArtworkHandler(submissionUC, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	payload, err := json.Marshal(map[string]string{
		"artwork_id": uuid.NewString(),
		"tag_id":     uuid.NewString(),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/tags/artworkTags", bytes.NewReader(payload))
	req.Header.Set("X-User-ID", uuid.NewString())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetLikes_MalformedArtworkID(t *testing.T) {
	h := NewArtworkHandler(&stubSubmissionUseCase{}, &stubQueryUseCase{}, &stubSlotIssuer{}, discardLogger())
	router := newTestRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/likes?artwork_id=not-a-uuid", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
