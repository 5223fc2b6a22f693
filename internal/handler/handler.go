package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/GoArmGo/ArtJam/internal/domain"
	"github.com/GoArmGo/ArtJam/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Файлы больше этого порога при разборе multipart уходят на диск
const maxMultipartMemory = 32 << 20

// ArtworkHandler — обработчик HTTP-запросов пайплайна публикации и читающей стороны
type ArtworkHandler struct {
	submissionUseCase usecase.SubmissionUseCase
	queryUseCase      usecase.ArtworkQueryUseCase
	slotIssuer        usecase.UploadSlotIssuer
	logger            *slog.Logger
}

// NewArtworkHandler создаёт новый экземпляр ArtworkHandler
func NewArtworkHandler(
	submissionUC usecase.SubmissionUseCase,
	queryUC usecase.ArtworkQueryUseCase,
	slotIssuer usecase.UploadSlotIssuer,
	logger *slog.Logger,
) *ArtworkHandler {
	return &ArtworkHandler{
		submissionUseCase: submissionUC,
		queryUseCase:      queryUC,
		slotIssuer:        slotIssuer,
		logger:            logger,
	}
}

// respondWithJSON — отправляет JSON-ответ клиенту
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError — отправляет JSON-ответ с ошибкой
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// statusFromError маппит таксономию ошибок пайплайна в HTTP-статусы.
// Неопознанные ошибки выходят наружу обобщенно, без деталей
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrTagResolution):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrLink):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSlotIssuance), errors.Is(err, domain.ErrTransfer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// SubmitArtwork — принимает multipart-форму публикации и запускает пайплайн.
// Фатальная ошибка возвращается статусом, мягкие приходят в warnings при 201
func (h *ArtworkHandler) SubmitArtwork(w http.ResponseWriter, r *http.Request) {
	callerID, ok := CallerID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Отсутствует идентичность вызывающего", h.logger)
		return
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.Warn("failed to parse multipart form", "error", err)
		respondWithError(w, http.StatusBadRequest, "Некорректная multipart-форма", h.logger)
		return
	}

	req := usecase.SubmissionRequest{
		UploaderID: callerID,
		Title:      r.FormValue("title"),
		Notes:      r.FormValue("notes"),
		ToolsUsed:  r.FormValue("tools_used"),
		TagNames:   usecase.SplitTagList(r.FormValue("tags")),
	}

	if rawParty := r.FormValue("party_id"); rawParty != "" {
		partyID, err := uuid.Parse(rawParty)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Некорректный party_id", h.logger)
			return
		}
		req.PartyID = &partyID
	}

	if rawCharacters := strings.TrimSpace(r.FormValue("character_ids")); rawCharacters != "" {
		for _, fragment := range strings.Split(rawCharacters, ",") {
			fragment = strings.TrimSpace(fragment)
			if fragment == "" {
				continue
			}
			characterID, err := uuid.Parse(fragment)
			if err != nil {
				respondWithError(w, http.StatusBadRequest, "Некорректный character_id: "+fragment, h.logger)
				return
			}
			req.CharacterIDs = append(req.CharacterIDs, characterID)
		}
	}

	primaryFile, primaryHeader, err := r.FormFile("primary_image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Не приложено основное изображение", h.logger)
		return
	}
	defer primaryFile.Close()
	req.PrimaryImage = &usecase.ImageUpload{
		FileName:    primaryHeader.Filename,
		ContentType: primaryHeader.Header.Get("Content-Type"),
		Content:     primaryFile,
	}

	if referenceFile, referenceHeader, err := r.FormFile("reference_image"); err == nil {
		defer referenceFile.Close()
		req.ReferenceImage = &usecase.ImageUpload{
			FileName:    referenceHeader.Filename,
			ContentType: referenceHeader.Header.Get("Content-Type"),
			Content:     referenceFile,
		}
	}

	h.logger.Info("processing submission", "endpoint", "SubmitArtwork", "uploader_id", callerID, "title", req.Title)

	result, err := h.submissionUseCase.Submit(r.Context(), req)
	if err != nil {
		h.logger.Error("submission failed", "uploader_id", callerID, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка публикации работы", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, result, h.logger)
}

// GenerateUploadURL — выдает слот загрузки интерактивному клиенту
func (h *ArtworkHandler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	fileType := r.URL.Query().Get("fileType")
	if fileName == "" || fileType == "" {
		h.logger.Warn("missing required parameter", "param", "fileName/fileType")
		respondWithError(w, http.StatusBadRequest, "Не указаны fileName и fileType", h.logger)
		return
	}

	slot, err := h.slotIssuer.RequestUploadSlot(r.Context(), fileName, fileType)
	if err != nil {
		h.logger.Error("failed to issue upload slot", "file_name", fileName, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка выдачи слота загрузки", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"uploadURL": slot.WriteURL,
		"publicURL": slot.PublicURL,
	}, h.logger)
}

// GetAllArt — получает все работы для галереи
func (h *ArtworkHandler) GetAllArt(w http.ResponseWriter, r *http.Request) {
	page, perPage := pagination(r)

	artworks, err := h.queryUseCase.ListAllArtworks(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("failed to list all artworks", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка получения списка работ", h.logger)
		return
	}
	if artworks == nil {
		artworks = []domain.Artwork{}
	}

	respondWithJSON(w, http.StatusOK, artworks, h.logger)
}

// GetArtByParty — получает работы события (GET /artwork?party_id=)
func (h *ArtworkHandler) GetArtByParty(w http.ResponseWriter, r *http.Request) {
	rawParty := r.URL.Query().Get("party_id")
	if rawParty == "" {
		h.logger.Warn("missing required parameter", "param", "party_id")
		respondWithError(w, http.StatusBadRequest, "Не указан party_id", h.logger)
		return
	}
	partyID, err := uuid.Parse(rawParty)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный party_id", h.logger)
		return
	}

	page, perPage := pagination(r)
	artworks, err := h.queryUseCase.ListArtworksByParty(r.Context(), partyID, page, perPage)
	if err != nil {
		h.logger.Error("failed to list artworks by party", "party_id", partyID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка получения работ события", h.logger)
		return
	}
	if artworks == nil {
		artworks = []domain.Artwork{}
	}

	respondWithJSON(w, http.StatusOK, artworks, h.logger)
}

// GetArtworkDetails — собранное представление работы с обогащениями
func (h *ArtworkHandler) GetArtworkDetails(w http.ResponseWriter, r *http.Request) {
	artworkID, ok := parseUUIDParam(w, r, "id", h.logger)
	if !ok {
		return
	}

	view, err := h.queryUseCase.GetArtworkView(r.Context(), artworkID)
	if err != nil {
		h.logger.Error("failed to assemble artwork view", "artwork_id", artworkID, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка получения информации о работе", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, view, h.logger)
}

// ResolveTag — находит или создает тег по имени (GET /tags/{name})
func (h *ArtworkHandler) ResolveTag(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	tag, err := h.submissionUseCase.ResolveTag(r.Context(), name)
	if err != nil {
		h.logger.Error("failed to resolve tag", "name", name, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка разрешения тега", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, tag, h.logger)
}

type linkTagRequest struct {
	ArtworkID uuid.UUID `json:"artwork_id"`
	TagID     uuid.UUID `json:"tag_id"`
}

// LinkTag — идемпотентно связывает тег с работой (POST /tags/artworkTags)
func (h *ArtworkHandler) LinkTag(w http.ResponseWriter, r *http.Request) {
	var req linkTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	if err := h.submissionUseCase.LinkTag(r.Context(), req.ArtworkID, req.TagID); err != nil {
		h.logger.Error("failed to link tag", "artwork_id", req.ArtworkID, "tag_id", req.TagID, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка связывания тега", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Тег успешно связан"}, h.logger)
}

type linkCharactersRequest struct {
	ArtworkID    uuid.UUID   `json:"artwork_id"`
	CharacterIDs []uuid.UUID `json:"character_ids"`
}

// LinkCharacters — массово связывает персонажей с работой (POST /artworkCharacters)
func (h *ArtworkHandler) LinkCharacters(w http.ResponseWriter, r *http.Request) {
	var req linkCharactersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректное тело запроса", h.logger)
		return
	}

	if err := h.submissionUseCase.LinkCharacters(r.Context(), req.ArtworkID, req.CharacterIDs); err != nil {
		h.logger.Error("failed to link characters", "artwork_id", req.ArtworkID, "error", err)
		respondWithError(w, statusFromError(err), "Ошибка связывания персонажей", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Персонажи успешно связаны"}, h.logger)
}

// GetArtworkTags — теги работы (GET /tags/artworkTags/{artworkID})
func (h *ArtworkHandler) GetArtworkTags(w http.ResponseWriter, r *http.Request) {
	artworkID, ok := parseUUIDParam(w, r, "artworkID", h.logger)
	if !ok {
		return
	}

	tags, err := h.queryUseCase.GetArtworkTags(r.Context(), artworkID)
	if err != nil {
		h.logger.Error("failed to get artwork tags", "artwork_id", artworkID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка получения тегов работы", h.logger)
		return
	}
	if tags == nil {
		tags = []domain.Tag{}
	}

	respondWithJSON(w, http.StatusOK, tags, h.logger)
}

// GetArtworkCharacters — персонажи работы (GET /artworkCharacters/{artworkID})
func (h *ArtworkHandler) GetArtworkCharacters(w http.ResponseWriter, r *http.Request) {
	artworkID, ok := parseUUIDParam(w, r, "artworkID", h.logger)
	if !ok {
		return
	}

	characters, err := h.queryUseCase.GetArtworkCharacters(r.Context(), artworkID)
	if err != nil {
		h.logger.Error("failed to get artwork characters", "artwork_id", artworkID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка получения персонажей работы", h.logger)
		return
	}
	if characters == nil {
		characters = []domain.Character{}
	}

	respondWithJSON(w, http.StatusOK, characters, h.logger)
}

// GetLikes — счетчик лайков работы (GET /likes?artwork_id=)
func (h *ArtworkHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	rawArtwork := r.URL.Query().Get("artwork_id")
	if rawArtwork == "" {
		h.logger.Warn("missing required parameter", "param", "artwork_id")
		respondWithError(w, http.StatusBadRequest, "Не указан artwork_id", h.logger)
		return
	}
	artworkID, err := uuid.Parse(rawArtwork)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Некорректный artwork_id", h.logger)
		return
	}

	count, err := h.queryUseCase.GetLikeCount(r.Context(), artworkID)
	if err != nil {
		h.logger.Error("failed to count likes", "artwork_id", artworkID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Ошибка подсчета лайков", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"artwork_id": artworkID,
		"like_count": count,
	}, h.logger)
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, param string, logger *slog.Logger) (uuid.UUID, bool) {
	raw := chi.URLParam(r, param)
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("invalid uuid parameter", "param", param, "value", raw)
		respondWithError(w, http.StatusBadRequest, "Некорректный "+param, logger)
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 20
	}
	return page, perPage
}
