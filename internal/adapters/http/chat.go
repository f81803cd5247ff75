package httpadapter

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/deeplearners/fashion-assistant/internal/core/domain"
)

const maxChatFormMemory = 32 << 20

// handleChat runs one routed chat turn. The request is multipart so an
// optional garment photo can ride along with the text; the photo is staged
// in object storage for the duration of the turn and removed afterwards.
func (rt *Router) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	if err := r.ParseMultipartForm(maxChatFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
		return
	}

	sessionID := strings.TrimSpace(r.FormValue("session_id"))

	topK := 0
	if raw := strings.TrimSpace(r.FormValue("top_k")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "top_k must be a non-negative integer"})
			return
		}
		topK = parsed
	}

	query := domain.Query{Text: r.FormValue("text")}

	if file, fileHeader, err := r.FormFile("image"); err == nil {
		defer file.Close()

		key := "chat/" + uuid.NewString() + strings.ToLower(filepath.Ext(fileHeader.Filename))
		if err := rt.images.Save(r.Context(), key, file); err != nil {
			writeError(w, err)
			return
		}
		query.ImageKey = key
		// The image only exists for this turn; clean up even when the
		// request context is already canceled.
		defer func() {
			_ = rt.images.Remove(context.Background(), key)
		}()
	}

	result, err := rt.chat.Chat(r.Context(), sessionID, query, topK)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
