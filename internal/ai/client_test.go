package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storycraft-server/internal/models"
)

// fakeOpenAI serves an OpenAI-compatible API plus a download endpoint for
// generated images.
type fakeOpenAI struct {
	server        *httptest.Server
	imageBytes    []byte
	imageType     string
	imageStatus   int
	completion    string
	emptyChoices  bool
	emptyImageURL bool
}

func newFakeOpenAI(t *testing.T) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{
		imageBytes:  []byte("png-bytes"),
		imageType:   "image/png",
		imageStatus: http.StatusOK,
		completion:  "and so the story went on",
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{"choices": []any{}}
		if !f.emptyChoices {
			resp["choices"] = []any{
				map[string]any{"message": map[string]any{"role": "assistant", "content": f.completion}},
			}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("/v1/images/generations", func(w http.ResponseWriter, r *http.Request) {
		url := f.server.URL + "/download/image.png"
		if f.emptyImageURL {
			url = ""
		}
		resp := map[string]any{"data": []any{map[string]any{"url": url}}}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	mux.HandleFunc("/download/image.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", f.imageType)
		w.WriteHeader(f.imageStatus)
		_, _ = w.Write(f.imageBytes)
	})
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeOpenAI) client() Client {
	return NewClient(Config{
		APIKey:          "test-key",
		BaseURL:         f.server.URL + "/v1",
		TextModel:       "gpt-3.5-turbo",
		ImageModel:      "dall-e-3",
		MaxOutputTokens: 50,
		Timeout:         5 * time.Second,
	}, zap.NewNop())
}

func TestGenerateText(t *testing.T) {
	fake := newFakeOpenAI(t)

	got, err := fake.client().GenerateText(context.Background(), "the story so far", "once upon")
	require.NoError(t, err)
	assert.Equal(t, "and so the story went on", got)
}

func TestGenerateTextNoChoices(t *testing.T) {
	fake := newFakeOpenAI(t)
	fake.emptyChoices = true

	_, err := fake.client().GenerateText(context.Background(), "ctx", "seed")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGenerateImage(t *testing.T) {
	fake := newFakeOpenAI(t)

	data, err := fake.client().GenerateImage(context.Background(), "a tower")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
}

func TestGenerateImageNoURL(t *testing.T) {
	fake := newFakeOpenAI(t)
	fake.emptyImageURL = true

	_, err := fake.client().GenerateImage(context.Background(), "a tower")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGenerateImageDownloadFailure(t *testing.T) {
	fake := newFakeOpenAI(t)
	fake.imageStatus = http.StatusNotFound

	_, err := fake.client().GenerateImage(context.Background(), "a tower")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestGenerateImageWrongContentType(t *testing.T) {
	fake := newFakeOpenAI(t)
	fake.imageType = "text/html"
	fake.imageBytes = []byte("<html>expired link</html>")

	_, err := fake.client().GenerateImage(context.Background(), "a tower")
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}
