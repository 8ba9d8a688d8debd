package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/tanvir4425/Mask-App-sub001/internal/model"
)

// Typed failure codes for the AI boundary. The adapter never panics and
// never returns a Go error to the cascade — every failure path collapses
// into one of these so the orchestrator can fall through.
const (
	FailMissingAPIKey = "missing_api_key"
	FailNetwork       = "network_error"
	FailBadJSON       = "bad_json"
	FailException     = "exception"
)

// Failure describes why an AI classification attempt produced nothing.
type Failure struct {
	Code   string
	Detail string
}

// AIResult is a successful classification from the generative model.
type AIResult struct {
	Verdict     model.Verdict
	Confidence  float64
	Explanation string
}

// aiResponse is the strict JSON schema the model is instructed to emit.
type aiResponse struct {
	Verdict     string  `json:"verdict"`
	Confidence  float64 `json:"confidence,omitempty"`
	Explanation string  `json:"explanation"`
}

const classifyTimeout = 12 * time.Second

var allowedImageMIME = map[string]string{
	"image/jpeg": "jpeg",
	"image/png":  "png",
	"image/webp": "webp",
}

// GeminiConfig holds adapter settings.
type GeminiConfig struct {
	APIKey        string
	ModelName     string
	ImageEnabled  bool
	ImageMaxBytes int
}

// Gemini wraps the generative-model API for verdict classification. A
// Gemini constructed without an API key is still usable: every call fails
// with missing_api_key, which the cascade treats as "stage unavailable".
type Gemini struct {
	client    *genai.Client
	genModel  *genai.GenerativeModel
	log       zerolog.Logger
	modelName string
	httpc     *http.Client

	imageEnabled  bool
	imageMaxBytes int
}

func NewGemini(ctx context.Context, cfg GeminiConfig, log zerolog.Logger) *Gemini {
	g := &Gemini{
		log:           log,
		modelName:     cfg.ModelName,
		httpc:         &http.Client{Timeout: 10 * time.Second},
		imageEnabled:  cfg.ImageEnabled,
		imageMaxBytes: cfg.ImageMaxBytes,
	}
	if cfg.APIKey == "" {
		log.Warn().Msg("gemini: no API key configured, AI stage unavailable")
		return g
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		log.Error().Err(err).Msg("gemini: client init failed, AI stage unavailable")
		return g
	}

	m := client.GenerativeModel(cfg.ModelName)
	m.ResponseMIMEType = "application/json"
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     genai.Ptr[float32](0.2),
		TopP:            genai.Ptr[float32](0.9),
		MaxOutputTokens: genai.Ptr[int32](400),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	g.client = client
	g.genModel = m
	log.Info().Str("model", cfg.ModelName).Msg("gemini: client initialized")
	return g
}

// ModelTag is the free-text tag persisted with results produced by this
// adapter, e.g. "gemini (gemini-2.0-flash)".
func (g *Gemini) ModelTag() string {
	return fmt.Sprintf("gemini (%s)", g.modelName)
}

// Available reports whether the adapter can make real calls.
func (g *Gemini) Available() bool {
	return g.genModel != nil
}

// Close shuts down the underlying API client.
func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

const systemInstruction = `You are a fact-checking classifier for social media posts.
Judge the main factual claim in the post and respond with STRICT JSON only, no prose:
{"verdict": "<one of: true, false, misleading, unverified, opinion, outdated, satire>",
 "confidence": <number between 0 and 1>,
 "explanation": "<one or two sentences>"}
Use "opinion" for subjective statements, "unverified" when you cannot judge,
"satire" for obvious jokes. Never invent a verdict you cannot support.`

// Classify judges the post text (and optionally an attached image) against
// the closed verdict enum. The wall clock is bounded; all failures come
// back as a typed Failure, never an error or panic.
func (g *Gemini) Classify(ctx context.Context, text, imageURL string) (res *AIResult, fail *Failure) {
	defer func() {
		if rec := recover(); rec != nil {
			res, fail = nil, &Failure{Code: FailException, Detail: fmt.Sprint(rec)}
		}
	}()

	if g.genModel == nil {
		return nil, &Failure{Code: FailMissingAPIKey}
	}

	ctx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	parts := []genai.Part{genai.Text("Post:\n" + text)}
	if img := g.fetchImage(ctx, imageURL); img != nil {
		parts = append(parts, *img)
	}

	resp, err := g.genModel.GenerateContent(ctx, parts...)
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			return nil, &Failure{Code: fmt.Sprintf("http_%d", gerr.Code), Detail: gerr.Message}
		}
		return nil, &Failure{Code: FailNetwork, Detail: err.Error()}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &Failure{Code: FailBadJSON, Detail: "empty response"}
	}

	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, &Failure{Code: FailBadJSON, Detail: "non-text response part"}
	}

	parsed, perr := parseAIResponse(string(textPart))
	if perr != "" {
		return nil, &Failure{Code: FailBadJSON, Detail: perr}
	}
	return parsed, nil
}

// parseAIResponse unmarshals the model output, tolerating markdown fences,
// and validates the verdict against the closed enum.
func parseAIResponse(raw string) (*AIResult, string) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var r aiResponse
	if err := json.Unmarshal([]byte(clean), &r); err != nil {
		return nil, "unmarshal: " + err.Error()
	}

	verdict := model.Verdict(strings.ToLower(strings.TrimSpace(r.Verdict)))
	if !model.ValidVerdicts[verdict] {
		return nil, fmt.Sprintf("verdict %q not in enum", r.Verdict)
	}

	conf := r.Confidence
	if conf < 0 || conf > 1 {
		conf = 0
	}

	return &AIResult{
		Verdict:     verdict,
		Confidence:  conf,
		Explanation: strings.TrimSpace(r.Explanation),
	}, ""
}

// fetchImage loads the post image as an inline part. Any failure — fetch,
// size, MIME — degrades silently to text-only classification.
func (g *Gemini) fetchImage(ctx context.Context, imageURL string) *genai.Part {
	if !g.imageEnabled || imageURL == "" {
		return nil
	}

	var data []byte
	var mimeType string

	if strings.HasPrefix(imageURL, "http://") || strings.HasPrefix(imageURL, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
		if err != nil {
			return nil
		}
		resp, err := g.httpc.Do(req)
		if err != nil {
			g.log.Debug().Err(err).Msg("gemini: image fetch failed, using text only")
			return nil
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil
		}
		mimeType = resp.Header.Get("Content-Type")
		body, err := io.ReadAll(io.LimitReader(resp.Body, int64(g.imageMaxBytes)+1))
		if err != nil {
			return nil
		}
		data = body
	} else {
		body, err := os.ReadFile(imageURL)
		if err != nil {
			return nil
		}
		data = body
		mimeType = mimeByExtension(imageURL)
	}

	if len(data) == 0 || len(data) > g.imageMaxBytes {
		return nil
	}

	format, ok := allowedImageMIME[strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))]
	if !ok {
		return nil
	}

	part := genai.Part(genai.ImageData(format, data))
	return &part
}

func mimeByExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
