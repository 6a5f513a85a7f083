package detection

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/pool-detect/internal/imaging"
)

// LLM detector defaults.
const (
	DefaultLLMModel       = "gemini-1.5-pro-002"
	DefaultLLMEndpoint    = "https://generativelanguage.googleapis.com/v1beta"
	DefaultLLMTemperature = 0.2
	DefaultLLMTimeout     = 60 * time.Second
)

// ErrMissingAPIKey is returned when the LLM detector is built without a key.
var ErrMissingAPIKey = errors.New("LLM detector requires an API key (GEMINI_API_KEY)")

const llmPrompt = `Analyze this aerial image and locate the swimming pool.
Return ONLY valid JSON with this exact shape and no other text:
{"found": true, "coordinates": [[x1, y1], [x2, y2], ...]}
Coordinates are integer pixel positions of the pool outline, clockwise,
with (0,0) at the top-left corner of the image.
If there is no swimming pool, return {"found": false, "coordinates": []}.`

// LLMOptions configures the multimodal inference detector.
type LLMOptions struct {
	// APIKey authenticates against the inference service.
	APIKey string

	// Model is the model name used in the request path.
	Model string

	// Endpoint is the API base URL, without a trailing slash.
	Endpoint string

	// Temperature is the sampling temperature sent with the request.
	Temperature float64

	// Timeout bounds the whole HTTP exchange.
	Timeout time.Duration
}

// DefaultLLMOptions returns options for the public Gemini endpoint. The API
// key is left empty.
func DefaultLLMOptions() LLMOptions {
	return LLMOptions{
		Model:       DefaultLLMModel,
		Endpoint:    DefaultLLMEndpoint,
		Temperature: DefaultLLMTemperature,
		Timeout:     DefaultLLMTimeout,
	}
}

// LLMDetector asks a multimodal model to outline the pool. It returns at most
// one polygon.
type LLMDetector struct {
	opts   LLMOptions
	client *http.Client
	log    logrus.FieldLogger
}

// NewLLMDetector validates opts and creates the detector. Empty fields other
// than APIKey fall back to DefaultLLMOptions.
func NewLLMDetector(opts LLMOptions, log logrus.FieldLogger) (*LLMDetector, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	defaults := DefaultLLMOptions()
	if opts.Model == "" {
		opts.Model = defaults.Model
	}
	if opts.Endpoint == "" {
		opts.Endpoint = defaults.Endpoint
	}
	opts.Endpoint = strings.TrimRight(opts.Endpoint, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = defaults.Timeout
	}
	if log == nil {
		log = discardLogger()
	}

	return &LLMDetector{
		opts:   opts,
		client: &http.Client{Timeout: opts.Timeout},
		log:    log,
	}, nil
}

// Name returns "llm".
func (d *LLMDetector) Name() string {
	return MethodLLM
}

// generateRequest mirrors the subset of the generateContent request body we
// send.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// poolAnswer is the JSON document the model is instructed to produce.
type poolAnswer struct {
	Found       bool         `json:"found"`
	Coordinates [][2]float64 `json:"coordinates"`
}

// Detect sends img as a JPEG to the model and parses its answer.
//
// Returns an empty result when the model reports no pool. Transport failures,
// non-2xx statuses and malformed answers are returned as errors.
func (d *LLMDetector) Detect(ctx context.Context, img image.Image) ([]Polygon, error) {
	polygons := make([]Polygon, 0)
	if img == nil {
		return polygons, nil
	}

	var jpg bytes.Buffer
	if err := imaging.EncodeJPEG(&jpg, img, 90); err != nil {
		return nil, err
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{InlineData: &inlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(jpg.Bytes()),
				}},
				{Text: llmPrompt},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:      d.opts.Temperature,
			ResponseMimeType: "application/json",
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal inference request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", d.opts.Endpoint, d.opts.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build inference request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", d.opts.APIKey)

	d.log.WithFields(logrus.Fields{
		"model":         d.opts.Model,
		"payload_bytes": len(body),
	}).Debug("sending inference request")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "inference request failed")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read inference response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("inference service returned %s: %s", resp.Status, truncate(string(raw), 200))
	}

	var gen generateResponse
	if err := json.Unmarshal(raw, &gen); err != nil {
		return nil, errors.Wrap(err, "failed to decode inference response")
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("inference response has no candidates")
	}

	answer, err := parsePoolAnswer(gen.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return nil, err
	}
	if !answer.Found || len(answer.Coordinates) == 0 {
		return polygons, nil
	}

	polygon := make(Polygon, 0, len(answer.Coordinates)+1)
	for _, c := range answer.Coordinates {
		polygon = append(polygon, Point{X: int(c[0]), Y: int(c[1])})
	}
	return append(polygons, closePolygon(polygon)), nil
}

// parsePoolAnswer decodes the model's JSON, tolerating a surrounding
// markdown code fence.
func parsePoolAnswer(text string) (*poolAnswer, error) {
	text = stripCodeFence(strings.TrimSpace(text))

	var answer poolAnswer
	if err := json.Unmarshal([]byte(text), &answer); err != nil {
		return nil, errors.Wrapf(err, "model answer is not valid JSON: %s", truncate(text, 200))
	}
	return &answer, nil
}

func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	if i := strings.Index(text, "```"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
