package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// credentialPlaceholder is what deployment templates ship before the real
// key is filled in. Treated the same as an empty key so a misconfigured
// instance fails fast instead of burning a network round-trip per upload.
const credentialPlaceholder = "TO_BE_SET"

const (
	cloudTimeout = 30 * time.Second
	visionModel  = openai.ChatModelGPT4o
)

// Vision reads the screenshot with a multimodal chat model. The full frame
// goes up as a JPEG data URL; the model returns a JSON deck list.
type Vision struct {
	client openai.Client
	budget Budget
	ok     bool
}

// NewVision builds the cloud method. A missing or placeholder key yields a
// method that reports unavailable and refuses to extract.
func NewVision(apiKey string, budget Budget) *Vision {
	if budget == nil {
		budget = unlimitedBudget{}
	}
	v := &Vision{budget: budget}
	if apiKey == "" || apiKey == credentialPlaceholder {
		return v
	}
	v.client = openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0), // retry-go owns the retry policy
	)
	v.ok = true
	return v
}

func (m *Vision) Name() string    { return "vision" }
func (m *Vision) Available() bool { return m.ok }

func (m *Vision) Extract(ctx context.Context, req *Request) (*Extraction, error) {
	if !m.ok {
		return nil, fmt.Errorf("%w: vision api key missing or placeholder", ErrNotConfigured)
	}
	if !m.budget.Allow() {
		return nil, fmt.Errorf("%w: vision call vetoed", ErrBudget)
	}
	ctx, cancel := context.WithTimeout(ctx, cloudTimeout)
	defer cancel()
	start := time.Now()

	dataURL, err := encodeDataURL(req.Image)
	if err != nil {
		return nil, err
	}
	prompt := visionPrompt(req.Format, req.Attempt, req.Hint)

	content, err := retry.DoWithData(
		func() (string, error) { return m.complete(ctx, prompt, dataURL) },
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(500*time.Millisecond),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: vision call", ErrTimeout)
		}
		return nil, fmt.Errorf("vision call: %w", err)
	}

	cards, err := ParseVisionJSON(content)
	if err != nil {
		return nil, fmt.Errorf("vision response: %w", err)
	}
	return &Extraction{
		Cards:      cards,
		Confidence: 0.9,
		Method:     m.Name(),
		Elapsed:    time.Since(start),
	}, nil
}

func (m *Vision) complete(ctx context.Context, prompt, dataURL string) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(prompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
	}
	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    visionModel,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(parts)},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return resp.Choices[0].Message.Content, nil
}

func encodeDataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// visionPrompt adapts the instruction to the detected platform and, on
// retries, to the section that came up short.
func visionPrompt(format Format, attempt int, hint string) string {
	var b strings.Builder
	switch format {
	case FormatMTGO:
		b.WriteString("This is a Magic: The Gathering Online (MTGO) deck list screenshot. ")
		b.WriteString("Card names appear as text rows, each prefixed with a quantity. ")
	case FormatPaper:
		b.WriteString("This is a photo of physical Magic: The Gathering cards laid out as a deck. ")
		b.WriteString("Read the card name printed at the top of each card. ")
	default:
		b.WriteString("This is a Magic: The Gathering Arena deck builder screenshot. ")
		b.WriteString("Cards appear as art tiles with the name overlaid and a quantity badge. ")
	}
	b.WriteString("Extract every card. Respond with ONLY a JSON object, no prose and no markdown fences, shaped as ")
	b.WriteString(`{"mainboard":[{"name":"Card Name","quantity":4}],"sideboard":[{"name":"Card Name","quantity":2}]}. `)
	b.WriteString("A standard deck has exactly 60 mainboard and 15 sideboard cards. ")
	if attempt > 0 {
		b.WriteString("This is a re-read; previous attempts missed cards. Look carefully at partially obscured rows and small quantity badges. ")
	}
	if hint != "" {
		fmt.Fprintf(&b, "Pay particular attention to the %s section. ", hint)
	}
	b.WriteString("Never invent cards that are not visible.")
	return b.String()
}
