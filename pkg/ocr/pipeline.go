package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"
)

// Pipeline is the full screenshot-to-deck flow. Construct once with
// NewPipeline and share across requests; all fields are read-only after
// construction.
type Pipeline struct {
	profiles Profiles
	upscaler upscales
	local    Method
	cloud    Method
	repairer *Repairer
}

// Profiles is the lookup surface the pipeline needs, satisfied by
// ProfileTable.
type Profiles interface {
	Lookup(platform Format, width, height int) (Profile, string, error)
	AltLookup(platform Format, width, height int) (Profile, string, error)
}

// upscales is the resolution seam, satisfied by Upscaler.
type upscales interface {
	Upscale(ctx context.Context, img image.Image) (image.Image, string)
}

// PipelineOptions wires the pipeline's collaborators. Zero-value fields get
// working defaults; only the vision key has no default.
type PipelineOptions struct {
	Profiles     ProfileTable
	Upscaler     *Upscaler
	VisionAPIKey string
	Budget       Budget
	Local        Method
	Cloud        Method
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Profiles == nil {
		opts.Profiles = DefaultProfiles()
	}
	if opts.Upscaler == nil {
		opts.Upscaler = &Upscaler{}
	}
	if opts.Local == nil {
		opts.Local = &LocalOCR{}
	}
	if opts.Cloud == nil {
		opts.Cloud = NewVision(opts.VisionAPIKey, opts.Budget)
	}
	repairer := &Repairer{Cloud: opts.Cloud, Local: opts.Local, Profiles: opts.Profiles}
	if reader, ok := opts.Local.(TextReader); ok {
		repairer.Text = reader
	}
	return &Pipeline{
		profiles: opts.Profiles,
		upscaler: opts.Upscaler,
		local:    opts.Local,
		cloud:    opts.Cloud,
		repairer: repairer,
	}
}

// Process runs the whole flow on raw image bytes. The hard failures are an
// undecodable image and a cancelled context, which discards whatever partial
// read was in flight; everything else degrades into warnings and repair
// attempts rather than errors.
func (p *Pipeline) Process(ctx context.Context, data []byte) (*Result, error) {
	start := time.Now()
	res := &Result{}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	quality := AnalyzeQuality(img)
	if quality.NeedsUpscale {
		var warn string
		img, warn = p.upscaler.Upscale(ctx, img)
		if warn != "" {
			res.Warnings = append(res.Warnings, warn)
		}
		if b := img.Bounds(); b.Dx() != quality.Width || b.Dy() != quality.Height {
			log.Printf("upscaled %dx%d capture to %dx%d", quality.Width, quality.Height,
				b.Dx(), b.Dy())
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format := DetectFormat(img)
	res.Format = format

	req := &Request{Image: img, Format: format}
	b := img.Bounds()
	profile, bucket, err := p.profiles.Lookup(format, b.Dx(), b.Dy())
	if err != nil {
		if !errors.Is(err, ErrNoProfile) {
			return nil, err
		}
		// Paper photos have no fixed layout; whole-image OCR handles them.
		res.Warnings = append(res.Warnings, fmt.Sprintf("no zone profile for %s, reading whole image", format))
	} else {
		req.Zones = ExtractZones(img, profile)
		res.Errors = append(res.Errors, req.Zones.Errors...)
		log.Printf("format=%s profile=%s zones=%d confidence=%.2f",
			format, bucket, len(req.Zones.Zones()), req.Zones.Confidence)
	}

	orch := &Orchestrator{Methods: []Method{p.local, p.cloud}}
	ext, tried, warns, failures := orch.Run(ctx, req)
	res.MethodsTried = tried
	res.Warnings = append(res.Warnings, warns...)
	res.Errors = append(res.Errors, failures...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var cards []Card
	confidence := req.Zones.Confidence
	if ext != nil {
		cards = ext.Cards
		confidence = ext.Confidence
	} else {
		res.Warnings = append(res.Warnings, "no extraction method produced cards")
	}

	cards, repairWarns, repairFails, guaranteed := p.repairer.Repair(ctx, img, format, cards)
	res.Warnings = append(res.Warnings, repairWarns...)
	res.Errors = append(res.Errors, repairFails...)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res.Cards = cards
	res.Guaranteed = guaranteed
	res.Success = len(cards) > 0
	res.Confidence = resultConfidence(confidence, guaranteed, len(repairWarns))
	res.ProcessingMS = time.Since(start).Milliseconds()
	return res, nil
}

// resultConfidence discounts the extraction confidence for each repair the
// deck needed; a deck that arrived complete keeps its method confidence.
func resultConfidence(base float64, guaranteed bool, repairs int) float64 {
	c := base
	for i := 0; i < repairs; i++ {
		c *= 0.9
	}
	if !guaranteed && c > 0.5 {
		c = 0.5
	}
	if c < 0 {
		c = 0
	}
	if c > 1 {
		c = 1
	}
	return c
}
