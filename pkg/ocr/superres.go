package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/exec"
	"time"

	"github.com/disintegration/imaging"
)

// upscaleFactor is the linear upscale applied to low-resolution inputs.
const upscaleFactor = 4

// ExternalTool wraps a helper process (e.g. a python super-resolution
// script) behind a single invocation seam: pass input path, capture output
// path, enforce a timeout, translate exit conditions into sentinel errors.
type ExternalTool struct {
	Interpreter string // defaults to python3
	Path        string
	Timeout     time.Duration
}

// Invoke runs the tool on inPath, expecting it to write outPath.
func (t *ExternalTool) Invoke(ctx context.Context, inPath, outPath string) error {
	if t == nil || t.Path == "" {
		return ErrToolMissing
	}
	if _, err := os.Stat(t.Path); err != nil {
		return fmt.Errorf("%w: %s", ErrToolMissing, t.Path)
	}
	interp := t.Interpreter
	if interp == "" {
		interp = "python3"
	}
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, interp, t.Path, inPath, outPath)
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s after %s", ErrTimeout, t.Path, timeout)
		}
		return fmt.Errorf("run %s: %w", t.Path, err)
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("tool %s produced no output: %w", t.Path, err)
	}
	return nil
}

// Upscaler produces a higher-resolution working image for low-quality
// inputs. Failure is never fatal: the pipeline continues with the original
// image and a warning.
type Upscaler struct {
	Tool *ExternalTool
}

// Upscale returns the upscaled image, or the original plus a warning when
// upscaling could not be performed.
func (u *Upscaler) Upscale(ctx context.Context, img image.Image) (image.Image, string) {
	warn := ""
	if u != nil && u.Tool != nil && u.Tool.Path != "" {
		out, err := u.upscaleExternal(ctx, img)
		if err == nil {
			return out, ""
		}
		log.Printf("superres: external tool failed, using native resize: %v", err)
		warn = "super-resolution tool failed, used native resize"
	}
	if ctx.Err() != nil {
		return img, "super-resolution skipped: " + ctx.Err().Error()
	}
	w := img.Bounds().Dx() * upscaleFactor
	up := imaging.Resize(img, w, 0, imaging.Lanczos)
	up = imaging.Sharpen(up, 0.5)
	return up, warn
}

func (u *Upscaler) upscaleExternal(ctx context.Context, img image.Image) (image.Image, error) {
	in, err := os.CreateTemp("", "sr-in-*.png")
	if err != nil {
		return nil, err
	}
	_ = in.Close()
	defer os.Remove(in.Name())
	out, err := os.CreateTemp("", "sr-out-*.png")
	if err != nil {
		return nil, err
	}
	_ = out.Close()
	defer os.Remove(out.Name())

	if err := imaging.Save(img, in.Name()); err != nil {
		return nil, fmt.Errorf("save temp: %w", err)
	}
	if err := u.Tool.Invoke(ctx, in.Name(), out.Name()); err != nil {
		return nil, err
	}
	res, err := imaging.Open(out.Name())
	if err != nil {
		return nil, fmt.Errorf("open upscaled: %w", err)
	}
	return res, nil
}
