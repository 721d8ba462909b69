package ocr

import "errors"

// ErrDecode is returned when uploaded bytes are not a decodable raster image.
// It is the only pipeline error that aborts a request outright.
var ErrDecode = errors.New("image decode failed")

// ErrNoProfile is returned when no zone profile exists for a platform.
// Callers recover by falling back to whole-image OCR.
var ErrNoProfile = errors.New("zone profile not found")

// ErrNotConfigured marks an OCR method that cannot run because its
// credential is missing or a known placeholder. Checked before any network
// call is attempted.
var ErrNotConfigured = errors.New("method not configured")

// ErrToolMissing marks an external helper (script or binary) that is absent.
var ErrToolMissing = errors.New("external tool not found")

// ErrTimeout marks a method attempt that exceeded its time budget. Control
// flow treats it like any method failure; warnings record it distinctly.
var ErrTimeout = errors.New("method timed out")

// ErrBudget marks a cloud call vetoed by the injected budget guard.
var ErrBudget = errors.New("budget exhausted")
