//go:build !tesseract

package main

import (
	"errors"

	"lenslation/packages/go/backend/config"
	"lenslation/packages/go/backend/recognition"
)

func newDetector(cfg config.Config) (recognition.Detector, error) {
	if cfg.Detector.Type == "tesseract" {
		return nil, errors.New("tesseract detector requires building with -tags tesseract")
	}
	return newContrastDetector(cfg)
}
