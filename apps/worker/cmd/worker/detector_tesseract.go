//go:build tesseract

package main

import (
	"lenslation/packages/go/backend/config"
	"lenslation/packages/go/backend/recognition"
	"lenslation/packages/go/backend/recognition/tesseract"
)

func newDetector(cfg config.Config) (recognition.Detector, error) {
	if cfg.Detector.Type == "tesseract" {
		tc := tesseract.DefaultConfig()
		if len(cfg.Detector.Languages) > 0 {
			tc.Languages = cfg.Detector.Languages
		}
		return tesseract.New(tc), nil
	}
	return newContrastDetector(cfg)
}
