// Package dlib implements face detection with dlib through go-face.
package dlib

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/kozaktomas/photo-faces/internal/constants"
	"github.com/kozaktomas/photo-faces/internal/database"
	"github.com/kozaktomas/photo-faces/internal/detector"
	"github.com/kozaktomas/photo-faces/internal/imaging"
	"github.com/kozaktomas/photo-faces/internal/logger"
)

// Detector runs the dlib HOG face detector and computes 128-d descriptors.
// The underlying recognizer is not safe for concurrent use, so calls are serialized.
type Detector struct {
	mu            sync.Mutex
	rec           *face.Recognizer
	scalingFactor float64
	log           *logger.Logger
}

// New loads the dlib models from modelsDir (shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat, mmod_human_face_detector.dat).
func New(modelsDir string, scalingFactor float64, log *logger.Logger) (*Detector, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading face models from %s: %w", modelsDir, err)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Detector{rec: rec, scalingFactor: scalingFactor, log: log}, nil
}

// Detect returns the faces found in the photo, or an empty slice on any error.
func (d *Detector) Detect(ctx context.Context, uri string) []detector.Face {
	if err := ctx.Err(); err != nil {
		return []detector.Face{}
	}

	img, err := detector.LoadForDetection(uri, d.scalingFactor)
	if err != nil {
		if errors.Is(err, detector.ErrTooSmall) {
			d.log.Debug("skipping small image", "uri", uri, "error", err)
		} else {
			d.log.Error("failed to load image for detection", "uri", uri, "error", err)
		}
		return []detector.Face{}
	}

	data, err := imaging.EncodeJPEG(img, constants.JPEGQuality)
	if err != nil {
		d.log.Error("failed to encode image for detection", "uri", uri, "error", err)
		return []detector.Face{}
	}

	d.mu.Lock()
	if d.rec == nil {
		d.mu.Unlock()
		d.log.Warn("detector closed, skipping image", "uri", uri)
		return []detector.Face{}
	}
	found, err := d.rec.Recognize(data)
	d.mu.Unlock()
	if err != nil {
		d.log.Error("face detection failed", "uri", uri, "error", err)
		return []detector.Face{}
	}

	faces := make([]detector.Face, 0, len(found))
	for _, f := range found {
		faces = append(faces, detector.Face{
			BoundingBox: database.RectFromImage(f.Rectangle),
			Landmarks:   f.Shapes,
			Descriptor:  append([]float32(nil), f.Descriptor[:]...),
		})
	}
	d.log.Debug("detected faces", "uri", uri, "count", len(faces))
	return faces
}

// Close frees the recognizer.
func (d *Detector) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rec != nil {
		d.rec.Close()
		d.rec = nil
	}
}
